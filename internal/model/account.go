package model

// Account represents a financial account. Its country supplies the
// geographic grouping dimension for analytics; the aggregation engine
// never mutates accounts.
type Account struct {
	ID       string
	Name     string
	Country  string
	Currency string
}
