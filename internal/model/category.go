package model

// Uncategorized is the fallback taxonomy label for transactions whose
// category carries no taxonomy information.
const Uncategorized = "Uncategorized"

// Category represents a transaction category. Two taxonomy schemas exist
// side by side: the legacy {Type, Group} pair and the current
// {PLMacroCategory, PLCategory} pair. Rows carry whichever set they were
// created under; Taxonomy() normalizes both.
type Category struct {
	ID   string
	Name string

	// Current schema
	PLMacroCategory string
	PLCategory      string

	// Legacy schema
	Type  string
	Group string
}

// Taxonomy is the canonical category dimension pair used by the
// aggregation engine and the analytics cache: a coarse macro label and a
// finer category label.
type Taxonomy struct {
	Macro    string
	Category string
}

// Taxonomy normalizes the category's schema variant into the canonical
// pair. Current-schema fields win when both are populated; missing labels
// fall back to Uncategorized.
func (c *Category) Taxonomy() Taxonomy {
	tx := Taxonomy{Macro: c.PLMacroCategory, Category: c.PLCategory}
	if tx.Macro == "" {
		tx.Macro = c.Type
	}
	if tx.Category == "" {
		tx.Category = c.Group
	}
	if tx.Macro == "" {
		tx.Macro = Uncategorized
	}
	if tx.Category == "" {
		tx.Category = Uncategorized
	}
	return tx
}
