package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/model"
	"github.com/danielvsantos/finance-dashboard/internal/rates"
)

// analyticsResponse is the envelope of /api/analytics.
type analyticsResponse struct {
	Data     any    `json:"data"`
	Currency string `json:"currency"`
	View     string `json:"view"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalytics answers the analytics query contract: view, currency,
// optional country/macro filters and a per-view time range. The shape
// parameter selects between the flat-summed response (default) and the
// per-period row list.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	req, shape, err := parseAnalyticsRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var data any
	switch shape {
	case "rows":
		data, err = s.queries.Rows(r.Context(), req)
	default:
		data, err = s.queries.Summary(r.Context(), req)
	}
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		slog.Error("analytics query failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		Currency: req.Currency,
		View:     string(req.View),
		Data:     data,
	})
}

// handleRateGaps runs the rate-gap audit for the requested (or configured)
// target currencies.
func (s *Server) handleRateGaps(w http.ResponseWriter, r *http.Request) {
	targets := s.targets
	if raw := r.URL.Query().Get("currencies"); raw != "" {
		targets = splitList(raw)
		for _, currency := range targets {
			if len(currency) != 3 {
				writeError(w, http.StatusBadRequest, errors.New("currencies must be 3-letter ISO codes"))
				return
			}
		}
	}

	gaps, err := rates.FindGaps(r.Context(), s.store, targets)
	if err != nil {
		slog.Error("rate gap audit failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currencies": targets,
		"gaps":       gaps,
		"count":      len(gaps),
	})
}

// parseAnalyticsRequest maps query parameters onto an analytics.Request
// and validates it before any store access.
func parseAnalyticsRequest(r *http.Request) (analytics.Request, string, error) {
	q := r.URL.Query()

	view := q.Get("view")
	if view == "" {
		view = string(model.ViewYear)
	}
	currency := q.Get("currency")
	if currency == "" {
		currency = "USD"
	}

	req := analytics.Request{
		View:         model.View(view),
		Currency:     strings.ToUpper(currency),
		Countries:    splitList(q.Get("countries")),
		Macros:       splitList(q.Get("macros")),
		StartMonth:   q.Get("startMonth"),
		EndMonth:     q.Get("endMonth"),
		StartQuarter: q.Get("startQuarter"),
		EndQuarter:   q.Get("endQuarter"),
	}

	for _, raw := range splitList(q.Get("years")) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return analytics.Request{}, "", errors.New("years must be numeric")
		}
		req.Years = append(req.Years, year)
	}

	if err := req.Validate(); err != nil {
		return analytics.Request{}, "", err
	}

	shape := q.Get("shape")
	switch shape {
	case "", "summary", "rows":
	default:
		return analytics.Request{}, "", errors.New(`shape must be "rows" or "summary"`)
	}

	return req, shape, nil
}

// splitList parses a comma-separated query parameter, dropping empties.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Message: err.Error()})
}
