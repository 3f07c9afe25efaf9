package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/core/listing"
	"github.com/regpulse/regpulse/schema"
	"github.com/rs/zerolog"
)

// Handler serves the API endpoints from an engine.
type Handler struct {
	engine    *core.Engine
	refresher Refresher
}

// NewHandler returns a handler. A nil refresher makes POST /refresh answer 503.
func NewHandler(engine *core.Engine, refresher Refresher) *Handler {
	return &Handler{engine: engine, refresher: refresher}
}

type errorResponse struct {
	Error string `json:"error"`
}

type eventsResponse struct {
	Selection schema.Selection  `json:"selection"`
	Sort      listing.SortState `json:"sort"`
	Count     int               `json:"count"`
	Events    []schema.Event    `json:"events"`
}

type goalsResponse struct {
	Selection schema.Selection          `json:"selection"`
	Cards     []schema.ProjectionResult `json:"cards"`
	Bars      []schema.GoalBar          `json:"bars"`
}

type refreshResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// parseSelection reads the product and quarter query parameters. Unknown products
// are rejected; unknown quarters simply match nothing.
func (h *Handler) parseSelection(r *http.Request) (schema.Selection, error) {
	q := r.URL.Query()
	sel := schema.Selection{Product: q.Get("product"), Quarter: q.Get("quarter")}.Normalized()
	if !schema.IsAll(sel.Product) && !h.engine.Goals().HasProduct(sel.Product) {
		return sel, fmt.Errorf("unknown product '%s'", sel.Product)
	}
	return sel, nil
}

func parseSort(r *http.Request) (listing.SortState, error) {
	state := listing.DefaultSortState()
	q := r.URL.Query()
	if col := strings.TrimSpace(q.Get("sort")); col != "" {
		state.Column = schema.SortColumn(col)
		if _, ok := schema.ValidSortColumns[state.Column]; !ok {
			return state, fmt.Errorf("invalid sort column '%s'", col)
		}
	}
	if dir := strings.ToLower(strings.TrimSpace(q.Get("dir"))); dir != "" {
		state.Direction = schema.SortDirection(dir)
		if state.Direction != schema.Ascending && state.Direction != schema.Descending {
			return state, fmt.Errorf("invalid sort direction '%s'", dir)
		}
	}
	return state, nil
}

// Health reports liveness of the process, not freshness of the data.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus returns the sync state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.engine.Status())
}

// ListEvents returns the events in scope, sorted.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	state, err := parseSort(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	events := h.engine.SortedEvents(sel, state)
	if events == nil {
		events = []schema.Event{}
	}
	writeJSON(w, r, http.StatusOK, eventsResponse{Selection: sel, Sort: state, Count: len(events), Events: events})
}

// GetSummary returns every derived view for the scope, computed from one snapshot.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.engine.Summary(sel))
}

// GetAggregates returns totals, per-product or per-quarter buckets.
func (h *Handler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	kind := chi.URLParam(r, "kind")
	switch kind {
	case "totals":
		writeJSON(w, r, http.StatusOK, h.engine.Totals(sel))
	case "products":
		writeJSON(w, r, http.StatusOK, nonNil(h.engine.ByProduct(sel)))
	case "quarters":
		writeJSON(w, r, http.StatusOK, nonNil(h.engine.ByQuarter(sel)))
	default:
		writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown aggregate '%s'. must be totals, products, quarters", kind))
	}
}

// GetGoals returns goal cards and goal bars.
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, goalsResponse{
		Selection: sel,
		Cards:     nonNil(h.engine.GoalCards(sel)),
		Bars:      nonNil(h.engine.GoalBars(sel)),
	})
}

// GetRanking returns the product ranking.
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(h.engine.Ranking(sel)))
}

// GetInsights returns concerns and positives.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	report := h.engine.Insights(sel)
	report.Concerns = nonNil(report.Concerns)
	report.Positives = nonNil(report.Positives)
	writeJSON(w, r, http.StatusOK, report)
}

// GetCheck returns the well-formedness report of the events in scope.
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.engine.Check(sel))
}

// Refresh starts a manual sync. It answers 202 when one started, 409 when one is
// already running and 503 when syncing has stopped.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, r, http.StatusServiceUnavailable, fmt.Errorf("refresh is not available"))
		return
	}
	switch err := h.refresher.Refresh(r.Context()); {
	case errors.Is(err, feed.ErrInFlight):
		writeJSON(w, r, http.StatusConflict, refreshResponse{Started: false, Message: err.Error()})
		return
	case err != nil:
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Msg("manual refresh started")
	writeJSON(w, r, http.StatusAccepted, refreshResponse{Started: true, Message: "sync started"})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
