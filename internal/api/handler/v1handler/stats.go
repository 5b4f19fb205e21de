package v1handler

import (
	"finder/internal/leads"
	"finder/pkg/storage"
	"net/http"
)

// StatsResponse summarizes the stored businesses.
type StatsResponse struct {
	Statistics storage.Statistics `json:"statistics"`
	Analysis   leads.Analysis     `json:"analysis"`
}

// GetStats returns the storage statistics and the lead analysis of every stored business.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statistics, err := h.deps.Storage.Statistics(ctx, h.options.Dead)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	businesses, err := h.deps.Storage.Businesses(ctx, storage.BusinessQuery{})
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, StatsResponse{
		Statistics: statistics,
		Analysis:   leads.Analyze(businesses, h.options.Dead),
	})
}
