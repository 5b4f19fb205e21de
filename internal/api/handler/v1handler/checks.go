package v1handler

import (
	"encoding/json"
	"finder/internal/checker"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"net/http"
	"strings"
)

// maxRequestBodyBytes caps JSON request bodies.
const maxRequestBodyBytes = 1 << 20

// CheckRequest is the body of POST /v1/checks.
type CheckRequest struct {
	URLs []string `json:"urls"`
}

// CheckResponse lists results in completion order.
type CheckResponse struct {
	Results []domain.CheckResult `json:"results"`
	Stats   checker.Stats        `json:"stats"`
}

// CreateChecks probes the requested websites and answers once all of them resolved.
func (h *Handler) CreateChecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload"))

		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, u)
		}
	}
	switch {
	case len(urls) == 0:
		h.WriteError(w, r, serrors.With(serrors.ErrBadRequest, "invalid payload: missing urls"))

		return
	case h.options.MaxURLsPerRequest > 0 && len(urls) > h.options.MaxURLsPerRequest:
		h.WriteError(w, r, serrors.With(serrors.ErrBadRequest,
			"too many urls: %d given, at most %d allowed", len(urls), h.options.MaxURLsPerRequest))

		return
	}

	results, stats, err := h.deps.Checker.CheckMany(ctx, urls, nil)
	if err != nil {
		h.WriteError(w, r, serrors.Wrap(serrors.ErrTimeout, err, "checks interrupted"))

		return
	}
	if results == nil {
		results = []domain.CheckResult{}
	}

	writeJSON(ctx, w, http.StatusOK, CheckResponse{Results: results, Stats: stats})
}
