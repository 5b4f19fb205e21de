package v1handler

import (
	"finder/internal/export"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultLimit is the page size of business listings.
	DefaultLimit = 100
	// MaxLimit caps the page size of business listings.
	MaxLimit = 1000
)

// GetBusiness returns one stored business with its latest website check.
func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	placeID := chi.URLParam(r, "placeID")

	b, err := h.deps.Storage.BusinessByPlaceID(ctx, placeID)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}
	if b == nil {
		h.WriteError(w, r, serrors.With(serrors.ErrNotFound, "business %q not found", placeID))

		return
	}

	writeJSON(ctx, w, http.StatusOK, export.NewBusinessRecord(*b))
}

// ListBusinesses returns stored businesses, optionally filtered by
// website status (status=NO_DNS&status=HTTP_ERROR_4XX) or unchecked=true.
func (h *Handler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := businessQuery(r)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	businesses, err := h.deps.Storage.Businesses(ctx, q)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, export.NewDocument(export.BusinessRecords(businesses), h.options.Now()))
}

// RecheckResponse is returned once a recheck is queued.
type RecheckResponse struct {
	PlaceID  string `json:"placeId"`
	Enqueued bool   `json:"enqueued"`
}

// RecheckBusiness queues a background recheck of a stored business website.
// Enqueued is false when an equal job is already waiting.
func (h *Handler) RecheckBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.deps.Scheduler == nil {
		h.WriteError(w, r, serrors.With(serrors.ErrUnavailable, "background rechecks are disabled"))

		return
	}

	placeID := chi.URLParam(r, "placeID")
	enqueued, err := h.deps.Scheduler.Enqueue(ctx, placeID)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	writeJSON(ctx, w, http.StatusAccepted, RecheckResponse{PlaceID: placeID, Enqueued: enqueued})
}

func businessQuery(r *http.Request) (storage.BusinessQuery, error) {
	values := r.URL.Query()
	q := storage.BusinessQuery{Limit: DefaultLimit}

	for _, raw := range values["status"] {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			s, err := domain.ParseStatus(name)
			if err != nil {
				return q, serrors.Wrap(serrors.ErrBadRequest, err, "invalid status %q", name)
			}
			q.Statuses = append(q.Statuses, s)
		}
	}

	if v := values.Get("unchecked"); v != "" {
		unchecked, err := strconv.ParseBool(v)
		if err != nil {
			return q, serrors.Wrap(serrors.ErrBadRequest, err, "invalid unchecked %q", v)
		}
		q.Unchecked = unchecked
	}

	if v := values.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 32)
		if err != nil || limit == 0 || limit > MaxLimit {
			return q, serrors.With(serrors.ErrBadRequest, "limit must be between 1 and %d", MaxLimit)
		}
		q.Limit = uint(limit)
	}

	return q, nil
}
