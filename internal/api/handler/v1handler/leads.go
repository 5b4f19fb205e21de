package v1handler

import (
	"finder/internal/export"
	"finder/internal/leads"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// LeadsResponse is the JSON export document of the leads plus the filter statistics.
type LeadsResponse struct {
	export.Document[domain.Lead]

	Stats leads.Stats `json:"stats"`
}

// ListLeads filters the stored businesses into leads. quality=true applies
// the quality thresholds. format=csv or format=xlsx returns a file in the
// export layout instead of JSON.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	criteria := h.options.Criteria
	if v := r.URL.Query().Get("quality"); v != "" {
		quality, err := strconv.ParseBool(v)
		if err != nil {
			h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid quality %q", v))

			return
		}
		if quality {
			criteria = h.options.QualityCriteria
		}
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "xlsx":
	default:
		h.WriteError(w, r, serrors.With(serrors.ErrBadRequest, "unsupported format %q", format))

		return
	}

	businesses, err := h.deps.Storage.Businesses(ctx, storage.BusinessQuery{WithWebsite: true})
	if err != nil {
		h.WriteError(w, r, err)

		return
	}
	found, stats := leads.New(criteria).Leads(ctx, businesses)

	var writeErr error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
		writeErr = export.WriteLeadsCSV(w, found)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
		writeErr = export.WriteLeadsXLSX(w, found)
	default:
		writeJSON(ctx, w, http.StatusOK, LeadsResponse{
			Document: export.NewDocument(found, h.options.Now()),
			Stats:    stats,
		})
	}
	if writeErr != nil {
		logger.Warn(ctx, "could not write leads", zap.String("format", format), zap.Error(writeErr))
	}
}
