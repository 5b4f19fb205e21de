// Package v1handler implements the version 1 HTTP API of the lead finder:
// ad-hoc website checks, stored businesses, leads and statistics.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"finder/internal/checker"
	"finder/internal/config"
	"finder/internal/leads"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Enqueuer schedules a background recheck of a stored business.
type Enqueuer interface {
	Enqueue(ctx context.Context, placeID string) (bool, error)
}

// Deps are the collaborators of the v1 handlers.
type Deps struct {
	Checker checker.Checker
	Storage storage.BusinessStorage
	// Scheduler is optional, rechecks answer 503 without it.
	Scheduler Enqueuer
}

// Options tune the v1 handlers.
type Options struct {
	// MaxURLsPerRequest caps the batch accepted by the checks endpoint.
	MaxURLsPerRequest int
	// Dead decides which statuses count as dead in statistics.
	Dead domain.StatusSet
	// Criteria selects leads by default.
	Criteria leads.Criteria
	// QualityCriteria selects leads when quality=true is requested.
	QualityCriteria leads.Criteria
	// Now is the clock used for export timestamps.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) (Options, error) {
	criteria, err := leads.NewCriteria(cfg, false)
	if err != nil {
		return Options{}, err
	}
	quality, err := leads.NewCriteria(cfg, true)
	if err != nil {
		return Options{}, err
	}

	return Options{
		MaxURLsPerRequest: cfg.HTTP.MaxURLsPerRequest,
		Dead:              criteria.IncludeStatuses,
		Criteria:          criteria,
		QualityCriteria:   quality,
		Now:               time.Now,
	}, nil
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	if options.Dead == nil {
		options.Dead = domain.DefaultDeadStatuses()
	}
	if options.Criteria.IncludeStatuses == nil {
		options.Criteria = leads.DefaultCriteria()
	}
	if options.QualityCriteria.IncludeStatuses == nil {
		options.QualityCriteria = leads.QualityCriteria()
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Handler{deps: deps, options: options}
}

// Routes registers the v1 endpoints on r. When sec is not nil every
// endpoint requires a valid bearer token.
func (h *Handler) Routes(r chi.Router, sec *SecHandler) {
	if sec != nil {
		r.Use(sec.Middleware(h.WriteError))
	}

	r.Post("/checks", h.CreateChecks)
	r.Get("/businesses", h.ListBusinesses)
	r.Get("/businesses/{placeID}", h.GetBusiness)
	r.Post("/businesses/{placeID}/recheck", h.RecheckBusiness)
	r.Get("/leads", h.ListLeads)
	r.Get("/stats", h.GetStats)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

var kindStatus = map[serrors.Kind]int{ //nolint: gochecknoglobals
	serrors.ErrNotFound:      http.StatusNotFound,
	serrors.ErrUnauthorized:  http.StatusUnauthorized,
	serrors.ErrForbidden:     http.StatusForbidden,
	serrors.ErrBadRequest:    http.StatusBadRequest,
	serrors.ErrConflict:      http.StatusConflict,
	serrors.ErrTimeout:       http.StatusGatewayTimeout,
	serrors.ErrUnavailable:   http.StatusServiceUnavailable,
	serrors.ErrRateLimited:   http.StatusTooManyRequests,
	serrors.ErrInvalidConfig: http.StatusInternalServerError,
	serrors.ErrInternal:      http.StatusInternalServerError,
}

var kindMessage = map[serrors.Kind]string{ //nolint: gochecknoglobals
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrUnauthorized: "unauthorized",
	serrors.ErrForbidden:    "forbidden",
	serrors.ErrBadRequest:   "bad request",
	serrors.ErrConflict:     "conflict",
	serrors.ErrTimeout:      "request timed out",
	serrors.ErrUnavailable:  "service unavailable",
	serrors.ErrRateLimited:  "too many requests",
}

// NewError maps err to an error response. Errors without a client facing
// kind are logged and reported as internal errors without details.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok || status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))

		return &ErrorStatusCode{
			StatusCode: http.StatusInternalServerError,
			Response: ErrorResponse{
				Code:    serrors.ErrInternal.Error(),
				Message: "internal error",
			},
		}
	}

	message := kindMessage[kind]
	var se *serrors.Error
	if errors.As(err, &se) && se.Message() != "" {
		message = se.Message()
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response:   ErrorResponse{Code: kind.Error(), Message: message},
	}
}

// WriteError writes the response built by NewError.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, res.Response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}
