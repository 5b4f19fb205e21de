package v1handler_test

import (
	"context"
	"errors"
	"finder/internal/api/handler/v1handler"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestNewError(t *testing.T) {
	h := v1handler.New(v1handler.Deps{}, v1handler.Options{})

	tests := []struct {
		name    string
		err     error
		status  int
		code    serrors.Kind
		message string
	}{
		{
			name:    "plain error is internal",
			err:     errors.New("pq: relation does not exist"),
			status:  http.StatusInternalServerError,
			code:    serrors.ErrInternal,
			message: "internal error",
		},
		{
			name:    "bare kind gets default message",
			err:     serrors.ErrNotFound,
			status:  http.StatusNotFound,
			code:    serrors.ErrNotFound,
			message: "resource not found",
		},
		{
			name:    "message is exposed",
			err:     serrors.With(serrors.ErrBadRequest, "urls must not be empty"),
			status:  http.StatusBadRequest,
			code:    serrors.ErrBadRequest,
			message: "urls must not be empty",
		},
		{
			name:    "cause is not exposed",
			err:     serrors.Wrap(serrors.ErrUnauthorized, errors.New("token is expired"), "invalid bearer token"),
			status:  http.StatusUnauthorized,
			code:    serrors.ErrUnauthorized,
			message: "invalid bearer token",
		},
		{
			name:    "kind found through fmt wrapping",
			err:     fmt.Errorf("could not search: %w", serrors.With(serrors.ErrRateLimited, "quota exceeded")),
			status:  http.StatusTooManyRequests,
			code:    serrors.ErrRateLimited,
			message: "quota exceeded",
		},
		{
			name:    "interrupted checks",
			err:     serrors.With(serrors.ErrTimeout, "checks interrupted"),
			status:  http.StatusGatewayTimeout,
			code:    serrors.ErrTimeout,
			message: "checks interrupted",
		},
		{
			name:    "internal kind",
			err:     serrors.KindOnly(serrors.ErrInternal),
			status:  http.StatusInternalServerError,
			code:    serrors.ErrInternal,
			message: "internal error",
		},
		{
			name:    "config details stay hidden",
			err:     serrors.With(serrors.ErrInvalidConfig, "secret path /etc/finder/key.pem"),
			status:  http.StatusInternalServerError,
			code:    serrors.ErrInternal,
			message: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.NewError(context.Background(), tt.err)
			require.NotNil(t, res)
			require.Equal(t, tt.status, res.StatusCode)
			require.Equal(t, tt.code.Error(), res.Response.Code)
			require.Equal(t, tt.message, res.Response.Message)
		})
	}
}
