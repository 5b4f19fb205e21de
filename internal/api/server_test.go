package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"finder/internal/api"
	"finder/internal/api/handler/v1handler"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/storage/memory"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts api.Options) *httptest.Server {
	t.Helper()

	store := memory.New()
	_, err := store.UpsertBusinesses(context.Background(), domain.Business{
		PlaceID: "p1", Name: "Alpha Cafe", Website: "https://alpha.example.com",
	})
	require.NoError(t, err)

	opts.RequestTimeout = 5 * time.Second
	opts.MetricsPath = "/metrics"
	srv, err := api.NewServer(api.Deps{
		Deps:     v1handler.Deps{Storage: store},
		Registry: prometheus.NewRegistry(),
	}, opts)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func get(t *testing.T, url, token string) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, string(body)
}

func TestServerRoutes(t *testing.T) {
	ts := newTestServer(t, api.Options{})

	status, body := get(t, ts.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"ok"}`, body)

	status, body = get(t, ts.URL+"/v1/businesses/p1", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"placeId":"p1"`)

	status, _ = get(t, ts.URL+"/v1/stats", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = get(t, ts.URL+"/debug/pprof/cmdline", "")
	require.Equal(t, http.StatusOK, status)

	status, body = get(t, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "http_server_requests")
	require.Contains(t, body, `route="/v1/businesses/{placeID}"`)
}

func TestServerRequiresBearerToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1})

	ts := newTestServer(t, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: string(pubPEM)},
	})

	status, _ := get(t, ts.URL+"/v1/stats", "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, ts.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, status)

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "sales-team",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(priv)
	require.NoError(t, err)

	status, _ = get(t, ts.URL+"/v1/stats", token)
	require.Equal(t, http.StatusOK, status)
}

func TestNewServerRejectsInvalidKey(t *testing.T) {
	_, err := api.NewServer(api.Deps{Registry: prometheus.NewRegistry()}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: "garbage"},
	})
	require.Error(t, err)
}
