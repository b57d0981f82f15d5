package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexiusacademia/gotruss/internal/config"
	"github.com/alexiusacademia/gotruss/internal/logger"
	"github.com/alexiusacademia/gotruss/internal/trussfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const barJSON = `{
  "materials": {"steel": {"elasticity": 200000000, "area": 0.02}},
  "default_material": "steel",
  "points": [
    {"x": 0, "y": 0, "restrain_x": true, "restrain_y": true},
    {"x": 1, "y": 0, "restrain_y": true},
    {"x": 2, "y": 0, "restrain_y": true, "loads": [{"x": 50000, "y": 0}]}
  ],
  "members": [{"from": 1, "to": 2}, {"from": 2, "to": 3}]
}`

func newTestServer() *Server {
	return New(config.Default(), logger.NewSilent())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestMaterials(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/api/v1/materials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"steel"`)
}

func TestSolve(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/v1/solve", barJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool             `json:"success"`
		Data    trussfile.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Points, 3)
	assert.InDelta(t, 0.025, resp.Data.Points[2].UX, 1e-6)
}

func TestSolve_QueryOptions(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/api/v1/solve?solver=conjugate-gradient&scale=2&tolerance=1e-9", barJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data trussfile.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2.0, resp.Data.LoadScale)
	assert.InDelta(t, 0.05, resp.Data.Points[2].UX, 1e-6)

	rec = do(t, s, http.MethodPost, "/api/v1/solve?format=geojson", barJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)
}

func TestSolve_Errors(t *testing.T) {
	unrestrained := strings.Replace(barJSON, `"restrain_x": true, `, "", 1)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"malformed json", "/api/v1/solve", `{"points": [`, http.StatusBadRequest},
		{"unknown solver", "/api/v1/solve?solver=jacobi", barJSON, http.StatusBadRequest},
		{"bad scale", "/api/v1/solve?scale=-1", barJSON, http.StatusBadRequest},
		{"bad tolerance", "/api/v1/solve?tolerance=x", barJSON, http.StatusBadRequest},
		{"invalid document", "/api/v1/solve", `{"points": []}`, http.StatusUnprocessableEntity},
		{"singular", "/api/v1/solve", unrestrained, http.StatusUnprocessableEntity},
	}
	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestRun_Shutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(cfg, logger.NewSilent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
