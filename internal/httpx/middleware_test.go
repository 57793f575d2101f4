package httpx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/data/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() != "test_http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		metric := mf.GetMetric()[0]
		assert.Equal(t, 3.0, metric.GetCounter().GetValue())

		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, map[string]string{"method": "GET", "route": "/api/data/{id}", "status": "404"}, labels)
		found = true
	}
	assert.True(t, found, "request counter not registered")
}

func TestRequestLogger_LogsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", "text")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	out := buf.String()
	assert.Contains(t, out, "msg=request")
	assert.Contains(t, out, "module=http")
	assert.Contains(t, out, "status=401")
	assert.Contains(t, out, "path=/api/auth/login")
	assert.Contains(t, out, "request_id=")
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "No file uploaded")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"No file uploaded"}`, rec.Body.String())
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler("dataloader", fakePinger{})

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"dataloader"`)

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthHandler("dataloader", fakePinger{err: errors.New("connection refused")})
	rec = httptest.NewRecorder()
	down.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "connection refused"))
}
