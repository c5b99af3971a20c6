package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(log *logrus.Logger, mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mws...)
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		Logger(r.Context(), log).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	})
	r.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	return r
}

func TestWithLogger_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.InfoLevel)
	r := newRouter(log, WithLogger(log, DefaultLoggerOptions()))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Equal(t, 3, strings.Count(out, "request-id=req-1"))
}

func TestWithLogger_ObservesRouteTemplate(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	r := newRouter(log, WithLogger(log, DefaultLoggerOptions()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	series := testutil.CollectAndCount(requestDuration)
	assert.GreaterOrEqual(t, series, 1)
	h := requestDuration.WithLabelValues("/ok", http.MethodGet, "2")
	require.NotNil(t, h)
}

func TestWithLogger_RecoversPanics(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	r := newRouter(log, WithLogger(log, DefaultLoggerOptions()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	rl, err := RateLimit(RateLimitConfig{RequestsPerPeriod: 2, Period: "M"})
	require.NoError(t, err)
	r := newRouter(log, rl)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_BadRate(t *testing.T) {
	_, err := RateLimit(RateLimitConfig{RequestsPerPeriod: 1, Period: "W"})
	require.Error(t, err)
}

func TestCors_Preflight(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	r := newRouter(log, Cors("http://localhost:3000"))

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
