package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	RequestIDHeader = "X-Request-ID"
	RealIPHeader    = "X-Real-IP"
)

type ctxKey string

const (
	LoggerKey    ctxKey = "logger"
	RequestStart ctxKey = "request-start"
)

var (
	tracer = otel.Tracer("hr-ontology/http")

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hr_api_request_duration_seconds",
		Help:    "Latency of API requests by route template and status class.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"route", "method", "status_class"})
)

// LoggerOptions controls body capture. Bodies are only captured for JSON
// payloads and cut at MaxBodyLength.
type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int
	Repanic         bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{LogRequestBody: true, MaxBodyLength: 512}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
	body    *bytes.Buffer
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	if w.body != nil {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Flush keeps gzip and streaming writers working behind the recorder.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get(RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func isJSON(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "application/json")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// TracedMiddleware wraps the rest of the chain in a span named after the
// middleware stack.
func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.route", routeTemplate(r)),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger returns the request scoped logger stored by WithLogger.
func Logger(ctx context.Context, fallback *logrus.Logger) logrus.FieldLogger {
	if l, ok := ctx.Value(LoggerKey).(*logrus.Entry); ok {
		return l
	}
	return fallback
}

// WithLogger logs every request, opens the root span, observes latency and
// turns handler panics into a JSON 500.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			route := routeTemplate(r)

			log := logger.WithFields(logrus.Fields{
				"request-id": id,
				"route":      route,
				"method":     r.Method,
			})
			log.WithFields(logrus.Fields{
				"path": r.URL.Path,
				"ip":   clientIP(r),
			}).Info("request started")

			if opts.LogRequestBody && r.Body != nil && r.Method == http.MethodPost && isJSON(r.Header) {
				raw, err := io.ReadAll(r.Body)
				if err != nil {
					log.WithError(err).Error("failed to read request body")
					http.Error(w, "failed to read request body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(raw))
				log.WithField("request-body", truncate(string(raw), opts.MaxBodyLength)).Debug("request body")
			}

			ctx := propagation.TraceContext{}.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, "http "+r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("http.request_id", id),
				),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				log = log.WithField("trace-id", sc.TraceID().String())
			}
			w.Header().Set("X-Request-Id", id)

			ctx = context.WithValue(ctx, LoggerKey, log)
			ctx = context.WithValue(ctx, RequestStart, start)

			rec := &statusRecorder{ResponseWriter: w}
			if opts.LogResponseBody {
				rec.body = &bytes.Buffer{}
			}
			defer func() {
				if recovered := recover(); recovered != nil {
					log.WithFields(logrus.Fields{
						"panic": recovered,
						"stack": string(debug.Stack()),
					}).Error("panic in request handler")
					if !rec.written {
						rec.Header().Set("Content-Type", "application/json")
						rec.WriteHeader(http.StatusInternalServerError)
						_ = json.NewEncoder(rec).Encode(map[string]any{
							"code":    "INTERNAL_SERVER_ERROR",
							"message": "internal server error",
							"meta":    map[string]string{"request_id": id},
						})
					}
					requestDuration.WithLabelValues(route, r.Method, "5").Observe(time.Since(start).Seconds())
					if opts.Repanic {
						panic(recovered)
					}
				}
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			elapsed := time.Since(start)
			requestDuration.WithLabelValues(route, r.Method, strconv.Itoa(status/100)).Observe(elapsed.Seconds())
			span.SetAttributes(attribute.Int("http.status_code", status))
			log.WithFields(logrus.Fields{
				"duration":    elapsed,
				"status-code": status,
			}).Info("request completed")

			if rec.body != nil && isJSON(rec.Header()) {
				log.WithField("response-body", truncate(rec.body.String(), opts.MaxBodyLength)).Debug("response body")
			}
		})
	}
}
