package httpapi

import (
	"net/http"
	"time"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/metrics"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs each request through zerolog and records it in the
// Prometheus request counters/histograms, mirroring warren's own
// interceptor.go pattern (pkg/api/interceptor.go) for its gRPC transport.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		log.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", duration).
			Msg("httpapi: request handled")

		metrics.APIRequestsTotal.WithLabelValues(r.Method, http.StatusText(ww.Status())).Inc()
		metrics.APIRequestDuration.WithLabelValues(r.Method).Observe(duration.Seconds())
	})
}
