package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/http/request"
	"github.com/bookhive/bookhive/log"
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bookhive_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route"},
)

func init() {
	prometheus.MustRegister(requestDuration)
}

func requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.FindClientIP(r)
		requestID := uuid.NewString()

		ctx := r.Context()
		ctx = context.WithValue(ctx, request.ClientIPContextKey, clientIP)
		ctx = context.WithValue(ctx, request.RequestIDContextKey, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-Id", requestID)

		t1 := time.Now()
		defer func() {
			elapsed := time.Since(t1)
			requestDuration.WithLabelValues(routeLabel(r)).Observe(elapsed.Seconds())
			log.Debug("Incoming request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("proto", r.Proto),
				zap.String("client_ip", clientIP),
				zap.String("request_id", requestID),
				zap.Duration("duration", elapsed))
		}()

		next.ServeHTTP(w, r)
	})
}

// routeLabel uses the route template so book ids don't explode the
// metric's cardinality.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return "unmatched"
}
