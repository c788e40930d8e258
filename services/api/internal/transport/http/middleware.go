package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestObserver counts served requests. *metric.Metrics satisfies it.
type RequestObserver interface {
	RequestServed(method string, status int)
}

// RequestLogger logs basic request details and latency.
func RequestLogger(next http.Handler, logger *zap.Logger, observer RequestObserver) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
		if observer != nil {
			observer.RequestServed(r.Method, rec.status)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
