package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
)

type ctxKeyRequestID struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithRequestLog tags every request with an id and logs the outcome.
func WithRequestLog(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		reqLog := log.With(slog.String("request_id", id))
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		reqLog.Info("Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// LoggerFromContext adds the request id from ctx, if any, to log.
func LoggerFromContext(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return log.With(slog.String("request_id", id))
	}

	return log
}
