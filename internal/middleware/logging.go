package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/set-night/tasksplit/internal/domain"
)

const (
	requestIDKey ctxKey = "requestID"
	logFieldsKey ctxKey = "logFields"
)

// logFields is filled in by inner middleware so Logging can report values
// that only exist on the derived request context.
type logFields struct {
	userID string
}

func markUser(ctx context.Context, user *domain.User) {
	if f, ok := ctx.Value(logFieldsKey).(*logFields); ok {
		f.userID = user.ID.String()
	}
}

// RequestID tags each request with a short id, reusing a client-supplied
// X-Request-ID when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.New().String()[:8]
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logging logs request method, path, status and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			fields := &logFields{}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), logFieldsKey, fields)))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
				"request_id", GetRequestID(r.Context()),
			}
			if fields.userID != "" {
				attrs = append(attrs, "user_id", fields.userID)
			}
			if sw.status >= http.StatusInternalServerError {
				logger.Warn("request processed", attrs...)
				return
			}
			logger.Info("request processed", attrs...)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
