package http

import (
	"context"
	"net/http"
	"time"
	"unicode"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionHeader      = "X-Session-ID"
	maxSessionIDLength = 64
)

type sessionKey struct{}

// SessionMiddleware reads the session id from X-Session-ID, minting one when
// the header is absent. The id is echoed back so clients can keep it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		} else if !validSessionID(sessionID) {
			respondError(w, http.StatusBadRequest, "invalid_session", "session id must be 1-64 printable characters")
			return
		}

		w.Header().Set(SessionHeader, sessionID)
		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validSessionID(id string) bool {
	if len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// SessionIDFromContext returns the id set by SessionMiddleware.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestLogger logs one line per request with its status, size and latency.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}
				l := logger.WithContext(r.Context(), log)
				if ww.Status() >= http.StatusInternalServerError {
					l.Error("request", fields...)
					return
				}
				l.Info("request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
