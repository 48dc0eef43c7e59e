package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// responseRecorder captures the status code and body size for the access log.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

// requestLog emits one access log line per completed request.
func requestLog(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info(r.Context(), "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_bytes", rec.written,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// tokenFromRequest prefers the Authorization header over the session cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(common.AuthorizationHeaderName); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(common.SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func identityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// requireAdmin rejects requests without a valid admin token.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		id, err := h.users.Authenticate(token)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		if !id.IsAdmin {
			h.writeServiceError(w, r, common.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}
