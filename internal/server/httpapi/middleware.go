package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

// LoggerMiddleware logs one line per request, health checks excepted.
func LoggerMiddleware(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if r.URL.Path != "/health" {
					l.Info(r.Context(), "http_request",
						"request_id", middleware.GetReqID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"status", ww.Status(),
						"bytes", ww.BytesWritten(),
						"duration", time.Since(start),
					)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Authenticate requires a valid bearer access token and stores its claims
// in the request context.
func Authenticate(secretKey []byte, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get(common.AuthorizationHeader)
			token, ok := strings.CutPrefix(h, common.BearerPrefix)
			if !ok || token == "" {
				writeError(w, log, r, http.StatusUnauthorized, "missing access token")
				return
			}

			claims, err := auth.ParseToken(token, secretKey)
			if err != nil {
				writeError(w, log, r, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// RequireAdmin lets only tokens with the admin role through. It must run
// after Authenticate.
func RequireAdmin(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := ClaimsFrom(r.Context())
			if c == nil || c.Role != common.RoleAdmin {
				writeError(w, log, r, http.StatusForbidden, "administrator role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFrom returns the claims Authenticate stored, or nil.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxKey{}).(*auth.Claims)
	return c
}
