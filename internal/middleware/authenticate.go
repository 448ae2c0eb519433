package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
	"github.com/AhilyaKokare/visitor-pass-service/internal/token"
)

type ctxKeyClaims struct{}

func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims{}, c)
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims{}).(*token.Claims)
	return c, ok
}

// Authenticate parses the bearer token and injects its claims into the
// request context. A missing, malformed, or expired token is a 401; the
// route-level role check is a separate concern (RequireRoles).
func Authenticate(tokens token.Service, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("token validation failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func unauthorized(w http.ResponseWriter, msg string) {
	httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
		Code:    httpx.ErrUnauthorized,
		Message: msg,
	})
}
