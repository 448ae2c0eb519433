package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
)

type ctxKeyRequestID struct{}

// RequestID reads X-Request-ID if provided, otherwise generates a UUID.
// The value is stored in context and echoed in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, rid)
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	rid, ok := ctx.Value(ctxKeyRequestID{}).(string)
	return rid, ok
}

// ClientMeta captures the caller's address and user agent so audit entries
// written further down the stack can record them.
func ClientMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := httpx.WithMeta(r.Context(), httpx.MetaFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
