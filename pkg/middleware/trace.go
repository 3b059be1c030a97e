package middleware

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/tracing"
)

// Trace opens a root span per request, keyed by the request ID. It must run
// after RequestID.
func Trace(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.StartSpan(r.Context(), r.Method+" "+r.URL.Path, GetRequestID(r.Context()))
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
