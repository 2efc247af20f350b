package middleware

import (
	"net/http"
	"time"

	"github.com/LeonVreling/oms-statutory/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context, so every time-sensitive decision within one
// request (deadline gating, status derivation) observes the same "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
