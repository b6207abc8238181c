package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/logging"
)

// TraceHeader carries the request trace id in and out of the service.
const TraceHeader = "X-Trace-ID"

// Tracing propagates an inbound trace id, or generates one, and echoes it
// on the response.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
