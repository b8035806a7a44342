package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/telvanni/user-directory/pkg/logger"
)

// HeaderTraceID lets a gateway in front of the service pin its own trace
// id on a request; otherwise one is minted here.
const HeaderTraceID = "X-Trace-ID"

// RequestID attaches a trace id to the request-scoped logger and echoes it
// back in the response so a client can quote it when reporting a failure.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(HeaderTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
