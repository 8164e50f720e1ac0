package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

const TraceIDHeader = "X-Trace-ID"

// validTraceID bounds what a client may put into our log lines.
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags the request logger with a trace id and echoes it back. An
// incoming X-Trace-ID is reused when it looks like an id, otherwise a fresh
// UUID is issued.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if !validTraceID.MatchString(traceID) {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(logger.With(r.Context(), "trace_id", traceID)))
	})
}
