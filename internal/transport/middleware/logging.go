package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

// maxLoggedBody caps how much of a request or response body ends up in a log
// line. Bodies beyond the cap are logged truncated and never parsed.
const maxLoggedBody = 4 << 10

const filtered = "[FILTERED]"

// sensitiveFields are matched as substrings of lower-cased header names and
// JSON keys, so "refresh_token" and "password_hash" are covered.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"credential",
}

// probePaths are logged at debug level unless they fail.
var probePaths = map[string]bool{
	"/api/v1/health": true,
	"/api/v1/ping":   true,
}

// LoggingMiddleware logs every request and response with sensitive values
// masked. It uses the context logger so trace and user ids come along when
// RequestID ran first. base is used when the context carries no logger.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lg := base
			if logger.HasLogger(r.Context()) {
				lg = logger.From(r.Context())
			}

			reqLevel := slog.LevelInfo
			if probePaths[r.URL.Path] {
				reqLevel = slog.LevelDebug
			}

			lg.Log(r.Context(), reqLevel, "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", maskHeaders(r.Header),
				"body", peekRequestBody(r),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status()
			lg.Log(r.Context(), responseLevel(reqLevel, status), "response",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", maskBody(rec.captured.Bytes(), rec.truncated),
			)
		})
	}
}

func responseLevel(reqLevel slog.Level, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return reqLevel
}

// recorder tracks the status and size of a response and keeps the first
// maxLoggedBody bytes of JSON payloads.
type recorder struct {
	http.ResponseWriter
	code      int
	size      int
	captured  bytes.Buffer
	truncated bool
	decided   bool
	capture   bool
}

func (rw *recorder) WriteHeader(code int) {
	if rw.code == 0 {
		rw.code = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if !rw.decided {
		rw.decided = true
		rw.capture = isJSON(rw.Header().Get("Content-Type"))
	}
	if rw.capture {
		room := maxLoggedBody - rw.captured.Len()
		switch {
		case room >= len(b):
			rw.captured.Write(b)
		case room > 0:
			rw.captured.Write(b[:room])
			rw.truncated = true
		default:
			rw.truncated = true
		}
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *recorder) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// peekRequestBody reads at most maxLoggedBody bytes and stitches them back in
// front of the remaining stream so the handler sees the full body.
func peekRequestBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !isJSON(ct) {
		return "[" + ct + "]"
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}

	truncated := len(head) > maxLoggedBody
	if truncated {
		head = head[:maxLoggedBody]
	}
	return maskBody(head, truncated)
}

type readCloser struct {
	io.Reader
	io.Closer
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(strings.ToLower(name)) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func isSensitive(name string) bool {
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

// maskBody masks sensitive JSON fields. A truncated or unparseable body is
// dropped when it mentions a sensitive word.
func maskBody(body []byte, truncated bool) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if truncated || json.Unmarshal(body, &data) != nil {
		if isSensitive(strings.ToLower(string(body))) {
			return "[FILTERED - Contains sensitive data]"
		}
		if truncated {
			return string(body) + "...[truncated]"
		}
		return string(body)
	}

	masked, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(masked)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(strings.ToLower(key)) {
				out[key] = filtered
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
