package middleware

import (
	"net/http"
	"strconv"

	"p9ify/internal/transport/http/api"
)

// BodyLimit caps request bodies for writes. A declared Content-Length over
// the cap is refused before the handler runs; undeclared bodies are cut off
// while reading.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes <= 0 || !hasBody(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large",
					"request body exceeds "+strconv.FormatInt(maxBytes, 10)+" bytes", GetRequestID(r.Context()))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}
