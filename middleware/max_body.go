package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

func envBytes(key string, def int64) int64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// MaxBodyMiddleware caps request bodies. JSON payloads get MAX_BODY_BYTES
// (default 1 MiB); multipart uploads, used only by the product image
// endpoints, get MAX_UPLOAD_BYTES (default 10 MiB).
func MaxBodyMiddleware(next http.Handler) http.Handler {
	jsonMax := envBytes("MAX_BODY_BYTES", 1<<20)
	uploadMax := envBytes("MAX_UPLOAD_BYTES", 10<<20)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		max := jsonMax
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			max = uploadMax
		}
		r.Body = http.MaxBytesReader(w, r.Body, max)
		next.ServeHTTP(w, r)
	})
}
