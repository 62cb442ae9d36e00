package logger

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs one line per request with status, size and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := "INFO"
		if status >= 500 {
			level = "WARN"
		}
		log.Printf("[%s] %s %s -> %d (%dB) in %s", level, r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start).Round(time.Microsecond))
	})
}
