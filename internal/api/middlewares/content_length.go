package middlewares

import (
	"net/http"

	"github.com/algem/liquid-staking-service/internal/config"
)

// ContentLengthMiddleware rejects oversized POST bodies. Bodies without a
// declared length are capped while they are read.
func ContentLengthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if r.ContentLength > cfg.Server.MaxContentLength {
					http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, cfg.Server.MaxContentLength)
			}
			next.ServeHTTP(w, r)
		})
	}
}
