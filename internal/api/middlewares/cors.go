package middlewares

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/types"
)

const (
	maxAge = 300
)

func CorsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type", types.CallerHeader},
		MaxAge:         maxAge,
	}
	c := cors.New(options)
	return c.Handler
}
