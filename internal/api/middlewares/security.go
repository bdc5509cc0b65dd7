package middlewares

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"
)

const swaggerPathPrefix = "/swagger/"

// The JSON api never serves documents, so it can deny everything. Only the
// swagger ui pulls scripts and styles.
const (
	apiContentSecurityPolicy     = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	swaggerContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; img-src 'self' data:; object-src 'none'; " +
		"frame-ancestors 'none'; form-action 'self'; base-uri 'self'"
)

func newSecure(csp string) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: csp,
		ReferrerPolicy:        "no-referrer",
	})
}

// SecurityHeadersMiddleware sets the security headers through unrolled/secure.
// Ledger reads are marked no-store since any mutation changes them.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	api := newSecure(apiContentSecurityPolicy)
	swagger := newSecure(swaggerContentSecurityPolicy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := api
			if strings.HasPrefix(r.URL.Path, swaggerPathPrefix) {
				sec = swagger
			} else {
				w.Header().Set("Cache-Control", "no-store")
			}

			if err := sec.Process(w, r); err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("error while applying security headers")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
