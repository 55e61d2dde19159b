package security

import (
	"fmt"
	"net/http"
)

type HeadersConfig struct {
	CSP                 string
	HSTSMaxAge          int
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
}

// DefaultHeadersConfig suits a JSON API that serves no documents.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                 "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:          31536000,
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		CrossOriginResource: "same-origin",
	}
}

type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		set := func(k, v string) {
			if v != "" {
				headers.Set(k, v)
			}
		}
		set("Content-Security-Policy", h.config.CSP)
		set("X-Frame-Options", h.config.XFrameOptions)
		set("X-Content-Type-Options", h.config.XContentTypeOptions)
		set("Referrer-Policy", h.config.ReferrerPolicy)
		set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
		headers.Set("Cache-Control", "no-store")

		// HSTS only means something over TLS.
		if r.TLS != nil && h.config.HSTSMaxAge > 0 {
			headers.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", h.config.HSTSMaxAge))
		}
		next.ServeHTTP(w, r)
	})
}
