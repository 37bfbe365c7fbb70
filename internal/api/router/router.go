// Package router assembles the HTTP surface: the public Meta webhook routes
// and the JWT-protected staff endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/http/middleware"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/webhook"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	WebhookHandler     *webhook.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminJWTSecret     string
	AdminRateLimit     int
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	if cfg.WebhookHandler == nil {
		panic("router: webhook handler required")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: Meta's handshake and deliveries, plus probes.
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.WebhookHandler.Health)
		public.Route("/api/whatsapp", func(r chi.Router) {
			r.Get("/", cfg.WebhookHandler.Verify)
			r.Post("/", cfg.WebhookHandler.Receive)
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Staff endpoints.
	r.Group(func(staff chi.Router) {
		rate := cfg.AdminRateLimit
		if rate <= 0 {
			rate = 5
		}
		staff.Use(httpmiddleware.RateLimit(float64(rate), rate*2))
		staff.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
		staff.Post("/api/atendimento", cfg.WebhookHandler.Takeover)
	})

	return r
}
