package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/http/handlers"
	"github.com/rahmanmohd/incubator-api/internal/middleware"
)

// Options configures the router's middleware stack.
type Options struct {
	Logger          zerolog.Logger
	JWTSecret       string
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

// NewRouter assembles the API surface. Everything under /v1/applications is
// admin-only; health stays open for probes.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/applications", func(r chi.Router) {
		r.Use(middleware.AdminJWT(opts.JWTSecret))

		r.Get("/", app.ApplicationsList)
		r.Get("/stats", app.ApplicationsStats)
		r.Get("/feed", app.ApplicationsFeed)
		r.Get("/{kind}/{id}", app.ApplicationsGet)
		r.Patch("/{kind}/{id}", app.ApplicationsUpdateStatus)
		r.Delete("/{kind}/{id}", app.ApplicationsDelete)
	})

	return r
}
