package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/MrJamesThe3rd/ilara/internal/http/category"
	"github.com/MrJamesThe3rd/ilara/internal/http/importcsv"
	"github.com/MrJamesThe3rd/ilara/internal/http/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/http/product"
	"github.com/MrJamesThe3rd/ilara/internal/http/sale"
	"github.com/MrJamesThe3rd/ilara/internal/http/summary"
	"github.com/MrJamesThe3rd/ilara/internal/observability"
)

type Options struct {
	Timeout       time.Duration
	AllowedOrigin string
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
}

type Handlers struct {
	Products   *product.Handler
	Categories *category.Handler
	Sales      *sale.Handler
	Ledger     *ledger.Handler
	Summary    *summary.Handler
	Import     *importcsv.Handler
}

func New(opts Options, metrics *observability.Metrics, v1 Handlers) http.Handler {
	router := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := secureMiddleware.Process(w, r); err != nil {
				slog.Warn("secure headers blocked request", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

				return
			}

			next.ServeHTTP(w, r)
		})
	})

	if opts.AllowedOrigin != "" {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{opts.AllowedOrigin},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	router.Get("/metrics", metrics.Handler().ServeHTTP)

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Products.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Categories.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Sales.Routes(r)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			v1.Ledger.Routes(r)
		})

		r.Route("/summary", v1.Summary.Routes)

		r.Route("/import", v1.Import.Routes)
	})

	return router
}
