package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"videoads/internal/http/handlers"
	"videoads/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger         zerolog.Logger
	JWTSecret      string
	AllowedOrigins []string
	RateLimit      int
	Country        middleware.CountryLookup
	// StaticDir, when set, serves stored objects under /static.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Country(opts.Country),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Group(func(r chi.Router) {
			if opts.RateLimit > 0 {
				r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
			}
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Route("/bases", func(r chi.Router) {
				r.Get("/", app.ListBases)
				r.Put("/{title}", app.PutBase)
				r.Delete("/{title}", app.DeleteBase)
				r.Get("/{title}/draft", app.BaseDraft)
				r.Get("/{title}/groups", app.BaseGroups)
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", app.ListProducts)
				r.Put("/{id}", app.PutProduct)
				r.Delete("/{id}", app.DeleteProduct)
			})
			r.Route("/offer-types", func(r chi.Router) {
				r.Get("/", app.ListOfferTypes)
				r.Put("/{base}/{title}", app.PutOfferType)
				r.Delete("/{base}/{title}", app.DeleteOfferType)
				r.Get("/{base}/{title}/configs", app.OfferTypeConfigs)
			})
			r.Route("/videos", func(r chi.Router) {
				r.Get("/", app.ListVideos)
				r.Post("/", app.CreateVideo)
				r.Post("/bulk", app.CreateBulkVideos)
				r.Post("/refresh", app.RefreshVideos)
				r.Delete("/id/{id}", app.DeleteVideoByID)
				r.Delete("/*", app.DeleteVideo)
			})
		})
	})

	return r
}
