package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-trip-day-planner/docs"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/auth"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/trip"
)

const defaultRequestsPerMinute = 60

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	TripHandler            trip.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	// RequestsPerMinute caps the expensive routes per client IP.
	RequestsPerMinute int
	AllowedOrigins    []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request ID, logging, recoverer) is applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	limited := httprate.LimitByIP(perMinute, time.Minute)

	h := cfg.TripHandler
	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/itineraries/cluster", h.ClusterRecords)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", cfg.AuthHandler.Register)
				r.Post("/login", cfg.AuthHandler.Login)
				r.Post("/refresh", cfg.AuthHandler.Refresh)
				r.Post("/logout", cfg.AuthHandler.Logout)
			})
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.With(limited).Post("/quick-plan", h.QuickPlan)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", h.CreateTrip)
				r.Get("/", h.ListTrips)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", h.GetTrip)
					r.Delete("/", h.DeleteTrip)

					r.With(limited).Post("/brainstorm", h.Brainstorm)

					r.Post("/activities", h.AddActivities)
					r.Delete("/activities", h.ClearActivities)
					r.Delete("/activities/{activityID}", h.RemoveActivity)
					r.Post("/geocode", h.GeocodeActivities)
					r.Get("/pool", h.PoolItems)

					r.Route("/itinerary", func(r chi.Router) {
						r.Post("/basic", h.GenerateBasicItinerary)
						r.With(limited).Post("/detailed", h.GenerateDetailedItinerary)
						r.With(limited).Post("/detailed/modify", h.ModifyDetailedItinerary)
						r.Post("/detailed/stops", h.AddStopFromPool)
						r.Post("/detailed/days/{day}/stops/{index}/move", h.MoveStop)
						r.Delete("/detailed/days/{day}/stops/{index}", h.RemoveStop)
					})
				})
			})
		})
	})

	return r
}
