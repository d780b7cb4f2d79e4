// Package rest is the HTTP transport. It decodes and validates requests,
// resolves the caller, calls the services and maps their errors to status
// codes in one place.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
	"github.com/dmitrijs2005/carmodpicker/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// Services bundles everything the handlers call into.
type Services struct {
	Users      *services.UserService
	Auth       *services.AuthService
	Cars       *services.CarService
	BuildLists *services.BuildListService
	Parts      *services.PartService
	Images     *services.ImageService
}

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type Server struct {
	svc      Services
	resolver *auth.Resolver
	validate *validator.Validate
	cookies  cookieSettings
	origins  []string
	ping     Pinger
	log      logging.Logger
}

func NewServer(svc Services, resolver *auth.Resolver, cfg *config.Config, ping Pinger, log logging.Logger) *Server {
	return &Server{
		svc:      svc,
		resolver: resolver,
		validate: newValidator(),
		cookies:  cookieSettings{secure: cfg.CookieSecure, ttl: cfg.AccessTokenTTL},
		origins:  cfg.AllowedOrigins,
		ping:     ping,
		log:      log.With("module", "rest"),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/token", s.login)
			r.Post("/logout", s.logout)
			r.With(s.RequireUser).Post("/verify-email", s.requestEmailVerification)
			r.Get("/verify-email/confirm", s.confirmEmailVerification)
			r.Post("/forgot-password", s.forgotPassword)
			r.Post("/reset-password/confirm", s.resetPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.createUser)
			r.With(s.RequireUser).Get("/me", s.me)
			r.With(s.OptionalUser).Get("/{id}", s.getUser)
			r.With(s.RequireUser).Put("/{id}", s.updateUser)
			r.With(s.RequireUser).Delete("/{id}", s.deleteUser)
		})

		r.Route("/cars", func(r chi.Router) {
			r.With(s.RequireUser).Post("/", s.createCar)
			r.Get("/user/{user_id}", s.listCars)
			r.Get("/{id}", s.getCar)
			r.With(s.RequireUser).Put("/{id}", s.updateCar)
			r.With(s.RequireUser).Delete("/{id}", s.deleteCar)
			r.With(s.RequireUser).Post("/{id}/image-upload", s.presignCarImage)
			r.With(s.RequireUser).Post("/{id}/image", s.confirmCarImage)
		})

		r.Route("/build-lists", func(r chi.Router) {
			r.With(s.RequireUser).Post("/", s.createBuildList)
			r.Get("/car/{car_id}", s.listBuildLists)
			r.Get("/{id}", s.getBuildList)
			r.With(s.RequireUser).Put("/{id}", s.updateBuildList)
			r.With(s.RequireUser).Delete("/{id}", s.deleteBuildList)
		})

		r.Route("/parts", func(r chi.Router) {
			r.With(s.RequireUser).Post("/", s.createPart)
			r.Get("/build-list/{build_list_id}", s.listParts)
			r.Get("/{id}", s.getPart)
			r.With(s.RequireUser).Put("/{id}", s.updatePart)
			r.With(s.RequireUser).Delete("/{id}", s.deletePart)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.log.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
