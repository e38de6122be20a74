package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/handler"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/middleware"
	"github.com/FreakyLetsFail/uni-swipe/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/FreakyLetsFail/uni-swipe/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Health         *handler.HealthHandler
	Auth           *handler.AuthHandler
	Catalog        *handler.CatalogHandler
	Profile        *handler.ProfileHandler
	Favorite       *handler.FavoriteHandler
	Recommendation *handler.RecommendationHandler
	Match          *handler.MatchHandler
	Debug          *handler.DebugHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
	// images is set when university images are stored on local disk
	images *storage.LocalStorage
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
	images *storage.LocalStorage,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
		images:         images,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness, database and readiness probes
	r.Get("/health", h.Health.Health)
	r.Get("/health/db", h.Health.Database)
	r.Get("/health/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	if rt.images != nil {
		prefix := "/" + strings.Trim(rt.images.PublicBaseURL(), "/")
		if prefix != "/" && !strings.Contains(prefix, "://") {
			r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(rt.images.BasePath()))))
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/subjects", h.Catalog.ListSubjects)
		r.Get("/universities", h.Catalog.ListUniversities)
		r.Get("/universities/{id}", h.Catalog.GetUniversity)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)
		r.Post("/auth/password-reset", h.Auth.PasswordReset)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)

			r.Get("/profile", h.Profile.Get)
			r.Put("/profile", h.Profile.Update)

			r.Get("/favorites", h.Favorite.List)
			r.Post("/favorites/{subjectId}/toggle", h.Favorite.Toggle)

			r.Get("/recommendations", h.Recommendation.List)

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", h.Match.List)
				r.Post("/", h.Match.Create)
				r.Delete("/{id}", h.Match.Delete)
			})

			r.Get("/debug", h.Debug.Run)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAPIKey)
			r.Post("/admin/universities/{id}/image", h.Catalog.UploadImage)
		})
	})

	if dir := rt.cfg.Server.StaticDir; dir != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RouteGuard(rt.authMiddleware))
			r.Handle("/*", frontend(dir))
		})
	}

	return r
}

// frontend serves a built single page app: existing files as-is, "/x" as
// "/x.html" when exported that way, and index.html for everything else
func frontend(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		if clean != "/" {
			if info, err := os.Stat(filepath.Join(dir, clean)); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
			if _, err := os.Stat(filepath.Join(dir, clean+".html")); err == nil {
				r2 := r.Clone(r.Context())
				r2.URL.Path = clean + ".html"
				files.ServeHTTP(w, r2)
				return
			}
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
