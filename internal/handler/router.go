package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bragawork/internal/service"
	"bragawork/internal/util"
)

// HealthChecker reports the state of every backing component. A nil error
// map value means healthy.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]error
}

// sessionCounter is implemented by registries that can report their size.
type sessionCounter interface {
	Count(ctx context.Context) (int, error)
}

type RouterConfig struct {
	Services    *service.ServiceFactory
	Health      HealthChecker
	StaticDir   string
	UploadDir   string
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = util.Get()
	}
	auth := cfg.Services.AuthService()

	authHandler := NewAuthHandler(auth, logger)
	quoteHandler := NewQuoteHandler(cfg.Services.QuoteService(), logger)
	projectHandler := NewProjectHandler(cfg.Services.ProjectService(), auth, logger)
	mediaHandler := NewMediaHandler(cfg.Services.MediaService(), logger)

	router := chi.NewRouter()

	// Middleware stack
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{resultStatusHeader},
		MaxAge:         300,
	}))

	router.Get("/health", healthHandler(cfg, logger))

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)
		quoteHandler.RegisterPublicRoutes(r)
		projectHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(auth, logger))
			authHandler.RegisterProtectedRoutes(r)
			quoteHandler.RegisterProtectedRoutes(r)
			projectHandler.RegisterProtectedRoutes(r)
			mediaHandler.RegisterProtectedRoutes(r)
		})

		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)
	})

	if cfg.UploadDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}
	if cfg.StaticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	router.NotFound(notFound)
	router.MethodNotAllowed(methodNotAllowed)

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"success":false,"message":"endpoint not found"}`))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"success":false,"message":"method not allowed"}`))
}

func healthHandler(cfg RouterConfig, logger *zap.Logger) http.HandlerFunc {
	h := responder{logger: logger}
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		components := map[string]string{}

		if cfg.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			for name, err := range cfg.Health.HealthCheck(ctx) {
				if err != nil {
					components[name] = err.Error()
					status = "unhealthy"
					code = http.StatusServiceUnavailable
					continue
				}
				components[name] = "ok"
			}
		}

		body := Response{
			"status":     status,
			"service":    "bragawork",
			"components": components,
		}
		if counter, ok := cfg.Services.Sessions().(sessionCounter); ok {
			n, err := counter.Count(r.Context())
			if err != nil {
				logger.Warn("Session count failed", util.ErrorField(err))
			} else {
				body["sessions"] = n
			}
		}
		if code != http.StatusOK {
			logger.Warn("Health check failed", util.Any("components", components))
		}
		h.respondWithJSON(w, code, body)
	}
}
