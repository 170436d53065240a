package api

import (
	"net/http"
	"time"

	"metastor/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// requestTimeout bounds ordinary requests. Confirmation and upload routes
// are left to the poller budget and the body limit instead.
const requestTimeout = 30 * time.Second

func (s *Server) Routes(loginLimiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(AccessLog(s.log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization",
			"Cache-Control", "Pragma", "Expires",
		},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/health", s.HealthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(s.RateLimit(loginLimiter)).Post("/auth", s.LoginHandler)
		r.Get("/auth/nonce", s.NonceHandler)
		r.With(middleware.Timeout(requestTimeout)).Get("/proxy", s.ProxyHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Post("/upload", s.UploadFileHandler)
			r.Post("/subscription/confirm", s.ConfirmSubscriptionHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))

				r.Get("/me", s.MeHandler)
				r.Get("/events", s.GetEventsHandler)

				r.Get("/files", s.ListFilesHandler)
				r.Patch("/files/{id}", s.RenameFileHandler)
				r.Delete("/files/{id}", s.DeleteFileHandler)

				r.Get("/subscription", s.GetSubscriptionHandler)
				r.Get("/subscription/plans", s.GetPlansHandler)
				r.Post("/subscription/subscribe", s.SubscribeHandler)
				r.Get("/subscription/storage", s.StorageStatusHandler)
				r.Get("/subscription/history", s.PaymentHistoryHandler)
			})
		})
	})

	return r
}
