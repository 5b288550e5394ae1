package router

import (
	"auth-service/internal/handler"
	"auth-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	r chi.Router,
	h *handler.AuthHandler,
	auth *middleware.AuthMiddleware,
	corsOrigins []string,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		// ---------------- Public ----------------
		api.Group(func(pub chi.Router) {
			pub.Get("/auth/health", h.Health)
			pub.Post("/auth/send-code", h.SendCode)
			pub.Post("/auth/verify-code", h.VerifyCode)
			pub.Post("/auth/refresh", h.Refresh)
			pub.Post("/auth/logout", h.Logout)
		})

		// Temp token presented as bearer; the handler enforces its type.
		api.Post("/auth/complete-registration", h.CompleteRegistration)

		// ---------------- Authenticated ----------------
		api.Group(func(g chi.Router) {
			g.Use(auth.RequireAccess)
			g.Get("/auth/me", h.Me)
		})
	})

	return r
}
