package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/rsharma/storeapi/internal/auth"
	"github.com/rsharma/storeapi/internal/handlers"
	"github.com/rsharma/storeapi/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	tokenManager *auth.TokenManager,
	users auth.UserFetcher,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	rateLimited := middleware.RateLimitByIP(rateLimitConfig)

	router.Get("/health", healthHandler.Health)

	// Public routes - no authentication required
	router.With(rateLimited).Post("/api/user/register/", authHandler.Register)
	router.With(rateLimited).Post("/api/user/login/", authHandler.Login)
	router.With(rateLimited).Post("/api/send-reset-password-email/", authHandler.SendPasswordResetEmail)
	router.Post("/api/user/reset-password/{uid}/{token}/", authHandler.ConfirmPasswordReset)
	router.Post("/api/user/token/refresh/", authHandler.Refresh)
	router.Get("/complete/google/", authHandler.GoogleCallback)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(tokenManager, users))

		r.Get("/api/user/profile/", authHandler.Profile)
		r.Post("/api/user/changepassword/", authHandler.ChangePassword)
		r.Post("/api/user/logout/", authHandler.Logout)

		r.Get("/api/products/", productHandler.List)
		r.Get("/api/products/{id}/", productHandler.Get)

		// Admin-only catalog writes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/api/products/", productHandler.Create)
			r.Put("/api/products/{id}/", productHandler.Update)
			r.Patch("/api/products/{id}/", productHandler.PartialUpdate)
			r.Delete("/api/products/{id}/", productHandler.Delete)
		})
	})
}
