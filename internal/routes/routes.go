package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elibrary/backend/internal/auth"
	"github.com/elibrary/backend/internal/handlers"
	"github.com/elibrary/backend/internal/middleware"
	"github.com/elibrary/backend/internal/models"
	"github.com/elibrary/backend/internal/repositories"
)

// RegisterRoutes registers all application routes under /api, plus the
// /uploads static file tree for book covers.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	bookHandler *handlers.BookHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
	uploadDir string,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api", func(api chi.Router) {
		// Public routes - no authentication required
		api.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
		api.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)

		// The catalog is browsable without an account
		api.Get("/books", bookHandler.ListBooks)
		api.Get("/books/{id}", bookHandler.GetBook)

		// Protected routes - authentication required
		api.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokenManager, userRepo))

			// Any authenticated user
			r.Get("/books/download/{id}", bookHandler.DownloadBook)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))

				r.Get("/users", userHandler.ListUsers)
				r.Put("/users/{id}/status", userHandler.UpdateStatus)
				r.Get("/users/admin-requests", userHandler.ListAdminRequests)
				r.Put("/users/admin-requests/{id}/approve", userHandler.ApproveAdminRequest)
				r.Put("/users/admin-requests/{id}/reject", userHandler.RejectAdminRequest)

				r.Post("/books", bookHandler.CreateBook)
				r.Put("/books/{id}", bookHandler.UpdateBook)
				r.Delete("/books/{id}", bookHandler.DeleteBook)
			})
		})
	})

	// Cover images are public; PDFs are only reachable through the
	// authenticated download endpoint, so /uploads only exposes covers.
	fileServer := http.StripPrefix("/uploads/covers/",
		http.FileServer(http.Dir(uploadDir+"/covers")))
	router.Get("/uploads/covers/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})
}
