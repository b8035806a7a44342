package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/telvanni/user-directory/internal/session"
	"github.com/telvanni/user-directory/internal/transport/middleware"
	"github.com/telvanni/user-directory/internal/transport/swagger"
	"github.com/telvanni/user-directory/internal/user"
)

// RegisterAllRoutes mounts the API. Session creation is the only endpoint
// outside the authentication gate besides the health probes.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cache CachePinger, sessionHandler *session.Handler, userHandler *user.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cache)

	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RequestID)
	// tolerate trailing slashes on every route
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/session", sessionHandler.Create)

		r.Group(func(pr chi.Router) {
			pr.Use(sessionHandler.Authenticate)

			pr.Get("/session", sessionHandler.Show)
			pr.Delete("/session", sessionHandler.Delete)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", userHandler.ListUsers)
				ur.Post("/", userHandler.CreateUser)
				ur.Get("/{user}", userHandler.GetUser)
				ur.Put("/{user}", userHandler.UpdateUser)
				ur.Delete("/{user}", userHandler.DeleteUser)
			})
		})
	})
}
