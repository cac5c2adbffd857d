package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"faithconnect/internal/delivery/http/controllers"
	"faithconnect/internal/delivery/http/middleware"
	"faithconnect/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, adminController *controllers.AdminController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	authRequired := middleware.RequireAuth(verifier)

	// Public browse
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/upcoming", eventController.UpcomingEvents)
	mux.HandleFunc("POST /events/poster-failures", eventController.ReportPosterFailure)

	// Auth
	mux.HandleFunc("POST /auth/login", adminController.Login)
	mux.HandleFunc("POST /auth/logout", authRequired(adminController.Logout))
	mux.HandleFunc("GET /auth/session", authRequired(adminController.GetSession))

	// Admin management
	mux.HandleFunc("GET /admin/events", authRequired(adminController.AdminEvents))
	mux.HandleFunc("POST /events", authRequired(adminController.CreateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", authRequired(adminController.DeleteEvent))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
