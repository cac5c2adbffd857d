package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"faithconnect/config"
	_ "faithconnect/docs"
	"faithconnect/internal/adapters/auth"
	"faithconnect/internal/adapters/sessionstore"
	httpdelivery "faithconnect/internal/delivery/http"
	"faithconnect/internal/delivery/http/controllers"
	"faithconnect/internal/delivery/http/middleware"
	mongorepo "faithconnect/internal/repository/mongo"
	"faithconnect/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title FaithConnect API
// @version 1.0
// @description Community events listing and administration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		logger.Error("failed to connect to mongodb", "err", err)
		os.Exit(1)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("mongodb unreachable", "url", cfg.MongoURL, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongodb disconnect failed", "err", err)
		}
	}()
	db := client.Database(cfg.MongoDB)

	sessions, err := sessionstore.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Error("failed to open session store", "path", cfg.SessionDBPath, "err", err)
		os.Exit(1)
	}
	defer sessions.Close()

	eventRepo := mongorepo.NewEventRepo(db)
	adminRepo := mongorepo.NewAdminRepo(db)

	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)
	authService := services.NewAuthService(adminRepo, auth.NewBcryptHasher(0), jwtCodec)
	eventService := services.NewEventService(eventRepo, serviceTimeout)
	adminSession := services.NewAdminController(authService, eventRepo, sessions, jwtCodec, logger)

	// Resume a persisted admin session, if one survives verification.
	if err := adminSession.Restore(ctx); err != nil {
		logger.Warn("session restore failed", "err", err)
	}

	eventController := controllers.NewEventController(logger, eventService)
	adminController := controllers.NewAdminController(logger, adminSession)

	mux := httpdelivery.NewRouter(eventController, adminController, jwtCodec)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
