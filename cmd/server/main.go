package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/activity_notifier/internal/cache"
	"github.com/Dias221467/activity_notifier/internal/config"
	"github.com/Dias221467/activity_notifier/internal/database"
	"github.com/Dias221467/activity_notifier/internal/handlers"
	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/internal/repository"
	"github.com/Dias221467/activity_notifier/internal/scheduler"
	"github.com/Dias221467/activity_notifier/internal/services"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/Dias221467/activity_notifier/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file and environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(ctx)
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		logger.Log.Fatalf("Index creation error: %v", err)
	}
	cancelIndexes()

	var unread cache.UnreadCounter = cache.Nop{}
	if cfg.UseRedis() {
		client, err := cache.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, unread counts will not be cached")
		} else {
			defer client.Close()
			unread = cache.NewRedisUnreadCounter(client, cfg.RedisPrefix, 0)
		}
	}

	// --- Repositories ---
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	watcherRepo := repository.NewWatcherRepository(db)
	userRepo := repository.NewUserRepository(db)
	pageRepo := repository.NewPageRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// --- Services ---
	watcherService := services.NewWatcherService(watcherRepo)
	notificationService := services.NewNotificationService(notificationRepo, activityRepo, unread)

	targets := services.NewTargetRegistry()
	targets.Register(models.TargetModelPage, services.NewPageLoader(pageRepo, commentRepo))

	fanout := services.NewFanoutCoordinator(
		services.NewAudienceResolver(targets, watcherService, userRepo),
		services.NewSameActivityAggregator(activityRepo),
		notificationService,
		cfg.FanoutConcurrency,
	)
	activityService := services.NewActivityService(activityRepo, fanout)
	pageService := services.NewPageService(pageRepo, commentRepo, watcherRepo, activityService)

	// --- Scheduler ---
	cronJobs, err := scheduler.StartNotificationCronJobs(cfg.ReconcileSchedule, notificationService)
	if err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}

	// --- Handlers ---
	pageHandler := handlers.NewPageHandler(pageService, watcherService)
	activityHandler := handlers.NewActivityHandler(activityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Page routes produce activities, so the actor must be an active account
	pageRoutes := router.PathPrefix("/pages").Subrouter()
	pageRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	pageRoutes.Use(middleware.RequireActiveUserMiddleware(userRepo))
	pageRoutes.HandleFunc("", pageHandler.CreatePageHandler).Methods("POST")
	pageRoutes.HandleFunc("/{id}/comments", pageHandler.AddCommentHandler).Methods("POST")
	pageRoutes.HandleFunc("/{id}/like", pageHandler.LikeHandler).Methods("POST")
	pageRoutes.HandleFunc("/{id}/like", pageHandler.UnlikeHandler).Methods("DELETE")
	pageRoutes.HandleFunc("/{id}/watch", pageHandler.WatchHandler).Methods("PUT")
	pageRoutes.HandleFunc("/{id}", pageHandler.DeletePageHandler).Methods("DELETE")

	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.HandleFunc("/{id}/activities", activityHandler.GetUserActivitiesHandler).Methods("GET")

	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/unread-count", notificationHandler.UnreadCountHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	<-cronJobs.Stop().Done()

	// let in-flight notification fan-out finish before the database goes away
	fanout.Wait()
	logger.Log.Info("Server stopped")
}
