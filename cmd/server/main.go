package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"masterboxer.com/project-newsfeed/auth"
	"masterboxer.com/project-newsfeed/config"
	"masterboxer.com/project-newsfeed/database"
	"masterboxer.com/project-newsfeed/handlers"
	"masterboxer.com/project-newsfeed/middleware"
	"masterboxer.com/project-newsfeed/routes"
	"masterboxer.com/project-newsfeed/services"
	"masterboxer.com/project-newsfeed/storage"
	"masterboxer.com/project-newsfeed/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config error: ", err)
	}

	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	attachments, err := storage.NewAttachmentStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("Attachment store init failed: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var notifier services.PostNotifier
	if cfg.FirebaseCredentialsPath != "" {
		fcm, err := services.NewFCMNotifier(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("[FCM][ERROR] Notifications disabled: %v", err)
		} else {
			notifier = fcm
		}
	}

	users := store.NewUserStore(db)
	directory := store.NewCachedDirectory(users, cfg.NameCacheSize, cfg.NameCacheTTL)
	posts := services.NewPostService(store.NewPostStore(db), directory, attachments, notifier)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	router := mux.NewRouter()
	router.Use(middleware.Metrics)
	routes.CreatePostRoutes(posts, issuer, handlers.UploadLimits{
		MaxBytes:  cfg.MaxUploadBytes,
		MaxMemory: cfg.MaxUploadMemory,
	}, router)
	routes.CreateUserRoutes(users, issuer, router)
	routes.CreateSystemRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Printf("Newsfeed server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
