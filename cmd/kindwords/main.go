package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperbark/kindwords/internal/backup"
	"github.com/paperbark/kindwords/internal/database"
	"github.com/paperbark/kindwords/internal/logging"
	"github.com/paperbark/kindwords/internal/server"
	"github.com/paperbark/kindwords/internal/session"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(os.Getenv("KINDWORDS_LOG_LEVEL"))

	port := envOr("KINDWORDS_PORT", "8080")
	dbPath := envOr("KINDWORDS_DB_PATH", "kindwords.db")
	environment := envOr("KINDWORDS_ENV", "development")

	secret := os.Getenv("KINDWORDS_JWT_SECRET")
	if secret == "" {
		log.Fatal("KINDWORDS_JWT_SECRET is required")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Secure cookies everywhere except local development.
	sessions := session.NewManager([]byte(secret), environment != "development")

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("KINDWORDS_BACKUP_S3_ENDPOINT"),
			Bucket:    os.Getenv("KINDWORDS_BACKUP_S3_BUCKET"),
			Region:    envOr("KINDWORDS_BACKUP_S3_REGION", "auto"),
			AccessKey: os.Getenv("KINDWORDS_BACKUP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("KINDWORDS_BACKUP_S3_SECRET_KEY"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("KINDWORDS_BACKUP_PASSPHRASE"),
		Token:      os.Getenv("KINDWORDS_BACKUP_TOKEN"),
	}, db, logger.With("component", "backup"))

	srv := server.New(db, sessions, backupMgr, server.Config{
		CORSOrigin: envOr("KINDWORDS_CORS_ORIGIN", "http://localhost:3000"),
	}, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Sweep expired rate-limit windows so the counter map stays small.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	go func() {
		fmt.Printf("kindwords running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
