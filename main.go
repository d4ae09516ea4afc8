package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mag8888/vital-sub000/controllers/admins"
	"github.com/mag8888/vital-sub000/controllers/users"
	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/middleware"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/partner"
	"github.com/mag8888/vital-sub000/routes"
	"github.com/mag8888/vital-sub000/telegram"
)

func main() {
	// Load .env if present without overwriting already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	requiredEnvVars := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "JWT_SECRET", "BOT_API_KEY"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto-migrate only in development to avoid accidental production schema changes
	if strings.ToLower(os.Getenv("ENV")) == "development" {
		log.Println("Running in development mode - performing auto-migration")
		if err := database.RunMigrations(db,
			&models.Admin{},
			&models.RefreshToken{},
			&models.RevokedToken{},
			&models.User{},
			&models.PartnerProfile{},
			&models.PartnerReferral{},
			&models.PartnerTransaction{},
			&models.PartnerActivation{},
			&models.Order{},
			&models.UserHistory{},
			&models.Product{},
			&models.Setting{},
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		log.Println("Auto-migration completed successfully")
	} else {
		log.Println("Running in production mode - skipping auto-migration")
	}

	notifier, err := telegram.NewNotifier()
	if err != nil {
		log.Fatalf("failed to initialize telegram bot: %v", err)
	}
	if notifier == nil {
		log.Println("[TELEGRAM] BOT_TOKEN not set, notifications disabled")
	}

	engine := partner.NewEngine(partner.NewDirectory(db), notifier)
	users.Setup(engine, notifier.BotUsername())
	admins.Setup(engine)

	router := routes.InitRouter()
	handler := middleware.MaxBodyMiddleware(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
