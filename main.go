package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"trameserve/config"
	"trameserve/config/database"
	"trameserve/internal/document/repository"
	"trameserve/pkg/logger"
	"trameserve/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}

	db := database.Connect()
	defer db.Close()

	if err := repository.NewDocumentRepository(db).EnsureSchema(context.Background()); err != nil {
		logger.Sugar.Fatalf("Failed to ensure schema: %v", err)
	}

	handler, err := router.Setup(cfg, db)
	if err != nil {
		logger.Sugar.Fatalf("Failed to set up routes: %v", err)
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	logger.Sugar.Infof("Backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
