package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/burakmert236/clubscore/common/config"
	"github.com/burakmert236/clubscore/common/utils"
	"github.com/burakmert236/clubscore/services/live-service/app"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("../config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	utils.WaitForGracefulShutdown(application.Logger())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
