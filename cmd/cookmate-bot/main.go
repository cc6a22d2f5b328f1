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

	"cookmate/internal/app"
	"cookmate/internal/clipper"
	"cookmate/internal/config"
	"cookmate/internal/database"
	"cookmate/internal/llm"
	"cookmate/internal/metrics"
	"cookmate/internal/recipe"
	"cookmate/internal/state"
	appsync "cookmate/internal/sync"
	"cookmate/internal/telegram"
	"cookmate/internal/vision"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	textGen, chatGen, closeModel, err := newModelClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize model client: %v", err)
	}
	defer closeModel()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.SQL.Close()

	catalog, err := recipe.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load recipe catalog: %v", err)
	}

	fileStore, err := state.NewFileStore(cfg.StatePath)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	if n, err := recipeRepo.Count(ctx); err != nil {
		log.Printf("Failed to count imported recipes: %v", err)
	} else {
		log.Printf("Recipe library holds %d imported recipes", n)
	}
	history := state.NewHistoryRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	sessions := telegram.NewSessionRepository(db.SQL)
	recipeClipper := clipper.NewClipper(recipeRepo, textGen)

	var detector vision.Detector
	if cfg.VisionEndpoint != "" {
		detector = vision.NewHTTPDetector(cfg.VisionEndpoint, cfg.VisionAPIKey)
	}

	var syncClient appsync.Client
	if cfg.SyncURL != "" {
		syncClient = appsync.NewClient(cfg)
	}

	application := app.NewApp(
		cfg,
		catalog,
		recipeRepo,
		recipeClipper,
		chatGen,
		detector,
		fileStore,
		history,
		metricsStore,
		syncClient,
	)

	if err := application.LoadState(ctx); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}

	bot, err := telegram.NewBot(cfg, application, metricsStore, sessions)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := application.SaveState(context.Background()); err != nil {
		log.Printf("Failed to persist state on shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// newModelClient picks Gemini when a key is configured, Groq otherwise.
func newModelClient(ctx context.Context, cfg *config.Config) (llm.TextGenerator, llm.ChatGenerator, func(), error) {
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return client, client, func() { client.Close() }, nil
	}
	client := llm.NewGroqClient(cfg)
	return client, client, func() {}, nil
}
