package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cookmate/internal/app"
	"cookmate/internal/clipper"
	"cookmate/internal/config"
	"cookmate/internal/database"
	"cookmate/internal/llm"
	"cookmate/internal/metrics"
	"cookmate/internal/recipe"
	"cookmate/internal/state"
	appsync "cookmate/internal/sync"
	"cookmate/internal/vision"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.SQL.Close()

	// The cleanup commands need no model client, handle them before
	// wiring one.
	switch os.Args[1] {
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return
	case "history-cleanup":
		cleanupCmd := flag.NewFlagSet("history-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep snapshots for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		pruned, err := state.NewHistoryRepository(db.SQL).Prune(ctx, *days)
		if err != nil {
			log.Fatalf("History cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old snapshots.\n", pruned)
		return
	}

	application, cleanup, err := buildApp(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer cleanup()

	if err := application.LoadState(ctx); err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}

	switch os.Args[1] {
	case "suggest":
		suggestCmd := flag.NewFlagSet("suggest", flag.ExitOnError)
		count := suggestCmd.Int("n", 3, "Number of suggestions")
		suggestCmd.Parse(os.Args[2:])
		runSuggest(ctx, application, *count)
	case "restock":
		runRestock(ctx, application)
	case "import":
		importCmd := flag.NewFlagSet("import", flag.ExitOnError)
		importCmd.Parse(os.Args[2:])
		if importCmd.NArg() != 1 {
			log.Fatal("import requires exactly one URL argument")
		}
		runImport(ctx, application, importCmd.Arg(0))
	case "undo":
		runUndo(ctx, application)
	case "backup":
		if err := application.Backup(ctx); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		fmt.Println("Snapshot pushed to the sync endpoint.")
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func buildApp(ctx context.Context, cfg *config.Config, db *database.DB) (*app.App, func(), error) {
	textGen, chatGen, closeModel, err := newModelClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := recipe.LoadCatalog()
	if err != nil {
		closeModel()
		return nil, nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	fileStore, err := state.NewFileStore(cfg.StatePath)
	if err != nil {
		closeModel()
		return nil, nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	history := state.NewHistoryRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
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
	return application, closeModel, nil
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

func runSuggest(ctx context.Context, application *app.App, count int) {
	suggestions, err := application.Suggestions(ctx, count)
	if err != nil {
		log.Fatalf("Failed to rank recipes: %v", err)
	}
	if len(suggestions) == 0 {
		fmt.Println("Nothing cookable with the current pantry.")
		return
	}
	for i, rec := range suggestions {
		fmt.Printf("%d. %s (%d min)\n", i+1, rec.Title, rec.TimeMin)
		fmt.Printf("   Needs: %s\n", strings.Join(rec.Needs, ", "))
		for _, reason := range application.WhyThis(rec) {
			fmt.Printf("   %s\n", reason)
		}
	}
}

func runRestock(ctx context.Context, application *app.App) {
	outcome, err := application.RunRestock(ctx)
	if err != nil {
		log.Fatalf("Restock pass failed: %v", err)
	}
	fmt.Printf("Decayed %d items.\n", outcome.DecayedItems)
	if len(outcome.QueuedItems) == 0 {
		fmt.Println("Nothing below the restock threshold.")
		return
	}
	fmt.Printf("Queued for shopping: %s\n", strings.Join(outcome.QueuedItems, ", "))
}

func runImport(ctx context.Context, application *app.App, url string) {
	rec, err := application.ImportRecipe(ctx, url)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Saved %q (%d min, tags: %s).\n", rec.Title, rec.TimeMin, strings.Join(rec.Tags, ", "))
}

func runUndo(ctx context.Context, application *app.App) {
	undone, err := application.UndoLastUsage(ctx)
	if err != nil {
		log.Fatalf("Undo failed: %v", err)
	}
	if !undone {
		fmt.Println("Nothing to undo.")
		return
	}
	fmt.Println("Last pantry usage restored.")
}

func printUsage() {
	fmt.Println("Usage: cookmate <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  suggest            Rank recipes against the current pantry")
	fmt.Println("  restock            Decay pantry confidence and queue low items")
	fmt.Println("  import <url>       Clip a recipe from a web page")
	fmt.Println("  undo               Revert the last pantry usage")
	fmt.Println("  backup             Push the state snapshot to the sync endpoint")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  history-cleanup    Remove old snapshot history rows")
}
