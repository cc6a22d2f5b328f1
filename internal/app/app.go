// Package app wires the stores, the recommendation engines, and the chat
// agent together. Every mutation flows through here so the snapshot on
// disk always reflects what the user last saw.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cookmate/internal/chattools"
	"cookmate/internal/clipper"
	"cookmate/internal/config"
	"cookmate/internal/learning"
	"cookmate/internal/llm"
	"cookmate/internal/metrics"
	"cookmate/internal/pantry"
	"cookmate/internal/recipe"
	"cookmate/internal/restock"
	"cookmate/internal/shared"
	"cookmate/internal/shopping"
	"cookmate/internal/state"
	"cookmate/internal/suggest"
	appsync "cookmate/internal/sync"
	"cookmate/internal/vision"
)

// App holds the application's dependencies and owns all mutable state.
// Nothing outside this struct writes to the stores directly. Hosts may
// call it from multiple goroutines; mu is the single mutual-exclusion
// boundary for all of them.
type App struct {
	mu sync.Mutex

	cfg           *config.Config
	catalog       []recipe.Recipe
	recipeRepo    *recipe.Repository
	recipeClipper *clipper.Clipper
	chatGen       llm.ChatGenerator
	detector      vision.Detector
	fileStore     *state.FileStore
	history       *state.HistoryRepository
	metricsStore  *metrics.Store
	syncClient    appsync.Client

	pantryStore *pantry.Store
	cart        *shopping.Engine
	executor    *chattools.Executor
	restocker   *restock.Engine

	prefs   suggest.Preferences
	signals []learning.Signal
	learned learning.State

	now func() time.Time
}

// NewApp creates and initializes a new App instance. The detector and
// sync client may be nil when the corresponding features are not
// configured.
func NewApp(
	cfg *config.Config,
	catalog []recipe.Recipe,
	recipeRepo *recipe.Repository,
	recipeClipper *clipper.Clipper,
	chatGen llm.ChatGenerator,
	detector vision.Detector,
	fileStore *state.FileStore,
	history *state.HistoryRepository,
	metricsStore *metrics.Store,
	syncClient appsync.Client,
) *App {
	pantryStore := pantry.NewStore()
	cart := shopping.NewEngine()

	return &App{
		cfg:           cfg,
		catalog:       catalog,
		recipeRepo:    recipeRepo,
		recipeClipper: recipeClipper,
		chatGen:       chatGen,
		detector:      detector,
		fileStore:     fileStore,
		history:       history,
		metricsStore:  metricsStore,
		syncClient:    syncClient,
		pantryStore:   pantryStore,
		cart:          cart,
		executor:      chattools.NewExecutor(pantryStore, cart),
		restocker:     restock.NewEngine(pantryStore, cart),
		learned:       learning.NewState(time.Now().UTC()),
		now:           time.Now,
	}
}

// LoadState rehydrates the stores from the snapshot on disk. When no
// local snapshot exists, the sqlite history is tried first, then the
// remote backup if a sync client is configured.
func (a *App) LoadState(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := a.fileStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if snap.SavedAt.IsZero() && a.history != nil {
		fromHistory, ok, err := a.history.Latest(ctx)
		if err != nil {
			log.Printf("snapshot history lookup failed: %v", err)
		} else if ok {
			log.Println("Restored state from snapshot history.")
			snap = fromHistory
		}
	}

	if snap.SavedAt.IsZero() && a.syncClient != nil {
		remote, ok, err := a.syncClient.Pull(ctx)
		if err != nil {
			log.Printf("remote snapshot pull failed: %v", err)
		} else if ok {
			log.Println("Restored state from remote backup.")
			snap = remote
		}
	}

	a.restore(snap)
	return nil
}

func (a *App) restore(snap state.Snapshot) {
	a.prefs = snap.Preferences
	a.signals = snap.Signals
	a.learned = snap.Learning
	if a.learned.TagWeights == nil {
		a.learned = learning.NewState(a.now().UTC())
	}
	a.pantryStore.Restore(snap.PantryItems, snap.PantryDecayAnchor)
	a.cart.Restore(snap.ShoppingItems)
}

// SaveState writes the current snapshot to disk and appends it to the
// sqlite history.
func (a *App) SaveState(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveState(ctx)
}

// saveState is SaveState without the lock, for callers already inside
// the critical section.
func (a *App) saveState(ctx context.Context) error {
	snap := a.snapshot()
	if err := a.fileStore.Save(snap); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	if a.history != nil {
		if err := a.history.Append(ctx, snap); err != nil {
			log.Printf("failed to append snapshot history: %v", err)
		}
	}
	return nil
}

func (a *App) snapshot() state.Snapshot {
	return state.Snapshot{
		Preferences:       a.prefs,
		PantryItems:       a.pantryStore.Items(),
		PantryDecayAnchor: a.pantryStore.DecayAnchor(),
		ShoppingItems:     a.cart.Items(),
		Signals:           a.signals,
		Learning:          a.learned,
		SavedAt:           a.now().UTC(),
	}
}

// Backup pushes the current snapshot to the remote backup endpoint.
func (a *App) Backup(ctx context.Context) error {
	if a.syncClient == nil {
		return fmt.Errorf("remote backup is not configured")
	}
	a.mu.Lock()
	snap := a.snapshot()
	a.mu.Unlock()
	return a.syncClient.Push(ctx, snap)
}

// Preferences returns the current dietary preferences.
func (a *App) Preferences() suggest.Preferences {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs
}

// SetPreferences replaces the dietary preferences and persists the
// change.
func (a *App) SetPreferences(ctx context.Context, prefs suggest.Preferences) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prefs = prefs
	return a.saveState(ctx)
}

// PantryItems exposes the live pantry contents.
func (a *App) PantryItems() []pantry.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pantryStore.Items()
}

// ShoppingItems exposes the live shopping list.
func (a *App) ShoppingItems() []shopping.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Items()
}

// CommitPhoto runs ingredient detection over the captured images and
// merges the detections into the pantry.
func (a *App) CommitPhoto(ctx context.Context, images [][]byte) ([]pantry.Item, error) {
	if a.detector == nil {
		return nil, fmt.Errorf("photo detection is not configured")
	}

	detections, err := a.detector.Detect(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.pantryStore.CommitDetections(detections)
	if err := a.saveState(ctx); err != nil {
		return items, err
	}
	return items, nil
}

// AddPantryItem adds or merges a manual pantry entry.
func (a *App) AddPantryItem(ctx context.Context, item pantry.Item) (pantry.Item, error) {
	item.Source = "manual"
	if item.Confidence == 0 {
		item.Confidence = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	saved := a.pantryStore.Add(item)
	return saved, a.saveState(ctx)
}

// Suggestions recomputes the learned weights and ranks the recipe pool
// against the active pantry contents.
func (a *App) Suggestions(ctx context.Context, count int) ([]recipe.Recipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.learned = learning.Recompute(a.signals, &a.learned, a.now().UTC())

	pool, err := a.recipePool(ctx)
	if err != nil {
		return nil, err
	}
	return suggest.GetSuggestions(pool, a.prefs, a.pantryStore.ActiveItems(), count, a.learned), nil
}

// WhyThis explains which learned preferences favored a recipe.
func (a *App) WhyThis(rec recipe.Recipe) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return learning.WhyThisReasons(rec.Tags, a.learned)
}

// RecordSignal appends an interaction signal for a recipe and folds it
// into the learned weights.
func (a *App) RecordSignal(ctx context.Context, sigType learning.SignalType, recipeID string) error {
	rec, err := a.findRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.signals = learning.Record(learning.Signal{
		Timestamp: a.now().UTC(),
		Type:      sigType,
		RecipeID:  rec.ID,
		Tags:      rec.Tags,
		Needs:     rec.Needs,
	}, a.signals)
	a.learned = learning.Recompute(a.signals, &a.learned, a.now().UTC())
	return a.saveState(ctx)
}

// AcceptRecipe records the acceptance, consumes the matched pantry
// ingredients, and queues the missing ones on the shopping list.
func (a *App) AcceptRecipe(ctx context.Context, recipeID string) (int, error) {
	rec, err := a.findRecipe(ctx, recipeID)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.signals = learning.Record(learning.Signal{
		Timestamp: a.now().UTC(),
		Type:      learning.SignalAccepted,
		RecipeID:  rec.ID,
		Tags:      rec.Tags,
		Needs:     rec.Needs,
	}, a.signals)
	a.learned = learning.Recompute(a.signals, &a.learned, a.now().UTC())

	// Missing needs are judged against the pantry before consumption,
	// so ingredients the recipe just used up are not re-queued.
	active := a.pantryStore.ActiveItems()

	matched := a.pantryStore.ApplyRecipeUsage(rec.ID, rec.Title, rec.Needs)

	for _, need := range rec.Needs {
		if pantryHolds(active, need) {
			continue
		}
		a.cart.Add(shopping.AddRequest{Name: need, Reason: shopping.ReasonMissingFromRecipe})
	}

	return matched, a.saveState(ctx)
}

// UndoLastUsage reverts the pantry consumption and confidence drops from
// the most recent accepted recipe.
func (a *App) UndoLastUsage(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ok := a.pantryStore.UndoLastUsage()
	if !ok {
		return false, nil
	}
	return true, a.saveState(ctx)
}

// RunRestock runs the confidence decay pass and queues low-stock items.
func (a *App) RunRestock(ctx context.Context) (restock.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	outcome := a.restocker.Run(a.now().UTC())
	return outcome, a.saveState(ctx)
}

// ImportRecipe clips a recipe from a URL into the local repository. The
// clipper writes through sqlite, not the in-memory stores, so no lock is
// held across the network fetch.
func (a *App) ImportRecipe(ctx context.Context, url string) (recipe.Recipe, error) {
	rec, meta, err := a.recipeClipper.ClipURL(ctx, url)
	a.recordMeta(meta)
	if err != nil {
		return recipe.Recipe{}, err
	}
	return rec, nil
}

func (a *App) recipePool(ctx context.Context) ([]recipe.Recipe, error) {
	pool := append([]recipe.Recipe(nil), a.catalog...)
	if a.recipeRepo != nil {
		imported, err := a.recipeRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load imported recipes: %w", err)
		}
		pool = append(pool, imported...)
	}
	return pool, nil
}

func (a *App) findRecipe(ctx context.Context, recipeID string) (recipe.Recipe, error) {
	for _, rec := range a.catalog {
		if rec.ID == recipeID {
			return rec, nil
		}
	}
	if a.recipeRepo != nil {
		rec, err := a.recipeRepo.Get(ctx, recipeID)
		if err != nil {
			return recipe.Recipe{}, err
		}
		if rec != nil {
			return *rec, nil
		}
	}
	return recipe.Recipe{}, fmt.Errorf("recipe %s not found", recipeID)
}

func (a *App) recordMeta(meta shared.AgentMeta) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

func pantryHolds(items []pantry.Item, need string) bool {
	for _, item := range items {
		if recipe.NamesOverlap(item.Name, need) {
			return true
		}
	}
	return false
}

// contextSummary condenses the current state into the system framing for
// the chat agent.
func (a *App) contextSummary() string {
	var sb strings.Builder
	sb.WriteString("You are CookMate, a kitchen assistant. Keep replies short. ")
	sb.WriteString("Use the tools to read or change the pantry and shopping list; never guess their contents.\n")

	active := a.pantryStore.ActiveItems()
	names := make([]string, 0, len(active))
	for _, item := range active {
		names = append(names, item.Name)
		if len(names) == 15 {
			names = append(names, "...")
			break
		}
	}
	fmt.Fprintf(&sb, "Pantry: %d items (%s).\n", len(active), strings.Join(names, ", "))
	fmt.Fprintf(&sb, "Shopping list: %d open items.\n", len(a.cart.UnboughtItems()))

	if likes := learning.SummarizeLikes(a.learned); len(likes) > 0 {
		fmt.Fprintf(&sb, "The user tends to like: %s.\n", strings.Join(likes, ", "))
	}
	if a.prefs.Diet != "" && a.prefs.Diet != suggest.DietRegular {
		fmt.Fprintf(&sb, "Diet: %s.\n", a.prefs.Diet)
	}
	if len(a.prefs.Allergies) > 0 {
		fmt.Fprintf(&sb, "Allergies: %s.\n", strings.Join(a.prefs.Allergies, ", "))
	}
	return sb.String()
}
