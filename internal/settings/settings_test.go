package settings

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A second pool connection would see its own empty in-memory db.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Setting{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewStore(db)
}

func TestLoad_UnseededFallsBackToDefaults(t *testing.T) {
	store := openTestStore(t)

	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("unseeded provider should read openai, got %q", cfg.Provider)
	}
	if cfg.OpenAIModel != "gpt-4" || cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected model defaults: %q / %q", cfg.OpenAIModel, cfg.GeminiModel)
	}
	if cfg.OpenAIKey != "" || cfg.GeminiKey != "" {
		t.Fatal("keys must default to empty")
	}
}

func TestEnsureDefaults_SeedsOnceAndKeepsEdits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}

	cfg, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Fresh installs start on gemini.
	if cfg.Provider != "gemini" {
		t.Fatalf("seeded provider should be gemini, got %q", cfg.Provider)
	}
	if cfg.WidgetKey == "" {
		t.Fatal("seeding must mint a widget key")
	}

	cfg.Provider = "openai"
	cfg.Instruction = "You work for Mario's Pizza."
	if err := store.Save(ctx, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Re-running the seed must not clobber admin edits.
	if err := store.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults again: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Provider != "openai" || got.Instruction != "You work for Mario's Pizza." {
		t.Fatalf("seed overwrote edits: %+v", got)
	}
	if got.WidgetKey != cfg.WidgetKey {
		t.Fatal("seed replaced the widget key")
	}
}

func TestSave_DoesNotTouchWidgetKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	before, _ := store.Load(ctx)

	cfg := before
	cfg.WidgetKey = "attacker-chosen"
	if err := store.Save(ctx, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	after, _ := store.Load(ctx)
	if after.WidgetKey != before.WidgetKey {
		t.Fatalf("Save must not change the widget key: %q -> %q", before.WidgetKey, after.WidgetKey)
	}
}

func TestRegenerateWidgetKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.EnsureDefaults(ctx); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	before, _ := store.Load(ctx)

	key, err := store.RegenerateWidgetKey(ctx)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if key == "" || key == before.WidgetKey {
		t.Fatalf("expected a fresh key, got %q", key)
	}

	after, _ := store.Load(ctx)
	if after.WidgetKey != key {
		t.Fatalf("stored key %q does not match returned %q", after.WidgetKey, key)
	}
}

func TestSave_CleansGeminiKeyLabels(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	cfg, _ := store.Load(ctx)
	cfg.GeminiKey = "  API Key AIzaSyExample123  "
	cfg.OpenAIKey = " sk-test "
	if err := store.Save(ctx, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.GeminiKey != "AIzaSyExample123" {
		t.Fatalf("label not stripped: %q", got.GeminiKey)
	}
	if got.OpenAIKey != "sk-test" {
		t.Fatalf("openai key not trimmed: %q", got.OpenAIKey)
	}
}

func TestChat_ActiveKeyAndModel(t *testing.T) {
	c := Chat{
		Provider:    "gemini",
		OpenAIKey:   "sk",
		OpenAIModel: "gpt-4o",
		GeminiKey:   "gk",
		GeminiModel: "gemini-2.0-flash",
	}
	if c.ActiveKey() != "gk" || c.ActiveModel() != "gemini-2.0-flash" {
		t.Fatalf("gemini selection broken: %q / %q", c.ActiveKey(), c.ActiveModel())
	}

	c.Provider = "openai"
	if c.ActiveKey() != "sk" || c.ActiveModel() != "gpt-4o" {
		t.Fatalf("openai selection broken: %q / %q", c.ActiveKey(), c.ActiveModel())
	}
}
