package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scoring:
  base_weight: 0.5
  content_weight: 0.3
  recency_weight: 0.2
  decay_window_days: 14
similarity:
  category: 5
  director: 6
limits:
  default_limit: 30
  interaction_window: 100
  cache_ttl_seconds: 120
cache:
  capacity: 50
  ttl_seconds: 60
  hit_threshold: 2
rules:
  - '"horror" in movie.categories'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	w := cfg.ScoreWeights()
	if w.Base != 0.5 || w.Content != 0.3 || w.Recency != 0.2 {
		t.Errorf("ScoreWeights = %+v", w)
	}
	dims := cfg.SimilarityWeights()
	if dims.Category != 5 || dims.Director != 6 {
		t.Errorf("SimilarityWeights = %+v", dims)
	}
	if cfg.DefaultLimit() != 30 {
		t.Errorf("DefaultLimit = %d, want 30", cfg.DefaultLimit())
	}
	if cfg.InteractionWindow() != 100 {
		t.Errorf("InteractionWindow = %d, want 100", cfg.InteractionWindow())
	}
	if cfg.DefaultCacheTTL() != 2*time.Minute {
		t.Errorf("DefaultCacheTTL = %v, want 2m", cfg.DefaultCacheTTL())
	}
	if len(cfg.Rules) != 1 {
		t.Errorf("Rules = %v", cfg.Rules)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := core.DefaultEngineLimits{}
	if cfg.DefaultLimit() != def.DefaultLimit() {
		t.Errorf("DefaultLimit = %d, want %d", cfg.DefaultLimit(), def.DefaultLimit())
	}
	if cfg.SimilarLimit() != def.SimilarLimit() {
		t.Errorf("SimilarLimit = %d, want %d", cfg.SimilarLimit(), def.SimilarLimit())
	}
	if cfg.DefaultCacheTTL() != def.DefaultCacheTTL() {
		t.Errorf("DefaultCacheTTL = %v, want %v", cfg.DefaultCacheTTL(), def.DefaultCacheTTL())
	}
	if cfg.ScoreWeights() != core.DefaultScoreWeights() {
		t.Errorf("ScoreWeights = %+v, want defaults", cfg.ScoreWeights())
	}
	if cfg.SimilarityWeights() != core.DefaultSimilarityWeights() {
		t.Errorf("SimilarityWeights = %+v, want defaults", cfg.SimilarityWeights())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/engine.yaml"); err == nil {
		t.Error("missing file should fail")
	}

	bad := writeConfig(t, "scoring: [not a mapping\n")
	if _, err := Load(bad); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestBuildEngine(t *testing.T) {
	path := writeConfig(t, `
limits:
  default_limit: 5
rules:
  - '"horror" in movie.categories'
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	kv := store.NewMemoryStore()
	defer kv.Close()
	catalog := store.NewCatalog(kv)

	e, err := cfg.BuildEngine(catalog, catalog, zerolog.Nop())
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if e.Limits.DefaultLimit() != 5 {
		t.Errorf("engine limit = %d, want 5", e.Limits.DefaultLimit())
	}
	if len(e.Filters) != 1 {
		t.Errorf("filters = %d, want 1", len(e.Filters))
	}
}

func TestBuildEngineBadRule(t *testing.T) {
	path := writeConfig(t, `
rules:
  - 'not valid CEL (('
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	kv := store.NewMemoryStore()
	defer kv.Close()
	catalog := store.NewCatalog(kv)

	if _, err := cfg.BuildEngine(catalog, catalog, zerolog.Nop()); err == nil {
		t.Error("invalid rule should fail engine build")
	}
}
