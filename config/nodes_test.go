package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/store"
)

func TestNodeFactoryBuildPipeline(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	catalog := store.NewCatalog(kv)
	ctx := context.Background()

	for _, m := range []*core.Movie{
		{ID: "m1", Categories: []string{"drama"}, Score: 9},
		{ID: "m2", Categories: []string{"horror"}, Score: 8},
		{ID: "m3", Categories: []string{"comedy"}, Score: 7},
	} {
		if err := catalog.PutMovie(ctx, m); err != nil {
			t.Fatalf("PutMovie: %v", err)
		}
	}

	yamlPath := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := `
pipeline:
  name: trending-safe
  nodes:
    - type: recall.trending
      config:
        limit: 10
    - type: filter.rule
      config:
        expr: '"horror" in movie.categories'
    - type: rerank.topn
      config:
        n: 2
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := pipeline.LoadFromYAML(yamlPath)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "trending-safe" {
		t.Errorf("name = %s", cfg.Pipeline.Name)
	}

	p, err := cfg.BuildPipeline(NewNodeFactory(catalog, zerolog.Nop()))
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	items, err := p.Run(ctx, &core.RecommendContext{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.ID == "m2" {
			t.Error("horror movie should be filtered out")
		}
	}
}

func TestNodeFactoryUnknownType(t *testing.T) {
	f := NewNodeFactory(nil, zerolog.Nop())
	if _, err := f.Build("recall.bogus", nil); err == nil {
		t.Error("unknown node type should fail")
	}
}

func TestNodeFactoryBadRule(t *testing.T) {
	f := NewNodeFactory(nil, zerolog.Nop())
	if _, err := f.Build("filter.rule", map[string]any{"expr": "((("}); err == nil {
		t.Error("invalid rule expression should fail")
	}
}
