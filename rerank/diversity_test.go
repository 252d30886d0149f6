package rerank

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/rushteam/cinekit/core"
)

func item(id string, cats ...string) *core.Item {
	return core.NewItem(&core.Movie{ID: id, Categories: cats})
}

func TestDiversityNoDuplicatesAndLimit(t *testing.T) {
	var items []*core.Item
	for i := 0; i < 30; i++ {
		items = append(items, item(fmt.Sprintf("m%d", i), "drama"))
	}

	n := &Diversity{N: 10, Rand: rand.New(rand.NewSource(1))}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("len(out) = %d, want 10", len(out))
	}
	seen := make(map[string]bool)
	for _, it := range out {
		if seen[it.ID] {
			t.Errorf("duplicate item %s", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestDiversitySpreadsCategories(t *testing.T) {
	// 20 部 drama + 各 1 部 scifi/comedy：轮转应保证小类目进入首轮
	var items []*core.Item
	for i := 0; i < 20; i++ {
		items = append(items, item(fmt.Sprintf("d%d", i), "drama"))
	}
	items = append(items, item("s1", "scifi"), item("c1", "comedy"))

	n := &Diversity{N: 6, Rand: rand.New(rand.NewSource(42))}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := make(map[string]bool)
	for _, it := range out {
		got[it.ID] = true
	}
	if !got["s1"] || !got["c1"] {
		t.Errorf("minority categories should survive diversification, got %v", got)
	}
}

func TestDiversityMultiCategoryEmittedOnce(t *testing.T) {
	items := []*core.Item{
		item("multi", "drama", "scifi", "comedy"),
		item("a", "drama"),
		item("b", "scifi"),
	}

	n := &Diversity{N: 10, Rand: rand.New(rand.NewSource(7))}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	count := 0
	for _, it := range out {
		if it.ID == "multi" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("multi-category item emitted %d times, want 1", count)
	}
	if len(out) != 3 {
		t.Errorf("len(out) = %d, want 3", len(out))
	}
}

func TestDiversityUncategorizedGoesToOtherBucket(t *testing.T) {
	items := []*core.Item{
		item("bare"),
		item("d1", "drama"),
	}

	n := &Diversity{N: 2, Rand: rand.New(rand.NewSource(3))}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestDiversityLimitFromContext(t *testing.T) {
	var items []*core.Item
	for i := 0; i < 10; i++ {
		items = append(items, item(fmt.Sprintf("m%d", i), "drama"))
	}

	n := &Diversity{Rand: rand.New(rand.NewSource(5))}
	rctx := &core.RecommendContext{Limit: 4}
	out, err := n.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 4 {
		t.Errorf("len(out) = %d, want 4 (from context limit)", len(out))
	}
}

func TestDiversityFewerItemsThanLimit(t *testing.T) {
	items := []*core.Item{item("a", "drama"), item("b", "scifi")}

	n := &Diversity{N: 10, Rand: rand.New(rand.NewSource(9))}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d, want 2 (all items, no padding)", len(out))
	}
}

func TestTopNNode(t *testing.T) {
	items := []*core.Item{item("a", "x"), item("b", "x"), item("c", "x")}

	n := &TopNNode{N: 2}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("TopN(2) = %v, want [a b]", out)
	}

	// N <= 0 不截断
	n = &TopNNode{}
	out, _ = n.Process(context.Background(), nil, items)
	if len(out) != 3 {
		t.Errorf("TopN(0) should keep all items, got %d", len(out))
	}
}
