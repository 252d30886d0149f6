package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/cinekit/core"
)

func TestMemoryStoreBasic(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) err = %v, want not found", err)
	}

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %s, %v", got, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after delete err = %v, want not found", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after expiry err = %v, want not found", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	ctx := context.Background()

	err := m.BatchSet(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	})
	if err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	got, err := m.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Error("missing key should be absent, not empty")
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	ctx := context.Background()

	for member, score := range map[string]float64{"a": 1, "b": 3, "c": 2} {
		if err := m.ZAdd(ctx, "z", score, member); err != nil {
			t.Fatalf("ZAdd: %v", err)
		}
	}

	// 降序
	got, err := m.ZRange(ctx, "z", 0, -1)
	if err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// 分页
	got, _ = m.ZRange(ctx, "z", 1, 1)
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("ZRange(1,1) = %v, want [c]", got)
	}

	// 覆盖分数
	m.ZAdd(ctx, "z", 10, "a")
	got, _ = m.ZRange(ctx, "z", 0, 0)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("after rescore ZRange(0,0) = %v, want [a]", got)
	}

	score, err := m.ZScore(ctx, "z", "a")
	if err != nil || score != 10 {
		t.Errorf("ZScore = %v, %v", score, err)
	}
	if _, err := m.ZScore(ctx, "z", "ghost"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(ghost) err = %v, want not found", err)
	}

	// 同分按 member 排序保证稳定
	m.ZAdd(ctx, "ties", 1, "y")
	m.ZAdd(ctx, "ties", 1, "x")
	got, _ = m.ZRange(ctx, "ties", 0, -1)
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("tie order = %v, want [x y]", got)
	}
}

func TestMemoryStoreHash(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()
	ctx := context.Background()

	if err := m.HSet(ctx, "h", "f1", []byte("v1")); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	m.HSet(ctx, "h", "f2", []byte("v2"))

	got, err := m.HGet(ctx, "h", "f1")
	if err != nil || string(got) != "v1" {
		t.Errorf("HGet = %s, %v", got, err)
	}

	all, err := m.HGetAll(ctx, "h")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if len(all) != 2 || string(all["f1"]) != "v1" || string(all["f2"]) != "v2" {
		t.Errorf("HGetAll = %v", all)
	}
}
