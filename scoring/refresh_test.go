package scoring

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
)

type recordingStore struct {
	got map[string]float64
	err error
}

func (s *recordingStore) FindByID(ctx context.Context, id string) (*core.Movie, error) {
	return nil, core.ErrStoreNotFound
}

func (s *recordingStore) FindMatchingAny(ctx context.Context, f core.AttributeFilter, ex []string, limit int) ([]*core.Movie, error) {
	return nil, nil
}

func (s *recordingStore) FindTopByPopularity(ctx context.Context, ex []string, limit int) ([]*core.Movie, error) {
	return nil, nil
}

func (s *recordingStore) FindHighRatedExcluding(ctx context.Context, exIDs, exCats []string, minScore float64, limit int) ([]*core.Movie, error) {
	return nil, nil
}

func (s *recordingStore) BulkUpdateScores(ctx context.Context, scores map[string]float64) error {
	if s.err != nil {
		return s.err
	}
	s.got = scores
	return nil
}

func TestScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		movie *core.Movie
		want  float64
	}{
		{
			name: "brand new with stats",
			movie: &core.Movie{
				Stats:     core.MovieStats{Plays: 100, Likes: 50},
				CreatedAt: now,
			},
			want: 100*0.3 + 50*0.6 + 10,
		},
		{
			name: "half newness window",
			movie: &core.Movie{
				Stats:     core.MovieStats{Plays: 10},
				CreatedAt: now.Add(-84 * time.Hour),
			},
			want: 10*0.3 + 0.5*10,
		},
		{
			name: "older than a week",
			movie: &core.Movie{
				Stats:     core.MovieStats{Plays: 10, Likes: 10},
				CreatedAt: now.AddDate(0, -1, 0),
			},
			want: 10*0.3 + 10*0.6,
		},
		{
			name:  "unknown creation time",
			movie: &core.Movie{Stats: core.MovieStats{Plays: 10}},
			want:  10 * 0.3,
		},
		{
			name:  "nil movie",
			movie: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.movie, now)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefresherRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &recordingStore{}

	r := &Refresher{
		Store:  store,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return now },
	}

	movies := []*core.Movie{
		{ID: "m1", Stats: core.MovieStats{Plays: 100, Likes: 50}, CreatedAt: now},
		{ID: "m2", Stats: core.MovieStats{Plays: 10}},
		nil,
		{Stats: core.MovieStats{Plays: 1}}, // 无 ID，跳过
	}

	n, err := r.Run(context.Background(), movies)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
	if math.Abs(store.got["m1"]-(100*0.3+50*0.6+10)) > 1e-9 {
		t.Errorf("m1 score = %v", store.got["m1"])
	}
	if math.Abs(store.got["m2"]-3) > 1e-9 {
		t.Errorf("m2 score = %v, want 3", store.got["m2"])
	}
}

func TestRefresherRunEmptyAndError(t *testing.T) {
	r := &Refresher{Store: &recordingStore{}, Logger: zerolog.Nop()}
	if n, err := r.Run(context.Background(), nil); n != 0 || err != nil {
		t.Errorf("empty run = %d, %v", n, err)
	}

	failing := &Refresher{
		Store:  &recordingStore{err: errors.New("write failed")},
		Logger: zerolog.Nop(),
	}
	movies := []*core.Movie{{ID: "m1"}}
	if _, err := failing.Run(context.Background(), movies); err == nil {
		t.Error("store failure should propagate")
	}
}
