package feature

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/cinekit/core"
)

func TestDecay(t *testing.T) {
	if got := Decay(0, DefaultDecayWindowDays); got != 1 {
		t.Errorf("Decay(0) = %v, want 1", got)
	}

	// 严格单调递减
	prev := 2.0
	for _, days := range []float64{0, 1, 7, 30, 90, 365} {
		got := Decay(days, DefaultDecayWindowDays)
		if got >= prev {
			t.Errorf("Decay(%v) = %v, want < %v", days, got, prev)
		}
		if got <= 0 || got > 1 {
			t.Errorf("Decay(%v) = %v, want in (0, 1]", days, got)
		}
		prev = got
	}
}

func TestAccumulatorBuild(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	drama := &core.Movie{
		ID:           "m1",
		Categories:   []string{"drama"},
		LengthBucket: "feature",
		Directors:    []string{"d1"},
	}

	a := &Accumulator{}

	t.Run("complete action with decay", func(t *testing.T) {
		inters := []*core.Interaction{
			{MovieID: "m1", Action: core.ActionComplete, Timestamp: now.AddDate(0, 0, -10), Movie: drama},
		}
		w := a.Build(inters, now)

		want := 5 * math.Exp(-10.0/30.0)
		if got := w.Category["drama"]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Category[drama] = %v, want %v", got, want)
		}
		if got := w.Length["feature"]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Length[feature] = %v, want %v", got, want)
		}
		if got := w.Director["d1"]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Director[d1] = %v, want %v", got, want)
		}
		if !w.Seen["m1"] {
			t.Error("Seen[m1] = false, want true")
		}
	})

	t.Run("weights accumulate across interactions", func(t *testing.T) {
		inters := []*core.Interaction{
			{MovieID: "m1", Action: core.ActionView, Timestamp: now, Movie: drama},
			{MovieID: "m1", Action: core.ActionLike, Timestamp: now, Movie: drama},
		}
		w := a.Build(inters, now)

		// view(1) + like(3)，零衰减
		if got := w.Category["drama"]; math.Abs(got-4) > 1e-9 {
			t.Errorf("Category[drama] = %v, want 4", got)
		}
	})

	t.Run("missing movie skipped", func(t *testing.T) {
		inters := []*core.Interaction{
			{MovieID: "gone", Action: core.ActionLike, Timestamp: now, Movie: nil},
		}
		w := a.Build(inters, now)
		if !w.Empty() {
			t.Error("weights should be empty when no movie joined")
		}
		if len(w.Seen) != 0 {
			t.Errorf("Seen = %v, want empty", w.Seen)
		}
	})

	t.Run("future timestamp clamped to zero decay", func(t *testing.T) {
		inters := []*core.Interaction{
			{MovieID: "m1", Action: core.ActionView, Timestamp: now.Add(time.Hour), Movie: drama},
		}
		w := a.Build(inters, now)
		if got := w.Category["drama"]; math.Abs(got-1) > 1e-9 {
			t.Errorf("Category[drama] = %v, want 1", got)
		}
	})

	t.Run("unknown action defaults to weight 1", func(t *testing.T) {
		inters := []*core.Interaction{
			{MovieID: "m1", Action: core.Action("hover"), Timestamp: now, Movie: drama},
		}
		w := a.Build(inters, now)
		if got := w.Category["drama"]; math.Abs(got-1) > 1e-9 {
			t.Errorf("Category[drama] = %v, want 1", got)
		}
	})
}

func TestActionWeights(t *testing.T) {
	tests := []struct {
		action core.Action
		want   float64
	}{
		{core.ActionView, 1},
		{core.ActionLike, 3},
		{core.ActionShare, 4},
		{core.ActionComplete, 5},
		{core.Action("unknown"), 1},
	}
	for _, tt := range tests {
		if got := core.ActionWeight(tt.action); got != tt.want {
			t.Errorf("ActionWeight(%s) = %v, want %v", tt.action, got, tt.want)
		}
	}
}
