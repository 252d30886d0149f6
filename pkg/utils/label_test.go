package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{
			name:     "both populated",
			existing: Label{Value: "preference", Source: "recall"},
			incoming: Label{Value: "trending", Source: "recall"},
			want:     Label{Value: "preference|trending", Source: "recall,recall"},
		},
		{
			name:     "empty existing returns incoming",
			existing: Label{},
			incoming: Label{Value: "v", Source: "s"},
			want:     Label{Value: "v", Source: "s"},
		},
		{
			name:     "empty incoming returns existing",
			existing: Label{Value: "v", Source: "s"},
			incoming: Label{},
			want:     Label{Value: "v", Source: "s"},
		},
		{
			name:     "missing existing source",
			existing: Label{Value: "a"},
			incoming: Label{Value: "b", Source: "rank"},
			want:     Label{Value: "a|b", Source: "rank"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel = %+v, want %+v", got, tt.want)
			}
		})
	}
}
