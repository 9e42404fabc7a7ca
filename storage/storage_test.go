package storage

import (
	"testing"
	"time"

	"github.com/Hamza-spc/CountryCompare/types"
)

func TestShouldReplace(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	incoming := types.Country{Name: "Germany", LastUpdated: now}

	tests := []struct {
		name     string
		existing *types.Country
		want     bool
	}{
		{"nothing stored", nil, true},
		{"fresh", &types.Country{LastUpdated: now.Add(-time.Hour)}, false},
		{"stale", &types.Country{LastUpdated: now.Add(-25 * time.Hour)}, true},
		{"exactly max age", &types.Country{LastUpdated: now.Add(-DefaultStaleAfter)}, false},
	}
	for _, tt := range tests {
		if got := ShouldReplace(tt.existing, incoming, DefaultStaleAfter); got != tt.want {
			t.Errorf("%s: ShouldReplace = %v, want %v", tt.name, got, tt.want)
		}
	}
}
