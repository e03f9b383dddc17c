package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Duration(t *testing.T) {
	tests := []struct {
		name string
		min  time.Duration
		max  time.Duration
	}{
		{name: "hours range", min: 3 * time.Hour, max: 6 * time.Hour},
		{name: "days range", min: 48 * time.Hour, max: 72 * time.Hour},
		{name: "empty range", min: time.Hour, max: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(42)
			for i := 0; i < 200; i++ {
				got := s.Duration(tt.min, tt.max)
				assert.GreaterOrEqual(t, got, tt.min)
				if tt.max > tt.min {
					assert.Less(t, got, tt.max)
				}
			}
		})
	}
}

func TestShuffle(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	got := Shuffle(New(7), items)

	assert.ElementsMatch(t, items, got)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, items, "input must not be modified")
	assert.Equal(t, got, Shuffle(New(7), items), "same seed gives same permutation")
}

func TestSample(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		n       int
		wantLen int
	}{
		{name: "fewer than available", items: []string{"a", "b", "c", "d"}, n: 2, wantLen: 2},
		{name: "more than available", items: []string{"a", "b"}, n: 5, wantLen: 2},
		{name: "zero", items: []string{"a"}, n: 0, wantLen: 0},
		{name: "empty input", items: nil, n: 3, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(New(1), tt.items, tt.n)
			require.Len(t, got, tt.wantLen)

			seen := make(map[string]bool)
			for _, g := range got {
				assert.Contains(t, tt.items, g)
				assert.False(t, seen[g], "sampled without replacement")
				seen[g] = true
			}
		})
	}
}

func TestPick(t *testing.T) {
	_, ok := Pick[string](New(1), nil)
	assert.False(t, ok)

	got, ok := Pick(New(1), []string{"only"})
	assert.True(t, ok)
	assert.Equal(t, "only", got)
}
