package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	c := NewFake(start)
	assert.Equal(t, start, c.Now())

	c.Advance(45 * time.Minute)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System().Now()
	assert.False(t, got.Before(before))
}
