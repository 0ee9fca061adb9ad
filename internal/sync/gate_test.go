package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_CoalescesBursts(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewGate(50 * time.Millisecond)

	assert.True(t, g.ShouldRun(base), "first event always runs")
	assert.False(t, g.ShouldRun(base.Add(10*time.Millisecond)), "event inside the window is dropped")
	assert.False(t, g.ShouldRun(base.Add(49*time.Millisecond)))
	assert.True(t, g.ShouldRun(base.Add(50*time.Millisecond)), "gate reopens after the interval")
}

func TestGate_DroppedEventsDoNotExtendTheWindow(t *testing.T) {
	base := time.Now()
	g := NewGate(50 * time.Millisecond)

	assert.True(t, g.ShouldRun(base))
	// A dropped event must not push the reopen time further out.
	assert.False(t, g.ShouldRun(base.Add(30*time.Millisecond)))
	assert.True(t, g.ShouldRun(base.Add(60*time.Millisecond)))
}
