package realtime

import (
	"testing"

	"trolley/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTrackerAppliesForwardProgress(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.Apply("o1", models.StatusPlaced))
	assert.True(t, tr.Apply("o1", models.StatusConfirmed))
	assert.True(t, tr.Apply("o1", models.StatusPreparing))

	status, ok := tr.Status("o1")
	assert.True(t, ok)
	assert.Equal(t, models.StatusPreparing, status)
}

func TestTrackerIgnoresDuplicatesAndStalePolls(t *testing.T) {
	tr := NewTracker()
	tr.Apply("o1", models.StatusPreparing)

	// realtime event redelivered
	assert.False(t, tr.Apply("o1", models.StatusPreparing))
	// poll response captured before the last transition
	assert.False(t, tr.Apply("o1", models.StatusPlaced))
	assert.False(t, tr.Apply("o1", models.StatusConfirmed))

	status, _ := tr.Status("o1")
	assert.Equal(t, models.StatusPreparing, status)
}

func TestTrackerAcceptsCancellationMidFlight(t *testing.T) {
	tr := NewTracker()
	tr.Apply("o1", models.StatusOnTheWay)

	assert.True(t, tr.Apply("o1", models.StatusCancelled))
	// nothing moves a terminal order, not even delivered
	assert.False(t, tr.Apply("o1", models.StatusDelivered))
	assert.False(t, tr.Apply("o1", models.StatusOnTheWay))
}

func TestTrackerTerminalIsFinal(t *testing.T) {
	tr := NewTracker()
	tr.Apply("o1", models.StatusDelivered)

	assert.False(t, tr.Apply("o1", models.StatusCancelled))
	assert.False(t, tr.Apply("o1", models.StatusDelivered))
}

func TestTrackerFirstUpdateAlwaysApplies(t *testing.T) {
	tr := NewTracker()
	// a poll can be the first thing a late subscriber sees
	assert.True(t, tr.Apply("o2", models.StatusDelivered))

	_, ok := tr.Status("unknown")
	assert.False(t, ok)
}

func TestTrackerTracksOrdersIndependently(t *testing.T) {
	tr := NewTracker()
	tr.Apply("o1", models.StatusDelivered)

	assert.True(t, tr.Apply("o2", models.StatusPlaced))
	assert.True(t, tr.Apply("o2", models.StatusConfirmed))
}
