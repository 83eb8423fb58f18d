package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute, second int) time.Time {
	return time.Date(2026, time.August, 30, hour, minute, second, 0, time.UTC)
}

func Test_Scheduler_first_boundary_is_the_next_interval_multiple(t *testing.T) {
	// Arrange
	now := at(10, 7, 0)

	// Act
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Assert
	assert.Equal(t, at(10, 15, 0), scheduler.Next())
}

func Test_Scheduler_tick_at_the_boundary_sends_and_advances(t *testing.T) {
	// Arrange
	now := at(10, 7, 0)
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Act
	now = at(10, 15, 0)
	send := scheduler.ShouldSend()

	// Assert
	assert.True(t, send)
	assert.Equal(t, at(10, 30, 0), scheduler.Next())
}

func Test_Scheduler_rolls_into_the_next_hour(t *testing.T) {
	// Arrange
	now := at(10, 59, 0)

	// Act
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Assert
	assert.Equal(t, at(11, 0, 0), scheduler.Next())
}

func Test_Scheduler_ticks_before_the_boundary_do_not_send(t *testing.T) {
	// Arrange
	now := at(10, 7, 0)
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Act
	now = at(10, 14, 59)
	send := scheduler.ShouldSend()

	// Assert
	assert.False(t, send)
	assert.Equal(t, at(10, 15, 0), scheduler.Next())
}

func Test_Scheduler_recomputes_from_now_after_missed_boundaries(t *testing.T) {
	// Arrange
	now := at(10, 7, 0)
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Act
	// A slow tick lands well past the target; the next target is computed
	// from the clock, not incremented, so it is never in the past.
	now = at(10, 47, 12)
	send := scheduler.ShouldSend()

	// Assert
	assert.True(t, send)
	assert.Equal(t, at(11, 0, 0), scheduler.Next())
}

func Test_Scheduler_boundary_at_start_is_strictly_in_the_future(t *testing.T) {
	// Arrange
	now := at(10, 15, 0)

	// Act
	scheduler := NewScheduler(15*time.Minute, func() time.Time { return now })

	// Assert
	assert.Equal(t, at(10, 30, 0), scheduler.Next())
}
