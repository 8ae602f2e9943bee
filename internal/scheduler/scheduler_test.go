package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopublicist/publicist/internal/domain"
)

type fakeCounter struct {
	counts map[string]int
}

func (f fakeCounter) CountPublicationsInRange(ctx context.Context, channelID int64, from, to time.Time) (int, error) {
	return f.counts[from.Format("2006-01-02")], nil
}

func moscowChannel() *domain.Channel {
	return &domain.Channel{
		ID:                 1,
		Timezone:           "Europe/Moscow",
		DailyTime:          "10:00",
		AllowedWindowStart: "08:00",
		AllowedWindowEnd:   "22:00",
	}
}

// CalculateNextSlot reads now_utc_naive() internally, so an exact
// one-scenario assertion against a fixed instant would be flaky against
// wall-clock time; these tests instead pin down the properties that
// must hold regardless of when they run.
func TestCalculateNextSlot_PlannedIsInTheFuture(t *testing.T) {
	sched := New(fakeCounter{counts: map[string]int{}})
	ch := moscowChannel()

	before := time.Now().UTC()
	planned, slotIndex, err := sched.CalculateNextSlot(context.Background(), ch)
	require.NoError(t, err)
	assert.True(t, planned.After(before))
	assert.Equal(t, 0, slotIndex)
}

// slot_index mirrors the same-day Publication count the counter
// reports, and planned_at is offset by exactly that many seconds.
func TestCalculateNextSlot_SlotIndexMatchesCount(t *testing.T) {
	ch := moscowChannel()

	baseline := New(fakeCounter{counts: map[string]int{}})
	planned0, idx0, err := baseline.CalculateNextSlot(context.Background(), ch)
	require.NoError(t, err)
	require.Equal(t, 0, idx0)

	dayKey := planned0.Format("2006-01-02")
	packed := New(fakeCounter{counts: map[string]int{dayKey: 3}})
	planned3, idx3, err := packed.CalculateNextSlot(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, 3, idx3)
	assert.True(t, planned3.Equal(planned0.Add(3*time.Second)), "got %v want %v", planned3, planned0.Add(3*time.Second))
}

func TestAdjustToWindow_WithinWindowUnchanged(t *testing.T) {
	sched := New(fakeCounter{})
	ch := moscowChannel()

	// 12:00 MSK = 09:00 UTC, within [08:00, 22:00] MSK.
	planned := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	got, err := sched.AdjustToWindow(ch, planned)
	require.NoError(t, err)
	assert.True(t, got.Equal(planned))
}

func TestAdjustToWindow_BeforeWindowShiftsToToday(t *testing.T) {
	sched := New(fakeCounter{})
	ch := moscowChannel()

	// 05:00 MSK = 2025-01-14 02:00 UTC, before window_start 08:00 MSK.
	planned := time.Date(2025, 1, 14, 2, 0, 0, 0, time.UTC)
	got, err := sched.AdjustToWindow(ch, planned)
	require.NoError(t, err)
	want := time.Date(2025, 1, 14, 5, 0, 0, 0, time.UTC) // 08:00 MSK
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestAdjustToWindow_AfterWindowShiftsToTomorrow(t *testing.T) {
	sched := New(fakeCounter{})
	ch := moscowChannel()

	// 23:00 MSK = 2025-01-14 20:00 UTC, after window_end 22:00 MSK.
	planned := time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC)
	got, err := sched.AdjustToWindow(ch, planned)
	require.NoError(t, err)
	want := time.Date(2025, 1, 15, 5, 0, 0, 0, time.UTC) // tomorrow 08:00 MSK
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

// adjust_to_window is idempotent.
func TestAdjustToWindow_Idempotent(t *testing.T) {
	sched := New(fakeCounter{})
	ch := moscowChannel()

	cases := []time.Time{
		time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 14, 2, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC),
	}
	for _, planned := range cases {
		once, err := sched.AdjustToWindow(ch, planned)
		require.NoError(t, err)
		twice, err := sched.AdjustToWindow(ch, once)
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), "not idempotent for %v: once=%v twice=%v", planned, once, twice)
	}
}
