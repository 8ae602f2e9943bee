package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalToUTCNaive_MoscowOffset(t *testing.T) {
	local := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) // wall-clock 10:00, interpreted as MSK
	got := LocalToUTCNaive(local, "Europe/Moscow")
	want := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC) // MSK is UTC+3
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
	assert.Equal(t, time.UTC, got.Location())
}

func TestUTCNaiveToLocal_MoscowOffset(t *testing.T) {
	utc := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)
	got := UTCNaiveToLocal(utc, "Europe/Moscow")
	want := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v want %v", got, want)
}

// utc_naive_to_local(local_to_utc_naive(t, z), z) = t for a
// non-ambiguous local t.
func TestRoundTrip_Law(t *testing.T) {
	zones := []string{"Europe/Moscow", "America/New_York", "UTC"}
	local := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

	for _, z := range zones {
		utc := LocalToUTCNaive(local, z)
		back := UTCNaiveToLocal(utc, z)
		assert.True(t, local.Equal(back), "zone %s: got %v want %v", z, back, local)
	}
}

func TestResolveZone_UnknownFallsBackToDefaultZone(t *testing.T) {
	local := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	got := LocalToUTCNaive(local, "Not/AZone")
	want := LocalToUTCNaive(local, DefaultZone)
	assert.True(t, got.Equal(want))
}

func TestNowUTCNaive_IsNaive(t *testing.T) {
	now := NowUTCNaive()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now().UTC(), now, 2*time.Second)
}

func TestZoneError(t *testing.T) {
	require.NoError(t, ZoneError("Europe/Moscow"))
	require.Error(t, ZoneError("Not/AZone"))
}
