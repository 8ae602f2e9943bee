// Package scheduler computes delivery slots for a channel's daily cadence
// and adjusts a planned instant into the channel's allowed publication
// window.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/clock"
	"github.com/gopublicist/publicist/internal/domain"
)

// maxDayIterations caps CalculateNextSlot's day-by-day search; it exists
// purely to bound pathological loops, not as a realistic schedule horizon.
const maxDayIterations = 365

// SlotCounter supplies the same-day Publication count CalculateNextSlot
// needs for its per-day +N-second packing.
type SlotCounter interface {
	CountPublicationsInRange(ctx context.Context, channelID int64, from, to time.Time) (int, error)
}

type Scheduler struct {
	counter SlotCounter
}

func New(counter SlotCounter) *Scheduler {
	return &Scheduler{counter: counter}
}

func parseHHMM(hhmm string) (hour, minute int, err error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, apperrors.Scheduler(apperrors.CodeValidation).
			With("value", hhmm).
			Wrap(fmt.Errorf("expected HH:MM"))
	}
	hour, herr := strconv.Atoi(parts[0])
	minute, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, apperrors.Scheduler(apperrors.CodeValidation).
			With("value", hhmm).
			Wrap(fmt.Errorf("invalid HH:MM value"))
	}
	return hour, minute, nil
}

// timeOfDay builds a location-free time.Time carrying only hour/minute for
// same-day comparisons, tagged UTC purely so it composes with the rest of
// the naive-UTC convention - it never denotes an actual UTC instant.
func timeOfDay(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

// CalculateNextSlot computes the next delivery instant (naive UTC) and its
// per-day ordinal for channel, per the algorithm in the scheduling core's
// design: today's daily_time in channel-local time (advanced a day if
// already passed), then day-by-day search for the first candidate whose
// per-day-packed instant is still in the future.
func (s *Scheduler) CalculateNextSlot(ctx context.Context, channel *domain.Channel) (time.Time, int, error) {
	now := clock.NowUTCNaive()

	dailyHour, dailyMinute, err := parseHHMM(channel.DailyTime)
	if err != nil {
		return time.Time{}, 0, err
	}

	localNow := clock.UTCNaiveToLocal(now, channel.Timezone)
	localCandidate := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), dailyHour, dailyMinute, 0, 0, time.UTC)
	if !localCandidate.After(localNow) {
		localCandidate = localCandidate.AddDate(0, 0, 1)
	}

	for i := 0; i < maxDayIterations; i++ {
		plannedUTC := clock.LocalToUTCNaive(localCandidate, channel.Timezone)
		dayStart := time.Date(plannedUTC.Year(), plannedUTC.Month(), plannedUTC.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.AddDate(0, 0, 1)

		slotIndex, err := s.counter.CountPublicationsInRange(ctx, channel.ID, dayStart, dayEnd)
		if err != nil {
			return time.Time{}, 0, apperrors.Scheduler(apperrors.CodeDatabase).Wrap(err)
		}

		candidate := plannedUTC.Add(time.Duration(slotIndex) * time.Second)
		if candidate.After(now) {
			return candidate, slotIndex, nil
		}
		localCandidate = localCandidate.AddDate(0, 0, 1)
	}

	// Fallback: no open slot found within a year of daily search.
	return now.Add(time.Minute), 0, nil
}

// AdjustToWindow shifts plannedUTC into channel's allowed local window.
// Within the window it is returned unchanged; before window_start it
// shifts to today's window_start; after window_end it shifts to
// tomorrow's window_start. Idempotent.
func (s *Scheduler) AdjustToWindow(channel *domain.Channel, plannedUTC time.Time) (time.Time, error) {
	startHour, startMinute, err := parseHHMM(channel.AllowedWindowStart)
	if err != nil {
		return time.Time{}, err
	}
	endHour, endMinute, err := parseHHMM(channel.AllowedWindowEnd)
	if err != nil {
		return time.Time{}, err
	}

	local := clock.UTCNaiveToLocal(plannedUTC, channel.Timezone)
	tod := timeOfDay(local.Hour(), local.Minute())
	windowStart := timeOfDay(startHour, startMinute)
	windowEnd := timeOfDay(endHour, endMinute)

	if !tod.Before(windowStart) && !tod.After(windowEnd) {
		return plannedUTC, nil
	}

	shiftedLocal := time.Date(local.Year(), local.Month(), local.Day(), startHour, startMinute, 0, 0, time.UTC)
	if tod.After(windowEnd) {
		shiftedLocal = shiftedLocal.AddDate(0, 0, 1)
	}
	return clock.LocalToUTCNaive(shiftedLocal, channel.Timezone), nil
}
