// Package clock supplies the monotonic "now" used across the scheduling
// core and converts between UTC and a channel's IANA timezone. All
// persisted timestamps are tz-naive UTC by convention; zone handling only
// happens at the scheduling and display boundaries.
package clock

import (
	"time"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/pkg/logger"
)

// DefaultZone is the fallback timezone used when a channel's configured
// zone cannot be resolved.
const DefaultZone = "Europe/Moscow"

// NowUTCNaive returns the current instant in UTC with no location
// attached, matching the store's naive-UTC convention.
func NowUTCNaive() time.Time {
	return stripLocation(time.Now().UTC())
}

func stripLocation(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// resolveZone resolves tzName, falling back to DefaultZone and then UTC
// when the name cannot be loaded. A warning is logged on every fallback.
func resolveZone(tzName string) *time.Location {
	if loc, err := time.LoadLocation(tzName); err == nil {
		return loc
	}
	logger.Warnf("clock: unknown timezone %q, falling back to %s", tzName, DefaultZone)

	if loc, err := time.LoadLocation(DefaultZone); err == nil {
		return loc
	}
	logger.Warnf("clock: default timezone %s unavailable, falling back to UTC", DefaultZone)
	return time.UTC
}

// LocalToUTCNaive interprets dtLocal as wall-clock time in tzName and
// returns the equivalent tz-naive UTC instant.
func LocalToUTCNaive(dtLocal time.Time, tzName string) time.Time {
	loc := resolveZone(tzName)
	local := time.Date(
		dtLocal.Year(), dtLocal.Month(), dtLocal.Day(),
		dtLocal.Hour(), dtLocal.Minute(), dtLocal.Second(), dtLocal.Nanosecond(),
		loc,
	)
	return stripLocation(local.UTC())
}

// UTCNaiveToLocal interprets dtUTC as a tz-naive UTC instant and returns
// the equivalent tz-naive wall-clock time in tzName.
func UTCNaiveToLocal(dtUTC time.Time, tzName string) time.Time {
	loc := resolveZone(tzName)
	utc := time.Date(
		dtUTC.Year(), dtUTC.Month(), dtUTC.Day(),
		dtUTC.Hour(), dtUTC.Minute(), dtUTC.Second(), dtUTC.Nanosecond(),
		time.UTC,
	)
	local := utc.In(loc)
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		time.UTC, // naive: location tag discarded, only the wall-clock fields matter
	)
}

// ZoneError wraps a failed LoadLocation call for a caller that wants to
// reject an invalid zone outright (e.g. channel creation) rather than
// silently falling back.
func ZoneError(tzName string) error {
	if _, err := time.LoadLocation(tzName); err != nil {
		return apperrors.Clock(apperrors.CodeTimezone).
			With("tz_name", tzName).
			Wrap(err)
	}
	return nil
}
