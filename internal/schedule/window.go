package schedule

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/autobrief/autobrief/internal/logging"
	"github.com/autobrief/autobrief/internal/newsletter"
)

// DueTolerance is the half-width of the firing window. It absorbs the
// coarse granularity of the external trigger, which typically fires hourly.
const DueTolerance = 30 * time.Minute

// DefaultReferenceZone is the timezone schedule_time values are expressed
// in. Earlier revisions approximated this with a fixed 2-hour offset, which
// drifted by an hour across DST changes; the conversion is now DST-aware.
const DefaultReferenceZone = "Europe/Paris"

// Evaluator decides whether "now" falls inside a configured firing window.
type Evaluator struct {
	location *time.Location
	logger   *slog.Logger
}

// NewEvaluator creates an Evaluator with schedule times interpreted in loc.
// A nil loc falls back to DefaultReferenceZone, and a nil logger to
// slog.Default().
func NewEvaluator(loc *time.Location, logger *slog.Logger) *Evaluator {
	if loc == nil {
		loc, _ = time.LoadLocation(DefaultReferenceZone)
		if loc == nil {
			loc = time.UTC
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{location: loc, logger: logger}
}

// IsDueNow reports whether now falls inside the group's firing window.
//
// For weekly schedules the weekday must match first. The configured
// wall-clock time is converted from the reference timezone into now's frame
// and compared by absolute minutes-of-day distance; the comparison is not
// circular, so a window straddling midnight does not wrap.
func (e *Evaluator) IsDueNow(cfg newsletter.ScheduleConfig, now time.Time) bool {
	if cfg.Frequency == newsletter.FrequencyWeekly {
		day, err := newsletter.ParseWeekday(cfg.ScheduleDay)
		if err != nil {
			e.logger.Warn("unparsable schedule day, treating as due",
				logging.Operation("schedule.window"),
				logging.Err(err))
			return true
		}
		if now.Weekday() != day {
			return false
		}
	}

	hour, minute, err := parseClock(cfg.ScheduleTime)
	if err != nil {
		e.logger.Warn("unparsable schedule time, treating as due",
			logging.Operation("schedule.window"),
			logging.Err(err))
		return true
	}

	// Anchor the target on today's date in the reference zone, then move it
	// into now's frame so the minutes-of-day comparison is zone-consistent.
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, e.location).In(now.Location())

	nowMinutes := now.Hour()*60 + now.Minute()
	targetMinutes := target.Hour()*60 + target.Minute()

	diff := nowMinutes - targetMinutes
	if diff < 0 {
		diff = -diff
	}
	return time.Duration(diff)*time.Minute <= DueTolerance
}

// parseClock parses an "HH:MM" wall-clock value.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid schedule time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule hour %q: %w", s, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule minute %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time %q out of range", s)
	}
	return hour, minute, nil
}
