package schedule

import (
	"log/slog"
	"time"

	"github.com/autobrief/autobrief/internal/logging"
	"github.com/autobrief/autobrief/internal/newsletter"
)

// Minimum elapsed time since the last successful run before a group may
// fire again. The thresholds sit short of the nominal period so a slightly
// early next window still fires; without them the hourly trigger would hit
// the same ±30-minute window more than once.
const (
	MinDailyElapsed  = 20 * time.Hour
	MinWeeklyElapsed = 6 * 24 * time.Hour
)

// Gate decides whether a group's digest run is due.
type Gate struct {
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewGate creates a Gate using the given window evaluator. A nil
// evaluator falls back to one anchored in the default reference zone.
func NewGate(evaluator *Evaluator, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if evaluator == nil {
		evaluator = NewEvaluator(nil, logger)
	}
	return &Gate{evaluator: evaluator, logger: logger}
}

// ShouldRun reports whether the group is due for a digest run at now.
//
// Disabled groups never run. A group that has never produced a digest runs
// unconditionally so a newly created group gets its first feasibility check
// without waiting for a matching window. Otherwise the window must match
// AND enough wall-clock time must have elapsed since the last run.
func (g *Gate) ShouldRun(grp newsletter.Group, now time.Time) bool {
	if !grp.Settings.Enabled {
		return false
	}

	lastRun, err := grp.Settings.LastRunTime()
	if err != nil {
		g.logger.Warn("unparsable last run timestamp, treating as due",
			logging.Operation("schedule.gate"),
			logging.Group(grp.Title),
			logging.Err(err))
		return true
	}
	if lastRun.IsZero() {
		return true
	}

	if !g.evaluator.IsDueNow(grp.Settings, now) {
		return false
	}

	minElapsed := MinWeeklyElapsed
	if grp.Settings.Frequency == newsletter.FrequencyDaily {
		minElapsed = MinDailyElapsed
	}
	return now.Sub(lastRun) >= minElapsed
}
