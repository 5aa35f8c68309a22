// Package schedule decides when a newsletter group's digest is due.
//
// The decision has two layers. The window evaluator checks whether the
// current instant falls inside the group's configured firing window (weekday
// plus wall-clock time with a tolerance band). The run gate combines that
// verdict with the elapsed time since the group's last successful run, so an
// hourly external trigger cannot re-fire the same window twice.
//
// Malformed schedule fields fail open: a group with an unparsable time is
// treated as due and the error is logged. An extra unwanted run beats
// silently never running.
package schedule
