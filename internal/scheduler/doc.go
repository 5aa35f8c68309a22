// Package scheduler drives the periodic digest run across all users.
//
// A run walks every user document in the store, asks the schedule gate
// which groups are due, hands due groups to the digest processor, and
// writes each user document back once its groups have advanced. Failures
// are isolated: a broken user document or a failing group never stops
// the rest of the run.
package scheduler
