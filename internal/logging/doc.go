// Package logging provides structured logging utilities for autobrief.
//
// It centralizes slog attribute naming so every part of the digest engine
// logs the same fields: the group being processed, the (anonymized) user,
// the operation, and its outcome.
//
// User emails are hashed before logging. The hash is stable, so log entries
// for the same user can still be correlated without exposing the address.
package logging
