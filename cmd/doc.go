// Package cmd implements the command-line interface for autobrief.
//
// This package provides the following commands:
//   - run: Execute one scheduler pass over all users (default command)
//   - process: Force a digest run for a single group, bypassing the schedule
//   - groups: Manage a user's newsletter groups
//   - auth: Authorize a Google account for Gmail access
//   - version: Display version information
//
// The run command is the default command when no subcommand is specified.
package cmd
