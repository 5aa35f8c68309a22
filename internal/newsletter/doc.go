// Package newsletter defines the persisted data model for digest groups.
//
// A Group is a named set of sender addresses that share one schedule
// configuration. Groups live inside a per-user UserData document stored as
// a remote JSON blob; older revisions of that document used several ad-hoc
// shapes, so this package also owns the migration that normalizes them to
// the current tagged schema version.
package newsletter
