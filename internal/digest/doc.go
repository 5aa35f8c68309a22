// Package digest turns one newsletter group's recent messages into a
// summarized digest.
//
// The processor queries the mailbox for messages from the group's senders,
// drops promotional ones, cleans the remaining bodies, summarizes the
// result, and dispatches it to the group's notification address. Mailbox
// failures are isolated per message; a summarizer failure aborts the
// group's run so the next scheduler invocation retries it.
package digest
