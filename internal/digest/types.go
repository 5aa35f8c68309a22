package digest

import "context"

// MailboxClient retrieves messages from the user's mailbox.
type MailboxClient interface {
	// Search returns the IDs of all messages matching the query.
	Search(ctx context.Context, query string) ([]string, error)
	// Fetch returns a message's subject and decoded body.
	Fetch(ctx context.Context, messageID string) (subject, body string, err error)
}

// Summarizer condenses newsletter content. An empty result with a nil
// error means nothing relevant was found.
type Summarizer interface {
	Summarize(ctx context.Context, text, customPrompt string) (string, error)
}

// Sender dispatches the finished digest.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
