package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/autobrief/autobrief/internal/google"
	"github.com/autobrief/autobrief/internal/instrumentation"
)

// Client wraps the Gmail Users service.
type Client struct {
	svc     *gmail.UsersService
	account string
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics sets the metrics recorder for Gmail API operations.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// record counts one API operation with its outcome.
func (c *Client) record(ctx context.Context, operation string, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGmailOperation(ctx, operation, status)
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a Gmail client with OAuth2 authentication for
// a specific account.
func NewClientForAccount(ctx context.Context, account string, opts ...Option) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token for account %s: %w", account, err)
	}

	svc, err := gmail.New(client)
	if err != nil {
		return nil, err
	}

	c := &Client{svc: svc.Users, account: account, metrics: &instrumentation.Metrics{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient creates a Gmail client for the default account.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	return NewClientForAccount(ctx, "default", opts...)
}

// Search returns the IDs of all messages matching the query, following
// pagination until exhausted.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		req := c.svc.Messages.List("me").Q(query).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		res, err := req.Do()
		c.record(ctx, "search", err)
		if err != nil {
			return nil, fmt.Errorf("searching messages: %w", err)
		}
		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" {
			return ids, nil
		}
		pageToken = res.NextPageToken
	}
}

// Fetch retrieves a message's subject and decoded body. The plain-text part
// is preferred; HTML is returned when no plain-text part exists.
func (c *Client) Fetch(ctx context.Context, messageID string) (subject, body string, err error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	c.record(ctx, "fetch", err)
	if err != nil {
		return "", "", fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	subject = HeaderValue(msg, "Subject")

	body, err = messageBody(msg, "text/plain")
	if err != nil {
		body, err = messageBody(msg, "text/html")
	}
	if err != nil {
		return subject, "", fmt.Errorf("no readable body in message %s: %w", messageID, err)
	}
	return subject, body, nil
}

// Send delivers an HTML digest email through the Gmail API.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	if subject == "" {
		return fmt.Errorf("subject is required")
	}

	// Build the email message in RFC 2822 format.
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(to)
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(subject))
	b.WriteString("\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	raw := base64.URLEncoding.EncodeToString([]byte(b.String()))
	_, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	c.record(ctx, "send", err)
	if err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	return nil
}

// HeaderValue extracts a header value from a Gmail message.
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// messageBody finds and decodes the first body part with the target MIME
// type, checking the main payload first and walking nested parts after.
func messageBody(msg *gmail.Message, mimeType string) (string, error) {
	if msg.Payload == nil {
		return "", fmt.Errorf("message has no payload")
	}

	var data string
	if msg.Payload.MimeType == mimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data = msg.Payload.Body.Data
	} else {
		walkParts(msg.Payload, func(part *gmail.MessagePart) {
			if data == "" && part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
				data = part.Body.Data
			}
		})
	}
	if data == "" {
		return "", fmt.Errorf("no %s body found", mimeType)
	}

	// Gmail API uses RFC 4648 base64url encoding; fall back to standard
	// base64 for senders that get it wrong.
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// encodeRFC2047 encodes a string for use in email headers according to
// RFC 2047, needed for non-ASCII characters in subjects.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
