package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autobrief/autobrief/internal/classify"
	"github.com/autobrief/autobrief/internal/content"
	"github.com/autobrief/autobrief/internal/gmail"
	"github.com/autobrief/autobrief/internal/instrumentation"
	"github.com/autobrief/autobrief/internal/logging"
	"github.com/autobrief/autobrief/internal/newsletter"
)

// Processor runs the digest pipeline for one newsletter group.
type Processor struct {
	mailbox    MailboxClient
	summarizer Summarizer
	sender     Sender
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	// resolveLinks post-processes the summary; injectable for tests.
	resolveLinks func(string) string
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics sets the metrics recorder used for classification verdicts,
// summarizer outcomes, and dispatched digests.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// NewProcessor creates a Processor. sender may be nil when dispatch is not
// wanted (dry runs).
func NewProcessor(mailbox MailboxClient, summarizer Summarizer, sender Sender, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		mailbox:      mailbox,
		summarizer:   summarizer,
		sender:       sender,
		logger:       logger,
		metrics:      &instrumentation.Metrics{},
		resolveLinks: content.ResolveRedirects,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process retrieves, filters, cleans, and summarizes the group's recent
// messages, dispatches the digest, and advances the group's LastRun.
//
// The returned summary is empty when no editorial content was found; that
// is a normal outcome, not an error, and LastRun is left untouched so the
// group stays eligible. Per-message mailbox failures are skipped; a
// summarizer or dispatch failure aborts the run with an error and also
// leaves LastRun untouched, so the next scheduler invocation retries.
func (p *Processor) Process(ctx context.Context, userEmail string, group *newsletter.Group, now time.Time) (string, error) {
	logger := p.logger.With(
		logging.Operation("digest.process"),
		logging.Group(group.Title),
		logging.UserHash(userEmail),
	)

	group.Settings.ClampAnalyzeDays()
	query := gmail.BuildQuery(group.Emails, group.Settings.AnalyzeDays, now)

	ids, err := p.mailbox.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("searching mailbox for group %q: %w", group.Title, err)
	}
	if len(ids) == 0 {
		logger.Info("no messages found", logging.Status(logging.StatusSkipped))
		return "", nil
	}

	var bodies []string
	retained, discarded := 0, 0
	for _, id := range ids {
		subject, body, err := p.mailbox.Fetch(ctx, id)
		if err != nil {
			// One broken message must not sink the rest of the group.
			logger.Warn("skipping unreadable message", slog.String("message_id", id), logging.Err(err))
			continue
		}
		if classify.Classify(subject) == classify.Promotional {
			discarded++
			p.metrics.RecordClassification(ctx, instrumentation.VerdictDiscarded)
			continue
		}
		retained++
		p.metrics.RecordClassification(ctx, instrumentation.VerdictRetained)
		bodies = append(bodies, content.CleanBody(body))
	}
	logger.Info("messages classified",
		slog.Int("retained", retained),
		slog.Int("discarded", discarded))

	corpus := content.BuildCorpus(bodies)
	if corpus == "" {
		logger.Info("no editorial content to summarize", logging.Status(logging.StatusSkipped))
		return "", nil
	}

	summary, err := p.summarizer.Summarize(ctx, corpus, group.Settings.CustomPrompt)
	if err != nil {
		p.metrics.RecordSummarizerRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("summarizing group %q: %w", group.Title, err)
	}
	p.metrics.RecordSummarizerRequest(ctx, instrumentation.StatusSuccess)
	if summary == "" {
		logger.Info("summarizer found nothing relevant", logging.Status(logging.StatusSkipped))
		return "", nil
	}

	summary = p.resolveLinks(summary)

	if group.Settings.Notification != "" && p.sender != nil {
		subject := DigestSubject(group.Title, now)
		if err := p.sender.Send(ctx, group.Settings.Notification, subject, RenderHTML(group.Title, summary, now)); err != nil {
			return "", fmt.Errorf("dispatching digest for group %q: %w", group.Title, err)
		}
		p.metrics.RecordDigestSent(ctx)
	}

	group.Settings.SetLastRun(now)
	logger.Info("digest produced", logging.Status(logging.StatusSuccess))
	return summary, nil
}
