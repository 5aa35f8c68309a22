package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/autobrief/autobrief/internal/instrumentation"
	"github.com/autobrief/autobrief/internal/newsletter"
)

type fakeMessage struct {
	subject string
	body    string
	err     error
}

type fakeMailbox struct {
	searchErr error
	gotQuery  string
	messages  map[string]fakeMessage
	order     []string
}

func (f *fakeMailbox) Search(ctx context.Context, query string) ([]string, error) {
	f.gotQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.order, nil
}

func (f *fakeMailbox) Fetch(ctx context.Context, id string) (string, string, error) {
	m, ok := f.messages[id]
	if !ok {
		return "", "", errors.New("no such message")
	}
	return m.subject, m.body, m.err
}

type fakeSummarizer struct {
	summary   string
	err       error
	gotText   string
	gotPrompt string
	calls     int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text, customPrompt string) (string, error) {
	f.calls++
	f.gotText = text
	f.gotPrompt = customPrompt
	return f.summary, f.err
}

type fakeSender struct {
	err        error
	calls      int
	gotTo      string
	gotSubject string
	gotBody    string
}

func (f *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.calls++
	f.gotTo = to
	f.gotSubject = subject
	f.gotBody = htmlBody
	return f.err
}

func testGroup() *newsletter.Group {
	return &newsletter.Group{
		Title:  "AI Weekly",
		Emails: []string{"a@x.com"},
		Settings: newsletter.ScheduleConfig{
			Frequency:    newsletter.FrequencyDaily,
			ScheduleTime: "10:00",
			AnalyzeDays:  7,
			Notification: "u@y.com",
			Enabled:      true,
		},
	}
}

func noResolve(p *Processor) {
	p.resolveLinks = func(s string) string { return s }
}

var testNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func TestProcessDispatchesDigest(t *testing.T) {
	mailbox := &fakeMailbox{
		order: []string{"m1", "m2"},
		messages: map[string]fakeMessage{
			"m1": {subject: "50% OFF - Limited offer!", body: "buy things"},
			"m2": {subject: "This week in AI research", body: "<p>New models dropped.</p>"},
		},
	}
	summarizer := &fakeSummarizer{summary: "Models dropped this week."}
	sender := &fakeSender{}
	p := NewProcessor(mailbox, summarizer, sender, nil)
	noResolve(p)

	group := testGroup()
	summary, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Models dropped this week.", summary)

	// Promotional message was discarded before summarization
	assert.NotContains(t, summarizer.gotText, "buy things")
	assert.Contains(t, summarizer.gotText, "New models dropped.")

	// Dispatched exactly once to the configured address
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "u@y.com", sender.gotTo)
	assert.Contains(t, sender.gotSubject, "AI Weekly")

	// LastRun advanced to now
	lastRun, err := group.Settings.LastRunTime()
	require.NoError(t, err)
	assert.True(t, lastRun.Equal(testNow))
}

func TestProcessQueryBuilt(t *testing.T) {
	mailbox := &fakeMailbox{}
	p := NewProcessor(mailbox, &fakeSummarizer{}, &fakeSender{}, nil)
	noResolve(p)

	group := testGroup()
	group.Emails = []string{"a@x.com", "b@y.com"}
	_, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)

	assert.Equal(t, "after:2026/08/24 (from:a@x.com OR from:b@y.com)", mailbox.gotQuery)
}

func TestProcessNoEditorialContent(t *testing.T) {
	mailbox := &fakeMailbox{
		order: []string{"m1"},
		messages: map[string]fakeMessage{
			"m1": {subject: "Flash sale ends tonight", body: "deals"},
		},
	}
	summarizer := &fakeSummarizer{}
	sender := &fakeSender{}
	p := NewProcessor(mailbox, summarizer, sender, nil)
	noResolve(p)

	group := testGroup()
	summary, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Zero(t, summarizer.calls, "summarizer must not be called with empty content")
	assert.Zero(t, sender.calls)
	assert.Empty(t, group.Settings.LastRun, "LastRun must not advance on an empty run")
}

func TestProcessNoMessagesFound(t *testing.T) {
	p := NewProcessor(&fakeMailbox{}, &fakeSummarizer{}, &fakeSender{}, nil)
	noResolve(p)

	group := testGroup()
	summary, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Empty(t, group.Settings.LastRun)
}

func TestProcessSkipsUnreadableMessages(t *testing.T) {
	mailbox := &fakeMailbox{
		order: []string{"broken", "m2"},
		messages: map[string]fakeMessage{
			"broken": {err: errors.New("fetch failed")},
			"m2":     {subject: "Good issue", body: "readable content"},
		},
	}
	summarizer := &fakeSummarizer{summary: "Summary."}
	p := NewProcessor(mailbox, summarizer, &fakeSender{}, nil)
	noResolve(p)

	summary, err := p.Process(context.Background(), "john@x.com", testGroup(), testNow)
	require.NoError(t, err)
	assert.Equal(t, "Summary.", summary)
	assert.Contains(t, summarizer.gotText, "readable content")
}

func TestProcessSearchFailure(t *testing.T) {
	mailbox := &fakeMailbox{searchErr: errors.New("mailbox down")}
	p := NewProcessor(mailbox, &fakeSummarizer{}, &fakeSender{}, nil)
	noResolve(p)

	_, err := p.Process(context.Background(), "john@x.com", testGroup(), testNow)
	assert.Error(t, err)
}

func TestProcessSummarizerFailureAbortsRun(t *testing.T) {
	mailbox := &fakeMailbox{
		order:    []string{"m1"},
		messages: map[string]fakeMessage{"m1": {subject: "Issue 12", body: "content"}},
	}
	sender := &fakeSender{}
	p := NewProcessor(mailbox, &fakeSummarizer{err: errors.New("model overloaded")}, sender, nil)
	noResolve(p)

	group := testGroup()
	_, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.Error(t, err)
	assert.Zero(t, sender.calls)
	assert.Empty(t, group.Settings.LastRun, "failed run must stay eligible for retry")
}

func TestProcessSendFailureKeepsLastRun(t *testing.T) {
	mailbox := &fakeMailbox{
		order:    []string{"m1"},
		messages: map[string]fakeMessage{"m1": {subject: "Issue 12", body: "content"}},
	}
	p := NewProcessor(mailbox, &fakeSummarizer{summary: "S."}, &fakeSender{err: errors.New("send failed")}, nil)
	noResolve(p)

	group := testGroup()
	_, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.Error(t, err)
	assert.Empty(t, group.Settings.LastRun)
}

func TestProcessWithoutNotificationAddress(t *testing.T) {
	mailbox := &fakeMailbox{
		order:    []string{"m1"},
		messages: map[string]fakeMessage{"m1": {subject: "Issue 12", body: "content"}},
	}
	sender := &fakeSender{}
	p := NewProcessor(mailbox, &fakeSummarizer{summary: "S."}, sender, nil)
	noResolve(p)

	group := testGroup()
	group.Settings.Notification = ""
	summary, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)
	assert.Equal(t, "S.", summary)
	assert.Zero(t, sender.calls, "absent notification address suppresses sending")
	assert.NotEmpty(t, group.Settings.LastRun, "a produced digest still counts as a run")
}

func TestProcessPassesCustomPrompt(t *testing.T) {
	mailbox := &fakeMailbox{
		order:    []string{"m1"},
		messages: map[string]fakeMessage{"m1": {subject: "Issue 12", body: "content"}},
	}
	summarizer := &fakeSummarizer{summary: "S."}
	p := NewProcessor(mailbox, summarizer, &fakeSender{}, nil)
	noResolve(p)

	group := testGroup()
	group.Settings.CustomPrompt = "only robotics news"
	_, err := p.Process(context.Background(), "john@x.com", group, testNow)
	require.NoError(t, err)
	assert.Equal(t, "only robotics news", summarizer.gotPrompt)
}

func TestDigestSubject(t *testing.T) {
	subject := DigestSubject("AI Weekly", testNow)
	assert.Equal(t, "AutoBrief · AI Weekly · 31/08/2026", subject)
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML("AI <Weekly>", "First paragraph.\n\nSecond one.", testNow)

	assert.True(t, strings.HasPrefix(out, "<html>"))
	assert.Contains(t, out, "AI &lt;Weekly&gt;")
	assert.Contains(t, out, "<p>First paragraph.</p>")
	assert.Contains(t, out, "<p>Second one.</p>")
}

func TestProcessRecordsPipelineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := instrumentation.NewMetrics(meterProvider.Meter("autobrief-test"), false)
	require.NoError(t, err)

	mailbox := &fakeMailbox{
		order: []string{"m1", "m2", "m3"},
		messages: map[string]fakeMessage{
			"m1": {subject: "50% OFF - Limited offer!", body: "buy things"},
			"m2": {subject: "This week in AI research", body: "New models dropped."},
			"m3": {subject: "Papers of the month", body: "Three new benchmarks."},
		},
	}
	sender := &fakeSender{}
	p := NewProcessor(mailbox, &fakeSummarizer{summary: "S."}, sender, nil, WithMetrics(metrics))
	noResolve(p)

	_, err = p.Process(context.Background(), "john@x.com", testGroup(), testNow)
	require.NoError(t, err)
	require.Equal(t, 1, sender.calls)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), sums["messages_classified_total"])
	assert.Equal(t, int64(1), sums["summarizer_requests_total"])
	assert.Equal(t, int64(1), sums["digests_sent_total"])
}

func TestProcessRecordsSummarizerError(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := instrumentation.NewMetrics(meterProvider.Meter("autobrief-test"), false)
	require.NoError(t, err)

	mailbox := &fakeMailbox{
		order:    []string{"m1"},
		messages: map[string]fakeMessage{"m1": {subject: "Issue 12", body: "content"}},
	}
	p := NewProcessor(mailbox, &fakeSummarizer{err: errors.New("model overloaded")}, &fakeSender{}, nil, WithMetrics(metrics))
	noResolve(p)

	_, err = p.Process(context.Background(), "john@x.com", testGroup(), testNow)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "summarizer_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				status, ok := dp.Attributes.Value("status")
				require.True(t, ok)
				assert.Equal(t, instrumentation.StatusError, status.AsString())
				assert.Equal(t, int64(1), dp.Value)
				found = true
			}
		}
	}
	assert.True(t, found, "expected a summarizer_requests_total data point")
}
