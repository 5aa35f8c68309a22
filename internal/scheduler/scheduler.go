package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/autobrief/autobrief/internal/instrumentation"
	"github.com/autobrief/autobrief/internal/logging"
	"github.com/autobrief/autobrief/internal/newsletter"
	"github.com/autobrief/autobrief/internal/schedule"
	"github.com/autobrief/autobrief/internal/store"
)

// GroupProcessor produces the digest for a single group. It returns the
// summary text, or an empty string when no digest was produced.
type GroupProcessor interface {
	Process(ctx context.Context, userEmail string, group *newsletter.Group, now time.Time) (string, error)
}

// Report summarizes a scheduler run.
type Report struct {
	Users     int
	GroupsDue int
	Digests   int
	Errors    int
}

// Scheduler walks user documents and runs due groups through the
// digest processor.
type Scheduler struct {
	store     store.UserStore
	gate      *schedule.Gate
	processor GroupProcessor
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	now       func() time.Time
	dryRun    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock used to decide which groups are due.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithMetrics attaches a metrics recorder to the scheduler.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithDryRun reports due groups without processing or saving them.
func WithDryRun(dryRun bool) Option {
	return func(s *Scheduler) {
		s.dryRun = dryRun
	}
}

// New creates a Scheduler. A nil gate falls back to the default
// evaluator, a nil logger to slog.Default.
func New(st store.UserStore, gate *schedule.Gate, processor GroupProcessor, logger *slog.Logger, opts ...Option) *Scheduler {
	if gate == nil {
		gate = schedule.NewGate(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:     st,
		gate:      gate,
		processor: processor,
		metrics:   &instrumentation.Metrics{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one scheduler pass over every user in the store. Each
// user is handled independently; a failing user is logged and counted
// but never aborts the pass. Only listing users can fail the run as a
// whole.
func (s *Scheduler) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	logger := logging.WithRun(logging.WithOperation(s.logger, "scheduler.run"), runID)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list users: %w", err)
	}

	logger.Info("scheduler run started", "users", len(users))

	var report Report
	for _, userEmail := range users {
		userReport := s.runUser(ctx, logger, userEmail)
		report.Users++
		report.GroupsDue += userReport.GroupsDue
		report.Digests += userReport.Digests
		report.Errors += userReport.Errors
	}

	logger.Info("scheduler run finished",
		"users", report.Users,
		"groups_due", report.GroupsDue,
		"digests", report.Digests,
		"errors", report.Errors,
	)

	return report, nil
}

// RunUser executes a scheduler pass for a single user.
func (s *Scheduler) RunUser(ctx context.Context, userEmail string) (Report, error) {
	runID := uuid.NewString()
	logger := logging.WithRun(logging.WithOperation(s.logger, "scheduler.run"), runID)

	report := s.runUser(ctx, logger, userEmail)
	report.Users = 1
	return report, nil
}

// runUser loads one user document, processes its due groups and saves
// the document back when any group advanced. The document is read and
// written within a single call so concurrent writers for the same user
// are never interleaved by this scheduler.
func (s *Scheduler) runUser(ctx context.Context, logger *slog.Logger, userEmail string) Report {
	userLogger := logger.With(logging.UserHash(userEmail), logging.Domain(userEmail))

	var report Report

	data, err := s.store.LoadGroups(ctx, userEmail)
	if err != nil {
		userLogger.Error("failed to load user groups", logging.Err(err))
		report.Errors++
		return report
	}

	now := s.now()
	changed := false
	for i := range data.Groups {
		grp := &data.Groups[i]
		groupLogger := userLogger.With(logging.Group(grp.Title))

		if !s.gate.ShouldRun(*grp, now) {
			s.metrics.RecordDigestRun(ctx, instrumentation.StatusSkipped, grp.Title, 0)
			continue
		}
		report.GroupsDue++

		if s.dryRun {
			groupLogger.Info("group due", logging.Status(logging.StatusSkipped), "dry_run", true)
			continue
		}

		start := time.Now()
		summary, err := s.processor.Process(ctx, userEmail, grp, now)
		if err != nil {
			groupLogger.Error("digest run failed", logging.Err(err))
			s.metrics.RecordDigestRun(ctx, instrumentation.StatusError, grp.Title, time.Since(start))
			report.Errors++
			continue
		}
		s.metrics.RecordDigestRun(ctx, instrumentation.StatusSuccess, grp.Title, time.Since(start))

		if summary == "" {
			groupLogger.Info("no digest produced", logging.Status(logging.StatusSkipped))
			continue
		}

		groupLogger.Info("digest produced", logging.Status(logging.StatusSuccess))
		report.Digests++
		changed = true
	}

	if changed {
		if err := s.store.SaveGroups(ctx, userEmail, data); err != nil {
			userLogger.Error("failed to save user groups", logging.Err(err))
			report.Errors++
		}
	}

	return report
}

// ForceGroup runs a single group immediately, bypassing the schedule
// gate. The group must exist in the user document; the document is
// saved back when the run produced a digest.
func (s *Scheduler) ForceGroup(ctx context.Context, userEmail, groupTitle string) (string, error) {
	runID := uuid.NewString()
	logger := logging.WithRun(logging.WithOperation(s.logger, "scheduler.force"), runID).With(
		logging.UserHash(userEmail),
		logging.Domain(userEmail),
		logging.Group(groupTitle),
	)

	data, err := s.store.LoadGroups(ctx, userEmail)
	if err != nil {
		return "", fmt.Errorf("failed to load groups for user: %w", err)
	}

	grp := data.FindGroup(groupTitle)
	if grp == nil {
		return "", fmt.Errorf("group %q not found", groupTitle)
	}

	start := time.Now()
	summary, err := s.processor.Process(ctx, userEmail, grp, s.now())
	if err != nil {
		s.metrics.RecordDigestRun(ctx, instrumentation.StatusError, groupTitle, time.Since(start))
		return "", fmt.Errorf("digest run failed: %w", err)
	}
	s.metrics.RecordDigestRun(ctx, instrumentation.StatusSuccess, groupTitle, time.Since(start))

	if summary == "" {
		logger.Info("no digest produced", logging.Status(logging.StatusSkipped))
		return "", nil
	}

	if err := s.store.SaveGroups(ctx, userEmail, data); err != nil {
		return "", fmt.Errorf("failed to save groups for user: %w", err)
	}

	logger.Info("digest produced", logging.Status(logging.StatusSuccess))
	return summary, nil
}
