package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobrief/autobrief/internal/config"
	"github.com/autobrief/autobrief/internal/digest"
	"github.com/autobrief/autobrief/internal/gmail"
	"github.com/autobrief/autobrief/internal/instrumentation"
	"github.com/autobrief/autobrief/internal/newsletter"
	"github.com/autobrief/autobrief/internal/schedule"
	"github.com/autobrief/autobrief/internal/scheduler"
	"github.com/autobrief/autobrief/internal/store"
	"github.com/autobrief/autobrief/internal/summarize"
)

func newRunCmd() *cobra.Command {
	var (
		debugMode bool
		nowFlag   string
		userEmail string
		dryRun    bool
		metrics   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one scheduler pass over all users",
		Long: `Walk every user document in the store, check which newsletter groups
are due and produce their digests. Due groups are searched in Gmail,
promotional messages are dropped, the remaining content is summarized
and the digest is mailed to the group's notification address.

Intended to be triggered periodically, e.g. hourly from cron. The
schedule gate keeps a group from firing twice in the same window.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debugMode)

			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version
			if metrics {
				instrConfig.Enabled = true
			}

			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to create instrumentation provider: %w", err)
			}
			defer func() {
				if err := provider.Shutdown(ctx); err != nil {
					slog.Warn("instrumentation shutdown failed", "error", err)
				}
			}()

			opts := []scheduler.Option{
				scheduler.WithMetrics(provider.Metrics()),
				scheduler.WithDryRun(dryRun),
			}
			if nowFlag != "" {
				now, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("invalid --now value: %w", err)
				}
				opts = append(opts, scheduler.WithClock(func() time.Time { return now }))
			}

			sched := buildScheduler(cfg, provider.Metrics(), opts...)

			var report scheduler.Report
			if userEmail != "" {
				report, err = sched.RunUser(ctx, userEmail)
			} else {
				report, err = sched.Run(ctx)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%d users, %d groups due, %d digests produced, %d errors\n",
				report.Users, report.GroupsDue, report.Digests, report.Errors)
			if report.Errors > 0 {
				return fmt.Errorf("scheduler run finished with %d errors", report.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Override the schedule reference time (RFC 3339, e.g. 2026-08-31T10:00:00Z)")
	cmd.Flags().StringVar(&userEmail, "user", "", "Run only this user's groups")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report due groups without producing or sending digests")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Emit OpenTelemetry metrics (stdout exporter). Can also use INSTRUMENTATION_ENABLED env var.")
	return cmd
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func buildStore(cfg *config.Config) store.UserStore {
	if cfg.Store == config.StoreDir {
		return store.NewDirStore(cfg.DataDir)
	}
	return store.NewGistStore(cfg.GistID, cfg.GitHubToken)
}

func buildSummarizer(cfg *config.Config) *summarize.Client {
	var opts []summarize.Option
	if cfg.OpenAIModel != "" {
		opts = append(opts, summarize.WithModel(cfg.OpenAIModel))
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, summarize.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return summarize.NewClient(cfg.OpenAIAPIKey, opts...)
}

func buildScheduler(cfg *config.Config, metrics *instrumentation.Metrics, opts ...scheduler.Option) *scheduler.Scheduler {
	logger := slog.Default()
	evaluator := schedule.NewEvaluator(cfg.Location, logger)
	gate := schedule.NewGate(evaluator, logger)
	proc := newAccountProcessor(buildSummarizer(cfg), logger, metrics)
	return scheduler.New(buildStore(cfg), gate, proc, logger, opts...)
}

// accountProcessor builds one digest processor per user on first use.
// The Gmail client is bound to the user's own credentials, so it both
// searches the user's mailbox and sends the digest from their address.
type accountProcessor struct {
	summarizer *summarize.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	procs      map[string]*digest.Processor
}

func newAccountProcessor(summarizer *summarize.Client, logger *slog.Logger, metrics *instrumentation.Metrics) *accountProcessor {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &accountProcessor{
		summarizer: summarizer,
		logger:     logger,
		metrics:    metrics,
		procs:      map[string]*digest.Processor{},
	}
}

func (a *accountProcessor) Process(ctx context.Context, userEmail string, group *newsletter.Group, now time.Time) (string, error) {
	proc, ok := a.procs[userEmail]
	if !ok {
		client, err := gmail.NewClientForAccount(ctx, userEmail, gmail.WithMetrics(a.metrics))
		if err != nil {
			return "", fmt.Errorf("failed to create Gmail client for account %s: %w", userEmail, err)
		}
		proc = digest.NewProcessor(client, a.summarizer, client, a.logger, digest.WithMetrics(a.metrics))
		a.procs[userEmail] = proc
	}
	return proc.Process(ctx, userEmail, group, now)
}
