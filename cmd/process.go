package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autobrief/autobrief/internal/config"
)

func newProcessCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "process <user> <group>",
		Short: "Force a digest run for a single group",
		Long: `Run one group's digest immediately, bypassing the schedule gate. The
group runs even when it is disabled or recently produced a digest.
The produced summary is printed to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(debugMode)

			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sched := buildScheduler(cfg, nil)
			summary, err := sched.ForceGroup(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if summary == "" {
				fmt.Println("No digest produced: no editorial content in the window")
				return nil
			}
			fmt.Println(summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}
