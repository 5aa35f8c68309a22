package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobrief/autobrief/internal/config"
	"github.com/autobrief/autobrief/internal/newsletter"
	"github.com/autobrief/autobrief/internal/store"
)

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage a user's newsletter groups",
		Long: `Inspect and edit the newsletter groups stored for a user. Groups hold
the sender addresses to collect and the schedule of the digest run.`,
	}

	cmd.AddCommand(newGroupsListCmd())
	cmd.AddCommand(newGroupsAddCmd())
	cmd.AddCommand(newGroupsRemoveCmd())
	cmd.AddCommand(newGroupsEnableCmd(true))
	cmd.AddCommand(newGroupsEnableCmd(false))
	cmd.AddCommand(newGroupsAddSenderCmd())
	cmd.AddCommand(newGroupsRemoveSenderCmd())
	return cmd
}

// groupStore loads the configured store backend for group commands.
func groupStore() (store.UserStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildStore(cfg), nil
}

// loadOrInitUserData returns the user's document, or a fresh empty one
// when the user has no document yet.
func loadOrInitUserData(ctx context.Context, st store.UserStore, userEmail string) (*newsletter.UserData, error) {
	data, err := st.LoadGroups(ctx, userEmail)
	if errors.Is(err, store.ErrUserNotFound) {
		return &newsletter.UserData{SchemaVersion: newsletter.SchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load groups for user: %w", err)
	}
	return data, nil
}

func newGroupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <user>",
		Short: "List a user's newsletter groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := groupStore()
			if err != nil {
				return err
			}

			data, err := st.LoadGroups(cmd.Context(), args[0])
			if errors.Is(err, store.ErrUserNotFound) {
				fmt.Println("No groups configured")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load groups for user: %w", err)
			}

			if len(data.Groups) == 0 {
				fmt.Println("No groups configured")
				return nil
			}
			for _, g := range data.Groups {
				state := "enabled"
				if !g.Settings.Enabled {
					state = "disabled"
				}
				schedule := string(g.Settings.Frequency)
				if g.Settings.Frequency == newsletter.FrequencyWeekly && g.Settings.ScheduleDay != "" {
					schedule += " " + g.Settings.ScheduleDay
				}
				if g.Settings.ScheduleTime != "" {
					schedule += " at " + g.Settings.ScheduleTime
				}
				fmt.Printf("%s (%s, %s)\n", g.Title, state, schedule)
				fmt.Printf("  senders: %s\n", strings.Join(g.Emails, ", "))
				if g.Settings.Notification != "" {
					fmt.Printf("  notify: %s\n", g.Settings.Notification)
				}
				if g.Settings.LastRun != "" {
					fmt.Printf("  last run: %s\n", g.Settings.LastRun)
				}
			}
			return nil
		},
	}
}

func newGroupsAddCmd() *cobra.Command {
	var (
		frequency    string
		scheduleDay  string
		scheduleTime string
		analyzeDays  int
		notification string
		customPrompt string
	)

	cmd := &cobra.Command{
		Use:   "add <user> <title> <sender>...",
		Short: "Add a newsletter group",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := newsletter.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			if freq == newsletter.FrequencyWeekly {
				if _, err := newsletter.ParseWeekday(scheduleDay); err != nil {
					return err
				}
			}

			st, err := groupStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userEmail := args[0]
			data, err := loadOrInitUserData(ctx, st, userEmail)
			if err != nil {
				return err
			}

			grp := newsletter.Group{
				Title:  args[1],
				Emails: args[2:],
				Settings: newsletter.ScheduleConfig{
					Frequency:    freq,
					ScheduleDay:  scheduleDay,
					ScheduleTime: scheduleTime,
					AnalyzeDays:  analyzeDays,
					Notification: notification,
					CustomPrompt: customPrompt,
					Enabled:      true,
				},
			}
			grp.Settings.ClampAnalyzeDays()
			if err := data.AddGroup(grp); err != nil {
				return err
			}

			if err := st.SaveGroups(ctx, userEmail, data); err != nil {
				return fmt.Errorf("failed to save groups for user: %w", err)
			}
			fmt.Printf("Added group %q\n", grp.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&frequency, "frequency", "weekly", "Digest frequency: daily or weekly")
	cmd.Flags().StringVar(&scheduleDay, "day", "monday", "Weekday of the weekly digest")
	cmd.Flags().StringVar(&scheduleTime, "time", "09:00", "Time of day of the digest (HH:MM)")
	cmd.Flags().IntVar(&analyzeDays, "days", newsletter.DefaultAnalyzeDays, "How many days of mail to collect")
	cmd.Flags().StringVar(&notification, "notify", "", "Address the digest is mailed to (empty: no email, summary only)")
	cmd.Flags().StringVar(&customPrompt, "prompt", "", "Extra instructions for the summarizer")
	return cmd
}

func newGroupsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user> <title>",
		Short: "Remove a newsletter group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := groupStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userEmail, title := args[0], args[1]
			data, err := st.LoadGroups(ctx, userEmail)
			if err != nil {
				return fmt.Errorf("failed to load groups for user: %w", err)
			}

			if !data.RemoveGroup(title) {
				return fmt.Errorf("group %q not found", title)
			}
			if err := st.SaveGroups(ctx, userEmail, data); err != nil {
				return fmt.Errorf("failed to save groups for user: %w", err)
			}
			fmt.Printf("Removed group %q\n", title)
			return nil
		},
	}
}

func newGroupsEnableCmd(enable bool) *cobra.Command {
	use, short := "enable", "Enable a newsletter group's schedule"
	if !enable {
		use, short = "disable", "Disable a newsletter group's schedule"
	}

	return &cobra.Command{
		Use:   use + " <user> <title>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := groupStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userEmail, title := args[0], args[1]
			data, err := st.LoadGroups(ctx, userEmail)
			if err != nil {
				return fmt.Errorf("failed to load groups for user: %w", err)
			}

			grp := data.FindGroup(title)
			if grp == nil {
				return fmt.Errorf("group %q not found", title)
			}
			grp.Settings.Enabled = enable

			if err := st.SaveGroups(ctx, userEmail, data); err != nil {
				return fmt.Errorf("failed to save groups for user: %w", err)
			}
			fmt.Printf("Group %q %sd\n", title, use)
			return nil
		},
	}
}

func newGroupsAddSenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-sender <user> <title> <sender>",
		Short: "Add a sender address to a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := groupStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userEmail, title, sender := args[0], args[1], args[2]
			data, err := st.LoadGroups(ctx, userEmail)
			if err != nil {
				return fmt.Errorf("failed to load groups for user: %w", err)
			}

			grp := data.FindGroup(title)
			if grp == nil {
				return fmt.Errorf("group %q not found", title)
			}
			if !grp.AddSender(sender) {
				fmt.Printf("Sender %s already in group %q\n", sender, title)
				return nil
			}

			if err := st.SaveGroups(ctx, userEmail, data); err != nil {
				return fmt.Errorf("failed to save groups for user: %w", err)
			}
			fmt.Printf("Added sender %s to group %q\n", sender, title)
			return nil
		},
	}
}

func newGroupsRemoveSenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-sender <user> <title> <sender>",
		Short: "Remove a sender address from a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := groupStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userEmail, title, sender := args[0], args[1], args[2]
			data, err := st.LoadGroups(ctx, userEmail)
			if err != nil {
				return fmt.Errorf("failed to load groups for user: %w", err)
			}

			grp := data.FindGroup(title)
			if grp == nil {
				return fmt.Errorf("group %q not found", title)
			}
			if !grp.RemoveSender(sender) {
				return fmt.Errorf("sender %s not in group %q", sender, title)
			}

			if err := st.SaveGroups(ctx, userEmail, data); err != nil {
				return fmt.Errorf("failed to save groups for user: %w", err)
			}
			fmt.Printf("Removed sender %s from group %q\n", sender, title)
			return nil
		},
	}
}
