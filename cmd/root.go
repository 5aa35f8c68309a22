package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the autobrief application
var rootCmd = &cobra.Command{
	Use:   "autobrief",
	Short: "Turns newsletter floods into scheduled email digests",
	Long: `autobrief collects newsletter emails from Gmail, drops promotional
messages, condenses the rest into a digest with an LLM and mails the
digest back to you on the schedule you configured per group.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "autobrief version %s\n" .Version}}`)

	// If no subcommand is provided, run the scheduler pass by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
