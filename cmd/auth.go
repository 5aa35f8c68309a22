package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobrief/autobrief/internal/google"
)

func newAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth <account>",
		Short: "Authorize a Google account for Gmail access",
		Long: `Run the OAuth consent flow for a Google account. Without --code the
consent URL is printed; open it, grant access and re-run the command
with the code from the consent screen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]

			if code == "" {
				if google.HasTokenForAccount(account) {
					fmt.Printf("Account %s is already authorized\n", account)
					return nil
				}
				fmt.Println("Open the following URL, grant access, then re-run with --code:")
				fmt.Println(google.GetAuthURL())
				return nil
			}

			if err := google.SaveToken(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Token saved for account %s\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent screen")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("autobrief version %s\n", version)
		},
	}
}
