package cmd

import (
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the business tracking account",
	Long: `Print the credentials the portal uses for the carrier's business
tracking site. The password is only shown with --format json.`,
	RunE: runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	account, err := client.BusinessAccount(cmd.Context())
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintBusinessAccount(account)
}
