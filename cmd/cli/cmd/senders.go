package cmd

import (
	"github.com/spf13/cobra"
)

var sendersCmd = &cobra.Command{
	Use:     "senders",
	Aliases: []string{"ls"},
	Short:   "List sender identities",
	Long:    `List the sender identities registered for the portal account.`,
	RunE:    runSenders,
}

func init() {
	rootCmd.AddCommand(sendersCmd)
}

func runSenders(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	senders, err := client.Senders(cmd.Context())
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintSenders(senders)
}
