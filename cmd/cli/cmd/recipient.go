package cmd

import (
	"github.com/spf13/cobra"
)

var recipientCmd = &cobra.Command{
	Use:   "recipient",
	Short: "Manage recipients",
}

var recipientCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"add"},
	Short:   "Register a new recipient",
	Long: `Register a new recipient in the portal's address book. Without
--customer-number the portal's next free customer number is used.`,
	RunE: runRecipientCreate,
}

var recipientCreate recipientFlags

func init() {
	rootCmd.AddCommand(recipientCmd)
	recipientCmd.AddCommand(recipientCreateCmd)

	recipientCreate.bind(recipientCreateCmd)
}

func runRecipientCreate(cmd *cobra.Command, args []string) error {
	recipient, err := recipientCreate.recipient()
	if err != nil {
		return err
	}

	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	if err := client.CreateRecipient(cmd.Context(), &recipient); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Recipient created successfully")
	return formatter.PrintRecipient(&recipient)
}
