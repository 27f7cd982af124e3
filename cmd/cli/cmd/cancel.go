package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:     "cancel <tracking-number>",
	Aliases: []string{"storno"},
	Short:   "Cancel a parcel",
	Long:    `Cancel a printed parcel that has not been handed to the carrier yet.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	number, err := normalizeTrackingNumber(args[0])
	if err != nil {
		return err
	}

	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	if err := client.CancelParcel(cmd.Context(), number); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("Parcel %s cancelled", number))
	return nil
}
