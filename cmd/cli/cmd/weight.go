package cmd

import (
	"github.com/spf13/cobra"
)

var weightCmd = &cobra.Command{
	Use:   "weight <tracking-number>",
	Short: "Show the weight measured by the carrier",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeight,
}

func init() {
	rootCmd.AddCommand(weightCmd)
}

func runWeight(cmd *cobra.Command, args []string) error {
	number, err := normalizeTrackingNumber(args[0])
	if err != nil {
		return err
	}

	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	weight, err := client.ParcelWeight(cmd.Context(), number)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintWeight(number, weight)
}
