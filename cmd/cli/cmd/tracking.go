package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var trackingCmd = &cobra.Command{
	Use:   "tracking <reference-number>",
	Short: "Look up the tracking number of a parcel",
	Long:  `Search the parcel archive for a reference number and print the carrier's tracking number.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTracking,
}

func init() {
	rootCmd.AddCommand(trackingCmd)
}

func runTracking(cmd *cobra.Command, args []string) error {
	reference := strings.TrimSpace(args[0])
	if reference == "" {
		return fmt.Errorf("reference number cannot be empty")
	}

	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	number, err := client.TrackingNumber(cmd.Context(), reference)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintTrackingNumber(reference, number)
}
