package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Resolve the route for a shipment",
	Long: `Ask the portal's routing engine for the path from a sender to an
existing recipient for the given weight.`,
	RunE: runRoute,
}

var (
	routeSender    int
	routeWeight    string
	routeRecipient recipientFlags
)

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().IntVarP(&routeSender, "sender", "s", 0, "Sender id (required)")
	routeCmd.Flags().StringVarP(&routeWeight, "weight", "w", "", "Parcel weight in kg (required)")
	routeRecipient.bind(routeCmd)

	routeCmd.MarkFlagRequired("sender")
	routeCmd.MarkFlagRequired("weight")
	routeCmd.MarkFlagRequired("customer-number")
}

func runRoute(cmd *cobra.Command, args []string) error {
	weight, err := parseWeight(routeWeight)
	if err != nil {
		return err
	}
	recipient, err := routeRecipient.recipient()
	if err != nil {
		return err
	}
	if recipient.CustomerID == 0 {
		return fmt.Errorf("--customer-number is required to resolve a route")
	}

	_, formatter, client, err := initializeClient(cmd.Context())
	if err != nil {
		return err
	}

	route, err := client.FindRoute(cmd.Context(), routeSender, recipient, weight)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintRoute(route)
}
