package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cliapi "paketomat/internal/cli"
	"paketomat/internal/label"
	"paketomat/internal/portal"
)

var parcelCmd = &cobra.Command{
	Use:   "parcel",
	Short: "Print parcel labels",
}

var parcelCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"print"},
	Short:   "Print a label for one parcel",
	Long: `Print a parcel label and save the PDF. A recipient without
--customer-number is registered first, then the route is resolved and
the label is printed. With --png a thermal printer image is written too.`,
	RunE: runParcelCreate,
}

var (
	parcelSender      int
	parcelWeight      string
	parcelDate        string
	parcelReferences  []string
	parcelInvoices    []string
	parcelOut         string
	parcelPNG         bool
	parcelInteractive bool
	parcelRecipient   recipientFlags
)

func init() {
	rootCmd.AddCommand(parcelCmd)
	parcelCmd.AddCommand(parcelCreateCmd)

	parcelCreateCmd.Flags().IntVarP(&parcelSender, "sender", "s", 0, "Sender id (asked interactively when omitted)")
	parcelCreateCmd.Flags().StringVarP(&parcelWeight, "weight", "w", "", "Parcel weight in kg (required)")
	parcelCreateCmd.Flags().StringVar(&parcelDate, "date", "", "Ship date as YYYY-MM-DD (default: today)")
	parcelCreateCmd.Flags().StringSliceVar(&parcelReferences, "ref", nil, "Delivery note reference number (repeatable)")
	parcelCreateCmd.Flags().StringSliceVar(&parcelInvoices, "invoice", nil, "Invoice number (repeatable)")
	parcelCreateCmd.Flags().StringVarP(&parcelOut, "out", "o", "", "Label PDF path (default: label-<date>-<customer>.pdf)")
	parcelCreateCmd.Flags().BoolVar(&parcelPNG, "png", false, "Also write a thermal printer PNG next to the PDF")
	parcelCreateCmd.Flags().BoolVarP(&parcelInteractive, "interactive", "i", false, "Pick the sender from a table")
	parcelRecipient.bind(parcelCreateCmd)

	parcelCreateCmd.RegisterFlagCompletionFunc("date", completeShipDate(time.Now))
	parcelCreateCmd.MarkFlagFilename("out", "pdf")

	parcelCreateCmd.MarkFlagRequired("weight")
}

func runParcelCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	weight, err := parseWeight(parcelWeight)
	if err != nil {
		return err
	}
	date, err := parseShipDate(parcelDate, time.Now())
	if err != nil {
		return err
	}
	recipient, err := parcelRecipient.recipient()
	if err != nil {
		return err
	}

	cfg, formatter, client, err := initializeClient(ctx)
	if err != nil {
		return err
	}

	var rasterizer *label.Ghostscript
	if parcelPNG {
		rasterizer, err = label.NewGhostscript(cfg.LabelOptions(), newLogger(cfg))
		if err != nil {
			formatter.PrintError(err)
			return err
		}
	}

	senderID := parcelSender
	if senderID == 0 {
		if !shouldUseInteractiveMode(cfg.OutputFormat, quiet, parcelInteractive, stdinIsTerminal()) {
			return fmt.Errorf("--sender is required when not running interactively")
		}
		senders, err := client.Senders(ctx)
		if err != nil {
			formatter.PrintError(err)
			return err
		}
		sender, err := pickSender(senders)
		if err != nil {
			return err
		}
		senderID = sender.ID
	}

	req := portal.ParcelRequest{
		Date:             date,
		SenderID:         senderID,
		Recipient:        recipient,
		Weight:           weight,
		ReferenceNumbers: parcelReferences,
		InvoiceNumbers:   parcelInvoices,
	}

	pdf, err := cliapi.Spin("Printing label", noColor || quiet, func() ([]byte, error) {
		return printLabel(ctx, client, &req)
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}
	if recipient.CustomerID == 0 {
		formatter.PrintInfo(fmt.Sprintf("Registered recipient as customer %d", req.Recipient.CustomerID))
	}

	pdfPath, pngPath := labelPaths(parcelOut, req.Recipient.CustomerID, date)
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write label: %w", err)
	}
	files := []string{pdfPath}

	if rasterizer != nil {
		image, err := rasterizer.Rasterize(ctx, pdf)
		if err != nil {
			formatter.PrintError(err)
			return err
		}
		if err := os.WriteFile(pngPath, image, 0o644); err != nil {
			return fmt.Errorf("failed to write label image: %w", err)
		}
		files = append(files, pngPath)
	}

	return formatter.PrintFiles(files...)
}

// printLabel registers the recipient when needed, resolves the route and
// prints the label
func printLabel(ctx context.Context, client *portal.Client, req *portal.ParcelRequest) ([]byte, error) {
	if req.Recipient.CustomerID == 0 {
		if err := client.CreateRecipient(ctx, &req.Recipient); err != nil {
			return nil, err
		}
	}

	route, err := client.FindRoute(ctx, req.SenderID, req.Recipient, req.Weight)
	if err != nil {
		return nil, err
	}
	req.Route = route

	return client.CreateParcel(ctx, *req)
}
