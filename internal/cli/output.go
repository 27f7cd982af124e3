package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"paketomat/internal/portal"
)

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format string
	quiet  bool
	out    io.Writer
	errOut io.Writer
}

// NewOutputFormatter creates a formatter writing to stdout and stderr
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return NewOutputFormatterTo(os.Stdout, os.Stderr, format, quiet)
}

// NewOutputFormatterTo creates a formatter with explicit writers
func NewOutputFormatterTo(out, errOut io.Writer, format string, quiet bool) *OutputFormatter {
	return &OutputFormatter{
		format: format,
		quiet:  quiet,
		out:    out,
		errOut: errOut,
	}
}

// PrintSenders prints the sender identities of the account
func (f *OutputFormatter) PrintSenders(senders []portal.Sender) error {
	if f.quiet {
		for _, s := range senders {
			fmt.Fprintf(f.out, "%d\n", s.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		if senders == nil {
			senders = []portal.Sender{}
		}
		return f.encodeJSON(senders)
	case "table":
		return f.printSendersTable(senders)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintRecipient prints a stored recipient
func (f *OutputFormatter) PrintRecipient(r *portal.Recipient) error {
	if f.quiet {
		fmt.Fprintf(f.out, "%d\n", r.CustomerID)
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(r)
	case "table":
		fmt.Fprintf(f.out, "Customer Number: %d\n", r.CustomerID)
		fmt.Fprintf(f.out, "Name: %s\n", r.Name)
		if r.Additional != "" {
			fmt.Fprintf(f.out, "Additional: %s\n", r.Additional)
		}
		if r.ContactPerson != "" {
			fmt.Fprintf(f.out, "Contact: %s\n", r.ContactPerson)
		}
		fmt.Fprintf(f.out, "Address: %s, %s-%s %s\n", r.Street, r.CountryCode, r.PostalCode, r.City)
		if r.Phone != "" {
			fmt.Fprintf(f.out, "Phone: %s\n", r.Phone)
		}
		if r.Email != "" {
			fmt.Fprintf(f.out, "Email: %s\n", r.Email)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintRoute prints a resolved route
func (f *OutputFormatter) PrintRoute(route portal.Route) error {
	if f.quiet {
		fmt.Fprintln(f.out, route.Code)
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(route)
	case "table":
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintf(w, "Code:\t%s\n", route.Code)
		fmt.Fprintf(w, "Router:\t%s\n", route.Router)
		fmt.Fprintf(w, "Service:\t%s (%s)\n", route.ServiceText, route.Service)
		fmt.Fprintf(w, "Outbound Depot:\t%s\n", route.OutboundDepot)
		fmt.Fprintf(w, "Destination Depot:\t%s\n", route.DestDepot)
		fmt.Fprintf(w, "Sort:\t%s -> %s\n", route.OriginSort, route.DestSort)
		fmt.Fprintf(w, "Destination:\t%s-%s\n", route.CountryCode, route.PostalCode)
		if route.IATA != "" {
			fmt.Fprintf(w, "IATA:\t%s\n", route.IATA)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintTrackingNumber prints the tracking number found for a reference
func (f *OutputFormatter) PrintTrackingNumber(reference, trackingNumber string) error {
	if f.quiet {
		fmt.Fprintln(f.out, trackingNumber)
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(map[string]string{
			"reference_number": reference,
			"tracking_number":  trackingNumber,
		})
	case "table":
		fmt.Fprintf(f.out, "Reference: %s\n", reference)
		fmt.Fprintf(f.out, "Tracking Number: %s\n", trackingNumber)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintBusinessAccount prints the business tracking credentials
func (f *OutputFormatter) PrintBusinessAccount(account portal.BusinessAccount) error {
	if f.quiet {
		fmt.Fprintln(f.out, account.Username)
		return nil
	}

	switch f.format {
	case "json":
		// the password is excluded from BusinessAccount's own JSON form
		return f.encodeJSON(map[string]string{
			"username": account.Username,
			"password": account.Password,
		})
	case "table":
		fmt.Fprintf(f.out, "Username: %s\n", account.Username)
		fmt.Fprintf(f.out, "Password: %s\n", account.Password)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintWeight prints the measured weight of a parcel in kg
func (f *OutputFormatter) PrintWeight(trackingNumber string, weight decimal.Decimal) error {
	if f.quiet {
		fmt.Fprintln(f.out, weight.String())
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(struct {
			TrackingNumber string          `json:"tracking_number"`
			WeightKg       decimal.Decimal `json:"weight_kg"`
		}{trackingNumber, weight})
	case "table":
		fmt.Fprintf(f.out, "Tracking Number: %s\n", trackingNumber)
		fmt.Fprintf(f.out, "Weight: %s kg\n", weight.String())
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintFiles lists files written by a command
func (f *OutputFormatter) PrintFiles(paths ...string) error {
	if f.quiet {
		for _, p := range paths {
			fmt.Fprintln(f.out, p)
		}
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(map[string][]string{"files": paths})
	case "table":
		for _, p := range paths {
			fmt.Fprintf(f.out, "✓ Wrote %s\n", p)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "✓ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(f.errOut, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "ℹ %s\n", message)
	}
}

func (f *OutputFormatter) encodeJSON(v any) error {
	return json.NewEncoder(f.out).Encode(v)
}

func (f *OutputFormatter) printSendersTable(senders []portal.Sender) error {
	if len(senders) == 0 {
		fmt.Fprintln(f.out, "No senders found.")
		return nil
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tCUSTOMER\tDEPOT")
	for _, s := range senders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			s.ID,
			truncate(s.Name, 30),
			truncate(s.Address, 40),
			strconv.Itoa(s.CustomerID),
			s.Depot)
	}
	return nil
}

// truncate shortens s to at most maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
