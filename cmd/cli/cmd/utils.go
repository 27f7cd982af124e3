package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paketomat/internal/portal"
)

// parseWeight parses a positive weight in kg. A decimal comma is accepted.
func parseWeight(arg string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(arg), ",", ".")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("weight cannot be empty")
	}

	weight, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid weight '%s': must be a number of kg", arg)
	}
	if !weight.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid weight '%s': must be positive", arg)
	}
	return weight, nil
}

// parseShipDate parses YYYY-MM-DD, defaulting to today
func parseShipDate(arg string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return now, nil
	}
	date, err := time.ParseInLocation(time.DateOnly, arg, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': must be YYYY-MM-DD", arg)
	}
	return date, nil
}

// normalizeTrackingNumber strips the grouping spaces the portal shows
func normalizeTrackingNumber(arg string) (string, error) {
	number := strings.Join(strings.Fields(arg), "")
	if number == "" {
		return "", fmt.Errorf("tracking number cannot be empty")
	}
	for _, r := range number {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return "", fmt.Errorf("invalid tracking number '%s'", arg)
		}
	}
	return number, nil
}

// labelPaths returns where to store the label PDF and its PNG rendering
func labelPaths(out string, customerID int, date time.Time) (pdfPath, pngPath string) {
	if out == "" {
		out = fmt.Sprintf("label-%s-%s.pdf", date.Format("20060102"), strconv.Itoa(customerID))
	}
	base := strings.TrimSuffix(out, filepath.Ext(out))
	return out, base + ".png"
}

// recipientFlags binds the address flags shared by recipient, route and parcel commands
type recipientFlags struct {
	customerID    int
	name          string
	additional    string
	contactPerson string
	phone         string
	street        string
	postalCode    string
	city          string
	country       string
	email         string
}

func (f *recipientFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.customerID, "customer-number", 0, "Existing customer number of the recipient")
	cmd.Flags().StringVar(&f.name, "name", "", "Recipient name (required)")
	cmd.Flags().StringVar(&f.additional, "additional", "", "Additional name line")
	cmd.Flags().StringVar(&f.contactPerson, "contact", "", "Contact person")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.street, "street", "", "Street and house number (required)")
	cmd.Flags().StringVar(&f.postalCode, "postal-code", "", "Postal code (required)")
	cmd.Flags().StringVar(&f.city, "city", "", "City (required)")
	cmd.Flags().StringVar(&f.country, "country", "", "ISO country code, e.g. AT (required)")
	cmd.Flags().StringVar(&f.email, "email", "", "E-mail address for delivery notifications")

	cmd.RegisterFlagCompletionFunc("country", completeCountry)
}

func (f *recipientFlags) recipient() (portal.Recipient, error) {
	var missing []string
	for _, field := range []struct{ flag, value string }{
		{"--name", f.name},
		{"--street", f.street},
		{"--postal-code", f.postalCode},
		{"--city", f.city},
		{"--country", f.country},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.flag)
		}
	}
	if len(missing) > 0 {
		return portal.Recipient{}, fmt.Errorf("missing recipient fields: %s", strings.Join(missing, ", "))
	}

	country := strings.ToUpper(strings.TrimSpace(f.country))
	if len(country) != 2 {
		return portal.Recipient{}, fmt.Errorf("invalid country '%s': must be a two letter code", f.country)
	}
	if f.customerID < 0 {
		return portal.Recipient{}, fmt.Errorf("invalid customer number '%d'", f.customerID)
	}

	return portal.Recipient{
		CustomerID:    f.customerID,
		Name:          strings.TrimSpace(f.name),
		Additional:    f.additional,
		ContactPerson: f.contactPerson,
		Phone:         f.phone,
		Street:        strings.TrimSpace(f.street),
		PostalCode:    strings.TrimSpace(f.postalCode),
		City:          strings.TrimSpace(f.city),
		CountryCode:   country,
		Email:         f.email,
	}, nil
}
