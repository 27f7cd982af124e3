package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// archiveQuery selects archive records; empty fields match everything
type archiveQuery struct {
	ReferenceNumber string
	ParcelNumber    string
}

// searchArchive runs a fresh archive search and returns the result table
// body. Derived reads never reuse an earlier search.
func (c *Client) searchArchive(ctx context.Context, op string, q archiveQuery) (string, error) {
	form := url.Values{
		"mandant":   {""},
		"knr":       {""},
		"pnr":       {q.ParcelNumber},
		"name":      {""},
		"lfnr":      {q.ReferenceNumber},
		"rnr":       {""},
		"strasse":   {""},
		"vdat":      {"01.01.1970"},
		"dpd":       {"DPD"},
		"plz":       {""},
		"land":      {""},
		"bdat":      {"18.01.2036"},
		"pt":        {"Primetime"},
		"ort":       {""},
		"vgew":      {"von"},
		"bgew":      {"bis"},
		"storniert": {"storniert"},
		"sortNach":  {"paknr"},
		"sortWie":   {"asc"},
	}

	resp, err := c.post(ctx, op, "/archiv/ajax/doStornoSearch.php", form)
	if err != nil {
		return "", err
	}
	table, err := parseSearchTable(resp.text)
	if err != nil {
		return "", withOp(op, err)
	}
	return table, nil
}

// TrackingNumber looks up the tracking number of the parcel printed with the
// given reference number.
func (c *Client) TrackingNumber(ctx context.Context, referenceNumber string) (string, error) {
	const op = "tracking number"

	table, err := c.searchArchive(ctx, op, archiveQuery{ReferenceNumber: referenceNumber})
	if err != nil {
		return "", err
	}
	number, err := parseTrackingNumber(table)
	if err != nil {
		return "", withOp(op, err)
	}
	return number, nil
}

// BusinessAccount reads the business tracking credentials embedded in the
// archive page.
func (c *Client) BusinessAccount(ctx context.Context) (BusinessAccount, error) {
	const op = "business account"

	table, err := c.searchArchive(ctx, op, archiveQuery{})
	if err != nil {
		return BusinessAccount{}, err
	}
	account, err := parseBusinessAccount(table)
	if err != nil {
		return BusinessAccount{}, withOp(op, err)
	}
	return account, nil
}

// CancelParcel cancels ("storniert") the parcel with the given tracking
// number. Cancelling an already cancelled parcel is not guarded against; the
// portal's behaviour in that case decides the outcome.
func (c *Client) CancelParcel(ctx context.Context, trackingNumber string) error {
	const op = "cancel parcel"

	table, err := c.searchArchive(ctx, op, archiveQuery{ParcelNumber: trackingNumber})
	if err != nil {
		return err
	}
	target, err := parseCancelTarget(table)
	if err != nil {
		return withOp(op, err)
	}

	form := url.Values{
		"id":    {target.RecordID},
		"paknr": {target.ParcelNumber},
	}
	resp, err := c.post(ctx, op, "/archiv/ajax/doStorno.php", form)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status > 299 {
		return &Error{Kind: KindUnexpectedResponse, Op: op, Message: fmt.Sprintf("unexpected status code %d", resp.status)}
	}

	c.logger.Info("Parcel cancelled", "tracking_number", trackingNumber, "record_id", target.RecordID)
	return nil
}

// ParcelWeight returns the weight the carrier measured for a parcel. The
// business account is fetched on first use and cached for the life of the
// client.
func (c *Client) ParcelWeight(ctx context.Context, trackingNumber string) (decimal.Decimal, error) {
	const op = "parcel weight"

	if c.account == nil {
		account, err := c.BusinessAccount(ctx)
		if err != nil {
			return decimal.Decimal{}, err
		}
		c.account = &account
	}

	query := url.Values{
		"pknr": {trackingNumber},
		"u":    {c.account.Username},
		"p2":   {c.account.Password},
	}
	resp, err := c.roundTrip(ctx, c.tracking, op, http.MethodGet, c.cfg.TrackingURL, query)
	if err != nil {
		return decimal.Decimal{}, err
	}
	p, err := readPage(op, resp)
	if err != nil {
		return decimal.Decimal{}, err
	}

	weight, err := parseParcelWeight(p.text)
	if err != nil {
		return decimal.Decimal{}, withOp(op, err)
	}
	return weight, nil
}
