package portal

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// CreateRecipient stores r in the portal's customer register. When r has no
// customer number the next free one is read from the portal and assigned to
// r before saving.
func (c *Client) CreateRecipient(ctx context.Context, r *Recipient) error {
	const op = "create recipient"

	if r.CustomerID == 0 {
		resp, err := c.get(ctx, op, "/kundenstamm/new.php", nil)
		if err != nil {
			return err
		}
		id, err := parseNextCustomerID(resp.text)
		if err != nil {
			return withOp(op, err)
		}
		r.CustomerID = id
	}

	form := url.Values{
		"knr":       {strconv.Itoa(r.CustomerID)},
		"mandant":   {""},
		"name":      {r.Name},
		"plz":       {r.PostalCode},
		"zusatz":    {r.Additional},
		"ort":       {r.City},
		"bezperson": {r.ContactPerson},
		"tel":       {r.Phone},
		"land":      {strings.ToUpper(r.CountryCode)},
		"strasse":   {r.Street},
		"email":     {r.Email},
	}

	resp, err := c.post(ctx, op, "/kundenstamm/ajax/doSave.php", form)
	if err != nil {
		return err
	}
	if err := classifySaveBanner(resp.text); err != nil {
		return withOp(op, err)
	}

	c.logger.Info("Recipient created", "customer_id", r.CustomerID)
	return nil
}
