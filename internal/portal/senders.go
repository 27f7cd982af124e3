package portal

import "context"

// Senders lists the sender identities of the logged in account. Ids come
// from the label printing form, details from the settings table.
func (c *Client) Senders(ctx context.Context) ([]Sender, error) {
	const op = "list senders"

	form, err := c.get(ctx, op, "/labeldruck/index.php", nil)
	if err != nil {
		return nil, err
	}
	ids, err := parseSenderIDs(form.text)
	if err != nil {
		return nil, withOp(op, err)
	}

	settings, err := c.get(ctx, op, "/settings/mandanten.php", nil)
	if err != nil {
		return nil, err
	}
	senders, err := parseSenderRows(settings.text, ids)
	if err != nil {
		return nil, withOp(op, err)
	}

	c.logger.Debug("Senders listed", "count", len(senders))
	return senders, nil
}
