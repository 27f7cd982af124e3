package portal

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// shippingMethod is the only carrier the account ships with
const shippingMethod = "DPD"

// FindRoute asks the portal's routing engine for a path from sender to
// recipient. A missing route is reported as ErrNoRoute, which is an expected
// business outcome for some destinations and weights.
func (c *Client) FindRoute(ctx context.Context, senderID int, r Recipient, weight decimal.Decimal) (Route, error) {
	const op = "find route"

	form := url.Values{
		"r":          {strconv.Itoa(r.CustomerID)},
		"p":          {WeightClass(weight)},
		"p2":         {""},
		"m":          {strconv.Itoa(senderID)},
		"n":          {"false"},
		"plz":        {""},
		"land":       {""},
		"p3":         {""},
		"p4":         {""},
		"p5":         {""},
		"p6":         {""},
		"p7":         {"null"},
		"gewicht":    {weight.String()},
		"versandart": {shippingMethod},
	}

	resp, err := c.post(ctx, op, "/labeldruck/ajax/findRoute.php", form)
	if err != nil {
		return Route{}, err
	}

	route, err := parseRoute(resp.text)
	if err != nil {
		if KindOf(err) == KindNoRoute {
			c.logger.Info("No route available",
				"sender_id", senderID,
				"customer_id", r.CustomerID,
				"weight", weight.String())
		}
		return Route{}, withOp(op, err)
	}
	return route, nil
}
