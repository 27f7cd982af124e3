package portal

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// unusedParcelFields must be present, empty, in every label form
var unusedParcelFields = []string{
	"paktyp2", "paktyp3", "paktyp4", "paktyp5", "paktyp6",
	"lname", "lzusatz", "lemailaviso", "lbezperson", "ltel", "lstrasse", "lplz", "lort", "lland",
}

// CreateParcel prints a label for one parcel and returns the label PDF.
// The route must have been resolved for the same sender, recipient and weight.
func (c *Client) CreateParcel(ctx context.Context, req ParcelRequest) ([]byte, error) {
	const op = "create parcel"

	resp, err := c.post(ctx, op, "/labeldruck/pdf.php", parcelForm(req))
	if err != nil {
		return nil, err
	}

	documentURL, err := parseDocumentURL(resp.text, c.documentPattern)
	if err != nil {
		return nil, withOp(op, err)
	}

	pdf, err := c.getRaw(ctx, "download label", documentURL)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Parcel label created",
		"sender_id", req.SenderID,
		"customer_id", req.Recipient.CustomerID,
		"route", req.Route.Code,
		"bytes", len(pdf))
	return pdf, nil
}

func parcelForm(req ParcelRequest) url.Values {
	r := req.Recipient
	weightClass := WeightClass(req.Weight)

	firstReference := ""
	if len(req.ReferenceNumbers) > 0 {
		firstReference = req.ReferenceNumbers[0]
	}

	form := url.Values{
		"mandant":     {strconv.Itoa(req.SenderID)},
		"anzvon":      {"1"},
		"anzbis":      {"1"},
		"kg":          {req.Weight.String()},
		"selnr":       {"lfsnr"},
		"nr":          {""},
		"lfnr":        {firstReference},
		"lfnummern":   {strings.Join(req.ReferenceNumbers, "~")},
		"rnrnummern":  {strings.Join(req.InvoiceNumbers, "~")},
		"ausgDepot":   {req.Route.OutboundDepot},
		"versanddat":  {req.Date.Format("02.01.2006")},
		"versandart":  {shippingMethod},
		"nummer":      {strconv.Itoa(r.CustomerID)},
		"landort":     {r.CountryCode + "-" + r.PostalCode + "-" + strings.ReplaceAll(r.City, "-", "/")},
		"name":        {r.Name},
		"zusatz":      {r.Additional},
		"emailaviso":  {r.Email},
		"bezperson":   {r.ContactPerson},
		"tel":         {r.Phone},
		"strasse":     {r.Street},
		"paktyp1":     {weightClass},
		"service":     {req.Route.ServiceText},
		"osort":       {req.Route.OriginSort},
		"router":      {req.Route.Router},
		"dsort":       {req.Route.DestSort},
		"kennz":       {""},
		"code":        {req.Route.Code},
		"verrout":     {req.Route.UsedVersion},
		"countrycode": {req.Route.NumericCountryCode},
		"serviceinfo": {""},
		"ok":          {"Routing OK!"},
		"drucken":     {"Etikett drucken"},
		"aube":        {""},
	}
	for _, field := range unusedParcelFields {
		form.Set(field, "")
	}
	return form
}
