package portal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// Banner texts returned by the recipient save endpoint
const (
	bannerRecipientSaved     = "Daten erfolgreich angelegt"
	bannerRecipientDuplicate = "Fehler beim Speichern der Daten!<br>Kundennummer bereits vorhanden!"
)

var (
	userInfoPattern       = regexp.MustCompile(`class="userInfo">\s*([0-9]+)\s-`)
	nextCustomerIDPattern = regexp.MustCompile(`<input name="knr"\s+.*?\s+value=([0-9]+)>`)
	saveBannerPattern     = regexp.MustCompile(`<div align='center' class='(?:error|message)'>(.*?)</div>`)

	senderContainerPattern = regexp.MustCompile(`(?s)<div id="mandantContainer">\s+<fieldset>\s+(.*?)\s+</fieldset>\s+</div>`)
	senderOptionPattern    = regexp.MustCompile(`<option value="([0-9]+)">(.*?)</option>`)
	senderRowPattern       = regexp.MustCompile(`<tr class='(?:even|odd)'>\s+` +
		`<td align="left" style="">[0-9]+</td>\s+` +
		`<td align="left" style="">(.+?)</td>\s+` +
		`<td align="left" style="">(.+?)</td>\s+` +
		`<td align="left" style="">([0-9]+)</td>\s+` +
		`<td align="left" style="">(.+?)</td>\s+</tr>`)

	searchTablePattern     = regexp.MustCompile(`(?s)<table id="searchResultTable" .*?>\s+<thead>.*?</thead>\s+<tbody>(.+?)</tbody>\s+</table>`)
	trackingCellPattern    = regexp.MustCompile(`<td>([0-9 ]+)</td>`)
	businessAccountPattern = regexp.MustCompile(`onclick="openBusiness\('[0-9]+', '[0-9]+' , '.+' , '([0-9]+)','(.+)'\);"`)
	cancelLinkPattern      = regexp.MustCompile(`onclick="doStorno\(this, '([0-9]+)', '([0-9]+[0-9A-Z])'\);"`)

	parcelWeightPattern = regexp.MustCompile(`<br>&nbsp;Gewicht:&nbsp; ([0-9]+(?:\.[0-9]+)?) kg`)
)

// parseLoginUser returns the numeric user id shown in the post-login header
func parseLoginUser(text string) (string, bool) {
	match := userInfoPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// parseNextCustomerID reads the pre-filled customer number of the new recipient form
func parseNextCustomerID(text string) (int, error) {
	match := nextCustomerIDPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, extractionError("next customer id")
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, extractionError("next customer id")
	}
	return id, nil
}

// classifySaveBanner maps the recipient save banner to success or an error
func classifySaveBanner(text string) error {
	match := saveBannerPattern.FindStringSubmatch(text)
	if match == nil {
		return unexpectedResponse("no status banner in save response")
	}

	switch banner := match[1]; banner {
	case bannerRecipientSaved:
		return nil
	case bannerRecipientDuplicate:
		return &Error{Kind: KindDuplicateRecipient, Message: banner}
	default:
		return unexpectedResponse("unexpected save banner: %s", banner)
	}
}

// parseSenderIDs maps sender display names (as they appear in the HTML) to ids
func parseSenderIDs(text string) (map[string]int, error) {
	match := senderContainerPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, extractionError("sender container")
	}

	ids := make(map[string]int)
	for _, option := range senderOptionPattern.FindAllStringSubmatch(match[1], -1) {
		name := option[2]
		if _, exists := ids[name]; exists {
			return nil, unexpectedResponse("duplicate sender name %q", html.UnescapeString(name))
		}
		id, err := strconv.Atoi(option[1])
		if err != nil {
			return nil, extractionError("sender id")
		}
		ids[name] = id
	}
	return ids, nil
}

// parseSenderRows reads the sender details table. Rows that do not have the
// expected five cells are skipped.
func parseSenderRows(text string, ids map[string]int) ([]Sender, error) {
	text = strings.ReplaceAll(text, "\r", "\n")

	var senders []Sender
	for _, row := range senderRowPattern.FindAllStringSubmatch(text, -1) {
		id, ok := ids[row[1]]
		if !ok {
			return nil, extractionError(fmt.Sprintf("sender id for %q", html.UnescapeString(row[1])))
		}
		customerID, err := strconv.Atoi(row[3])
		if err != nil {
			continue
		}
		senders = append(senders, Sender{
			ID:         id,
			Name:       html.UnescapeString(row[1]),
			Address:    html.UnescapeString(row[2]),
			CustomerID: customerID,
			Depot:      html.UnescapeString(row[4]),
		})
	}
	return senders, nil
}

// jsonText accepts a JSON string, number or null
type jsonText string

func (t *jsonText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = jsonText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = jsonText(n.String())
	return nil
}

type routeResponse struct {
	OutboundDepot    jsonText `json:"ausgDepot"`
	OriginSort       jsonText `json:"osort"`
	DestSort         jsonText `json:"dsort"`
	DestDepot        jsonText `json:"ddepot"`
	Service          jsonText `json:"service"`
	ServiceText      jsonText `json:"servicetext"`
	Country          jsonText `json:"land"`
	CountryCode      jsonText `json:"countrycode"`
	PostalCode       jsonText `json:"plz"`
	UsedVersion      jsonText `json:"usedversion"`
	IATA             jsonText `json:"iata"`
	GroupingPriority jsonText `json:"groupingpriority"`
	Router           jsonText `json:"router"`
	Code             jsonText `json:"code"`
}

// parseRoute decodes the route lookup JSON. Any status other than the
// string "ok" means the portal has no route for the combination.
func parseRoute(text string) (Route, error) {
	data := []byte(strings.TrimSpace(text))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Route{}, &Error{Kind: KindExtraction, Message: "malformed route response", Err: err}
	}

	var status string
	if raw, ok := fields["ok"]; !ok || json.Unmarshal(raw, &status) != nil || status != "ok" {
		return Route{}, &Error{Kind: KindNoRoute, Message: "no route available"}
	}

	var resp routeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Route{}, &Error{Kind: KindExtraction, Message: "malformed route response", Err: err}
	}

	return NewRoute(Route{
		OutboundDepot:      string(resp.OutboundDepot),
		OriginSort:         string(resp.OriginSort),
		DestSort:           string(resp.DestSort),
		DestDepot:          string(resp.DestDepot),
		Service:            string(resp.Service),
		ServiceText:        string(resp.ServiceText),
		CountryCode:        string(resp.Country),
		NumericCountryCode: string(resp.CountryCode),
		PostalCode:         string(resp.PostalCode),
		UsedVersion:        string(resp.UsedVersion),
		IATA:               string(resp.IATA),
		GroupingPriority:   string(resp.GroupingPriority),
		Router:             string(resp.Router),
		Code:               string(resp.Code),
	}), nil
}

// documentURLPattern matches the label PDF link for documents served by
// the portal at baseURL
func documentURLPattern(baseURL string) *regexp.Regexp {
	return regexp.MustCompile(`<param name="documenturl" value="(` + regexp.QuoteMeta(baseURL) + `/.*\.pdf)"/>`)
}

// parseDocumentURL finds the label PDF link embedded in the print response
func parseDocumentURL(text string, pattern *regexp.Regexp) (string, error) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return "", extractionError("label document")
	}
	return match[1], nil
}

// parseSearchTable returns the body rows of the archive search result table
func parseSearchTable(text string) (string, error) {
	match := searchTablePattern.FindStringSubmatch(text)
	if match == nil {
		return "", extractionError("search result table")
	}
	return match[1], nil
}

// parseTrackingNumber returns the first numeric cell with spaces removed
func parseTrackingNumber(table string) (string, error) {
	match := trackingCellPattern.FindStringSubmatch(table)
	if match == nil {
		return "", extractionError("tracking number")
	}
	return strings.ReplaceAll(match[1], " ", ""), nil
}

// parseBusinessAccount reads the credentials passed to the openBusiness handler
func parseBusinessAccount(table string) (BusinessAccount, error) {
	match := businessAccountPattern.FindStringSubmatch(table)
	if match == nil {
		return BusinessAccount{}, extractionError("business account")
	}
	return BusinessAccount{Username: match[1], Password: match[2]}, nil
}

// cancelTarget identifies an archive record for cancellation
type cancelTarget struct {
	RecordID     string
	ParcelNumber string
}

// parseCancelTarget reads the doStorno handler arguments
func parseCancelTarget(table string) (cancelTarget, error) {
	match := cancelLinkPattern.FindStringSubmatch(table)
	if match == nil {
		return cancelTarget{}, extractionError("cancel link")
	}
	return cancelTarget{RecordID: match[1], ParcelNumber: match[2]}, nil
}

// parseParcelWeight reads the weight line from the business tracking page
func parseParcelWeight(text string) (decimal.Decimal, error) {
	match := parcelWeightPattern.FindStringSubmatch(text)
	if match == nil {
		return decimal.Decimal{}, extractionError("weight information")
	}
	weight, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Decimal{}, &Error{Kind: KindExtraction, Message: "malformed weight", Err: err}
	}
	return weight, nil
}
