package portal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sender is a registered account identity ("Mandant") allowed to ship parcels.
type Sender struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	CustomerID int    `json:"customer_id"`
	Depot      string `json:"depot"`
}

func (s Sender) String() string {
	return s.Name
}

// Recipient is a shipment destination. A zero CustomerID means the portal
// assigns the next free customer number when the recipient is created.
type Recipient struct {
	CustomerID    int    `json:"customer_id,omitempty"`
	Name          string `json:"name"`
	Additional    string `json:"additional,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Street        string `json:"street"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	CountryCode   string `json:"country_code"`
	Email         string `json:"email,omitempty"`
}

// Route is the logistics path resolved by the portal for one shipment.
// Router and Code are derived by NewRoute and must not be changed afterwards.
type Route struct {
	OutboundDepot      string `json:"outbound_depot"`
	OriginSort         string `json:"origin_sort"`
	DestSort           string `json:"dest_sort"`
	DestDepot          string `json:"dest_depot"`
	Service            string `json:"service"`
	ServiceText        string `json:"service_text"`
	CountryCode        string `json:"country_code"`
	NumericCountryCode string `json:"numeric_country_code"`
	PostalCode         string `json:"postal_code"`
	UsedVersion        string `json:"used_version"`
	IATA               string `json:"iata,omitempty"`
	GroupingPriority   string `json:"grouping_priority,omitempty"`
	Router             string `json:"router"`
	Code               string `json:"code"`
}

// NewRoute fills in Router and Code when the portal did not supply them.
func NewRoute(r Route) Route {
	if r.Router == "" {
		r.Router = r.Service + "-" + r.CountryCode + "-" + r.PostalCode
	}
	if r.Code == "" {
		r.Code = r.CountryCode + "-" + r.DestDepot
		if r.IATA != "" {
			r.Code += "-" + r.IATA
			if r.GroupingPriority != "" {
				r.Code += "-" + r.GroupingPriority
			}
		}
	}
	return r
}

// BusinessAccount is the credential pair for the carrier's business tracking site.
type BusinessAccount struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

// ParcelRequest holds everything needed to print one parcel label.
type ParcelRequest struct {
	Date             time.Time
	SenderID         int
	Route            Route
	Recipient        Recipient
	Weight           decimal.Decimal
	ReferenceNumbers []string
	InvoiceNumbers   []string
}

var weightClassLimit = decimal.NewFromInt(3)

// WeightClass returns the tariff bucket for a weight in kg: "NP" above 3 kg,
// "KP" otherwise.
func WeightClass(weight decimal.Decimal) string {
	if weight.GreaterThan(weightClassLimit) {
		return "NP"
	}
	return "KP"
}
