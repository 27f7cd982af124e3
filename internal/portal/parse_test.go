package portal

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoginUser(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{"compact marker", `<div class="userInfo">12345 - Max</div>`, "12345", true},
		{"marker with whitespace", "<div class=\"userInfo\">\n\t\t12345 - Max</div>", "12345", true},
		{"no marker", `<form id="login"></form>`, "", false},
		{"marker without dash", `<div class="userInfo">12345</div>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLoginUser(tt.html)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNextCustomerID(t *testing.T) {
	id, err := parseNextCustomerID(`<td><input name="knr" size="10" maxlength="10" value=4711></td>`)
	require.NoError(t, err)
	assert.Equal(t, 4711, id)

	_, err = parseNextCustomerID(`<input name="name" value="">`)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestClassifySaveBanner(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantKind ErrorKind
		wantText string
	}{
		{
			name: "saved",
			html: `<div align='center' class='message'>Daten erfolgreich angelegt</div>`,
		},
		{
			name:     "duplicate",
			html:     `<div align='center' class='error'>Fehler beim Speichern der Daten!<br>Kundennummer bereits vorhanden!</div>`,
			wantKind: KindDuplicateRecipient,
		},
		{
			name:     "unknown banner",
			html:     `<div align='center' class='error'>Postleitzahl fehlt</div>`,
			wantKind: KindUnexpectedResponse,
			wantText: "Postleitzahl fehlt",
		},
		{
			name:     "no banner",
			html:     `<html><body>Session abgelaufen</body></html>`,
			wantKind: KindUnexpectedResponse,
			wantText: "no status banner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifySaveBanner(tt.html)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

const senderFormHTML = `<div id="mandantContainer">
	<fieldset>
		<select name="mandant">
			<option value="11">Lager Wien</option>
			<option value="12">M&uuml;ller &amp; S&ouml;hne</option>
		</select>
	</fieldset>
</div>`

const senderTableHTML = "<table>\r" +
	"<tr class='even'>\r" +
	"<td align=\"left\" style=\"\">1</td>\r" +
	"<td align=\"left\" style=\"\">Lager Wien</td>\r" +
	"<td align=\"left\" style=\"\">Hauptstra&szlig;e 1, 1010 Wien</td>\r" +
	"<td align=\"left\" style=\"\">900100</td>\r" +
	"<td align=\"left\" style=\"\">Wien</td>\r" +
	"</tr>\r" +
	"<tr class='odd'>\r" +
	"<td align=\"left\" style=\"\">2</td>\r" +
	"<td align=\"left\" style=\"\">broken row</td>\r" +
	"</tr>\r" +
	"<tr class='odd'>\r" +
	"<td align=\"left\" style=\"\">3</td>\r" +
	"<td align=\"left\" style=\"\">M&uuml;ller &amp; S&ouml;hne</td>\r" +
	"<td align=\"left\" style=\"\">Gasse 2, 4020 Linz</td>\r" +
	"<td align=\"left\" style=\"\">900200</td>\r" +
	"<td align=\"left\" style=\"\">Linz</td>\r" +
	"</tr>\r" +
	"</table>"

func TestParseSenders(t *testing.T) {
	ids, err := parseSenderIDs(senderFormHTML)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Lager Wien": 11, "M&uuml;ller &amp; S&ouml;hne": 12}, ids)

	senders, err := parseSenderRows(senderTableHTML, ids)
	require.NoError(t, err)
	require.Len(t, senders, 2)

	assert.Equal(t, Sender{ID: 11, Name: "Lager Wien", Address: "Hauptstraße 1, 1010 Wien", CustomerID: 900100, Depot: "Wien"}, senders[0])
	assert.Equal(t, Sender{ID: 12, Name: "Müller & Söhne", Address: "Gasse 2, 4020 Linz", CustomerID: 900200, Depot: "Linz"}, senders[1])
}

func TestParseSenderIDs_Errors(t *testing.T) {
	_, err := parseSenderIDs(`<div id="other"></div>`)
	assert.Equal(t, KindExtraction, KindOf(err))

	duplicate := `<div id="mandantContainer">
	<fieldset>
		<option value="1">Same</option><option value="2">Same</option>
	</fieldset>
</div>`
	_, err = parseSenderIDs(duplicate)
	assert.Equal(t, KindUnexpectedResponse, KindOf(err))
	assert.Contains(t, err.Error(), "duplicate sender name")
}

func TestParseSenderRows_UnknownName(t *testing.T) {
	_, err := parseSenderRows(senderTableHTML, map[string]int{"Lager Wien": 11})
	assert.Equal(t, KindExtraction, KindOf(err))
}

func TestParseRoute(t *testing.T) {
	route, err := parseRoute(`{"ok":"ok","ausgDepot":"1","osort":"A","dsort":"B","ddepot":"9","service":"X","servicetext":"Std","land":"AT","countrycode":"43","plz":"1010","usedversion":"1"}`)
	require.NoError(t, err)

	assert.Equal(t, "X-AT-1010", route.Router)
	assert.Equal(t, "AT-9", route.Code)
	assert.Equal(t, "1", route.OutboundDepot)
	assert.Equal(t, "A", route.OriginSort)
	assert.Equal(t, "B", route.DestSort)
	assert.Equal(t, "Std", route.ServiceText)
	assert.Equal(t, "43", route.NumericCountryCode)
	assert.Equal(t, "1", route.UsedVersion)
}

func TestParseRoute_NumbersAndNulls(t *testing.T) {
	route, err := parseRoute(`{"ok":"ok","ausgDepot":610,"osort":"A","dsort":"B","ddepot":615,"service":"101","servicetext":"Std","land":"DE","countrycode":276,"plz":"80331","usedversion":3,"iata":"MUC","groupingpriority":null,"router":null}`)
	require.NoError(t, err)

	assert.Equal(t, "610", route.OutboundDepot)
	assert.Equal(t, "276", route.NumericCountryCode)
	assert.Equal(t, "101-DE-80331", route.Router)
	assert.Equal(t, "DE-615-MUC", route.Code)
}

func TestParseRoute_Failures(t *testing.T) {
	_, err := parseRoute(`{"ok":"fail"}`)
	assert.True(t, errors.Is(err, ErrNoRoute))

	_, err = parseRoute(`<html>Fatal error</html>`)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestParseRoute_NonStringStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"boolean status", `{"ok":false}`},
		{"numeric status", `{"ok":0,"plz":"1010"}`},
		{"status with nested fields", `{"ok":"error","message":{"de":"Keine Route"},"hints":["plz"]}`},
		{"missing status", `{"plz":"1010"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRoute(tt.body)
			assert.True(t, errors.Is(err, ErrNoRoute), "got %v", err)
		})
	}
}

func TestParseRoute_MalformedSuccess(t *testing.T) {
	_, err := parseRoute(`{"ok":"ok","plz":{"value":"1010"}}`)
	assert.True(t, errors.Is(err, ErrExtraction))
}

func TestParseDocumentURL(t *testing.T) {
	html := `<object><param name="documenturl" value="http://web.paketomat.at/tmp/label_123.pdf"/></object>`

	got, err := parseDocumentURL(html, documentURLPattern("http://web.paketomat.at"))
	require.NoError(t, err)
	assert.Equal(t, "http://web.paketomat.at/tmp/label_123.pdf", got)

	_, err = parseDocumentURL(html, documentURLPattern("http://other.test"))
	assert.True(t, errors.Is(err, ErrExtraction))

	_, err = parseDocumentURL(`<p>Fehler</p>`, documentURLPattern("http://web.paketomat.at"))
	assert.True(t, errors.Is(err, ErrExtraction))
}

const archiveHTML = `<table id="searchResultTable" class="list">
	<thead><tr><th>Paketnummer</th></tr></thead>
	<tbody>
		<tr>
			<td>0123 4567 8901 23</td>
			<td><a onclick="openBusiness('1', '2' , 'x' , '900100','s3cr3t');">Tracking</a></td>
			<td><a onclick="doStorno(this, '5531', '01234567890123A');">Storno</a></td>
		</tr>
	</tbody>
</table>`

func TestParseArchive(t *testing.T) {
	table, err := parseSearchTable(archiveHTML)
	require.NoError(t, err)

	number, err := parseTrackingNumber(table)
	require.NoError(t, err)
	assert.Equal(t, "01234567890123", number)

	account, err := parseBusinessAccount(table)
	require.NoError(t, err)
	assert.Equal(t, BusinessAccount{Username: "900100", Password: "s3cr3t"}, account)

	target, err := parseCancelTarget(table)
	require.NoError(t, err)
	assert.Equal(t, cancelTarget{RecordID: "5531", ParcelNumber: "01234567890123A"}, target)
}

func TestParseArchive_Missing(t *testing.T) {
	_, err := parseSearchTable(`<p>Keine Daten</p>`)
	assert.True(t, errors.Is(err, ErrExtraction))
	assert.Contains(t, err.Error(), "search result table")

	_, err = parseTrackingNumber(`<tr><td>n/a</td></tr>`)
	assert.Contains(t, err.Error(), "tracking number")

	_, err = parseBusinessAccount(`<tr><td>n/a</td></tr>`)
	assert.Contains(t, err.Error(), "business account")

	_, err = parseCancelTarget(`<tr><td>n/a</td></tr>`)
	assert.Contains(t, err.Error(), "cancel link")
}

func TestParseParcelWeight(t *testing.T) {
	weight, err := parseParcelWeight(`Status: zugestellt<br>&nbsp;Gewicht:&nbsp; 2.35 kg<br>`)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.35").Equal(weight))
	assert.Equal(t, "2.35", weight.String())

	weight, err = parseParcelWeight(`<br>&nbsp;Gewicht:&nbsp; 12 kg`)
	require.NoError(t, err)
	assert.Equal(t, "12", weight.String())

	_, err = parseParcelWeight(`<br>Keine Daten`)
	assert.True(t, errors.Is(err, ErrExtraction))
}
