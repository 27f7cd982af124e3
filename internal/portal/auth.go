package portal

import (
	"context"
	"net/url"
)

// Login authenticates the session and installs the label print profile.
//
// The portal only issues labels to sessions that announced a printer, so a
// virtual one is registered along with the credentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	const op = "login"

	form := url.Values{
		"doLogin":        {"true"},
		"compName":       {"PaketomatBrowser-PC"},
		"clientIP":       {"127.0.0.1"},
		"clientUsername": {"PaketomatBrowser"},
		"printerlist":    {c.cfg.PrinterName + ";"},
		"username":       {username},
		"passwort":       {password},
		"anmelden":       {"Anmelden"},
	}

	resp, err := c.post(ctx, op, "/", form)
	if err != nil {
		return err
	}

	user, ok := parseLoginUser(resp.text)
	if !ok || user != username {
		c.logger.Warn("Portal login rejected", "username", username)
		return &Error{Kind: KindAuthenticationFailed, Op: op, Message: "portal did not confirm user " + username}
	}

	// The print configuration response carries no status; only transport
	// failures are reported.
	profile := url.Values{
		"druckertyp":              {"labeldrucker"},
		"etiketten_drucker":       {c.cfg.PrinterName},
		"listen_drucker":          {c.cfg.PrinterName},
		"etiketten_groesse":       {"163x105"},
		"vierProBlatt":            {"false"},
		"linker_rand":             {"0"},
		"obrerer_rand":            {"0"},
		"horizontale_ausrichtung": {"links"},
		"vertikale_ausrichtung":   {"oben"},
		"papier_ausrichtung":      {"hoch"},
	}
	if _, err := c.post(ctx, "save print configuration", "/settings/ajax/savePrintConfiguration.php", profile); err != nil {
		return err
	}

	c.logger.Info("Logged in to portal", "username", username)
	return nil
}

// SessionActive reports whether the portal still recognizes the session.
// An expired session is served the login form instead of the user header.
func (c *Client) SessionActive(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "check session", "/", nil)
	if err != nil {
		return false, err
	}
	_, ok := parseLoginUser(resp.text)
	return ok, nil
}
