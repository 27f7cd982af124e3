package portal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL     = "http://web.paketomat.at"
	DefaultTrackingURL = "http://www.dpd-business.at/strack.php"
	DefaultPrinterName = "Gutenberg Printing Press"
	DefaultUserAgent   = "Mozilla/5.0 (compatible; Paketomat/1.0)"
	DefaultTimeout     = 30 * time.Second

	connectTimeout = 10 * time.Second
)

// Config configures a portal Client
type Config struct {
	// BaseURL is the portal root without trailing slash
	BaseURL string
	// TrackingURL is the unauthenticated parcel tracking page used for weights
	TrackingURL string
	// Timeout bounds each request, including reading the body
	Timeout   time.Duration
	UserAgent string
	// PrinterName is the virtual printer announced at login
	PrinterName string
}

// DefaultConfig returns the configuration for the production portal
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		TrackingURL: DefaultTrackingURL,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		PrinterName: DefaultPrinterName,
	}
}

// Client is an authenticated session against the portal.
//
// A Client is not safe for concurrent use: the portal keeps per-session
// state on the server side, so callers must serialize access or use one
// Client per worker.
type Client struct {
	cfg      Config
	session  *http.Client
	tracking *http.Client
	logger   *slog.Logger

	// documentPattern only accepts label links under cfg.BaseURL
	documentPattern *regexp.Regexp

	// account is fetched on first weight lookup and never invalidated.
	// A changed upstream password requires a new Client.
	account *BusinessAccount
}

// page is a decoded portal response
type page struct {
	status int
	text   string
}

// NewClient creates a client and warms up a session by fetching the
// portal's landing page.
func NewClient(ctx context.Context, cfg *Config, logger *slog.Logger) (*Client, error) {
	c := newClient(cfg, logger)
	if _, err := c.get(ctx, "warmup", "/", nil); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(cfg *Config, logger *slog.Logger) *Client {
	resolved := *DefaultConfig()
	if cfg != nil {
		if cfg.BaseURL != "" {
			resolved.BaseURL = cfg.BaseURL
		}
		if cfg.TrackingURL != "" {
			resolved.TrackingURL = cfg.TrackingURL
		}
		if cfg.Timeout > 0 {
			resolved.Timeout = cfg.Timeout
		}
		if cfg.UserAgent != "" {
			resolved.UserAgent = cfg.UserAgent
		}
		if cfg.PrinterName != "" {
			resolved.PrinterName = cfg.PrinterName
		}
	}
	resolved.BaseURL = strings.TrimSuffix(resolved.BaseURL, "/")

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: resolved.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	return &Client{
		cfg: resolved,
		session: &http.Client{
			Timeout:   resolved.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		tracking: &http.Client{
			Timeout:   resolved.Timeout,
			Transport: transport,
		},
		logger:          logger.With("component", "portal"),
		documentPattern: documentURLPattern(resolved.BaseURL),
	}
}

// BaseURL returns the portal root the client talks to
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.cfg.BaseURL + path
}

// get fetches a session page with optional query parameters
func (c *Client) get(ctx context.Context, op, path string, query url.Values) (*page, error) {
	resp, err := c.roundTrip(ctx, c.session, op, http.MethodGet, c.resolve(path), query)
	if err != nil {
		return nil, err
	}
	return readPage(op, resp)
}

// post submits a form within the session
func (c *Client) post(ctx context.Context, op, path string, form url.Values) (*page, error) {
	resp, err := c.roundTrip(ctx, c.session, op, http.MethodPost, c.resolve(path), form)
	if err != nil {
		return nil, err
	}
	return readPage(op, resp)
}

// getRaw downloads a session resource without any text decoding
func (c *Client) getRaw(ctx context.Context, op, target string) ([]byte, error) {
	resp, err := c.roundTrip(ctx, c.session, op, http.MethodGet, c.resolve(target), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("failed to read response: %w", err))
	}
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, op, method, target string, params url.Values) (*http.Response, error) {
	encoded, err := encodeValues(params)
	if err != nil {
		return nil, withOp(op, err)
	}

	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(encoded.Encode())
	} else if len(encoded) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-AT,de;q=0.8,en;q=0.5")
	req.Header.Set("Accept-Charset", "ISO-8859-1")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=ISO-8859-1")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("Portal request failed", "op", op, "method", method, "url", req.URL.Path, "error", err)
		return nil, transportError(op, err)
	}

	c.logger.Debug("Portal request",
		"op", op,
		"method", method,
		"url", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return resp, nil
}

// readPage decodes the body using the charset the response declares, or
// the one its markup announces. An empty body is a valid, empty page.
func readPage(op string, resp *http.Response) (*page, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("failed to read response: %w", err))
	}
	if len(data) == 0 {
		return &page{status: resp.StatusCode}, nil
	}

	enc, _, _ := charset.DetermineEncoding(data, resp.Header.Get("Content-Type"))
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("failed to decode response: %w", err))
	}

	return &page{status: resp.StatusCode, text: string(decoded)}, nil
}
