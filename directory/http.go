package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/hugr-lab/airport-splunk/cache"
)

// HTTPConfig contains settings for the Splunk management REST connector.
type HTTPConfig struct {
	// BaseURL of the management port (e.g., "https://splunk:8089").
	// REQUIRED.
	BaseURL string

	// Credentials used for every identity without its own entry.
	Credentials Credentials

	// UserCredentials maps a requesting identity to the Splunk credentials
	// used on its behalf. OPTIONAL.
	UserCredentials map[string]Credentials

	// App and Owner select the namespace for index operations.
	// OPTIONAL: If both are empty, the global namespace is used.
	App   string
	Owner string

	// ValidateCertificates enables TLS certificate verification.
	ValidateCertificates bool

	// Timeout bounds each HTTP request. OPTIONAL: 0 means no timeout.
	Timeout time.Duration

	// ReconnectRetries is how many more times the connectivity check is
	// attempted after an unreachable endpoint. Rejected credentials are
	// never retried.
	ReconnectRetries int

	// Client overrides the HTTP client. OPTIONAL.
	Client *http.Client

	// Logger for connector events. OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// HTTPConnector talks to the Splunk management REST API.
type HTTPConnector struct {
	config HTTPConfig
	base   *url.URL
	client *http.Client
	logger *slog.Logger
}

// NewHTTPConnector validates config and returns a connector.
func NewHTTPConnector(config HTTPConfig) (*HTTPConnector, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}

	client := config.Client
	if client == nil {
		client = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !config.ValidateCertificates, //nolint:gosec // opt-in via config
				},
			},
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPConnector{
		config: config,
		base:   base,
		client: client,
		logger: logger,
	}, nil
}

// Connect implements Connector.
func (c *HTTPConnector) Connect(ctx context.Context, identity string) (Conn, error) {
	creds := c.config.Credentials
	if uc, ok := c.config.UserCredentials[identity]; ok && !uc.IsZero() {
		creds = uc
	}

	conn := &httpConn{connector: c, identity: identity}

	var err error
	for attempt := 0; attempt <= c.config.ReconnectRetries; attempt++ {
		if err = conn.authenticate(ctx, creds); err == nil {
			return conn, nil
		}
		if !errors.Is(err, ErrUnreachable) || ctx.Err() != nil {
			break
		}
		c.logger.Debug("Splunk connectivity check failed, retrying",
			"identity", identity,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return nil, err
}

// httpConn is a Conn bound to one authorization header.
type httpConn struct {
	connector *HTTPConnector
	identity  string
	authz     string
}

func (c *httpConn) authenticate(ctx context.Context, creds Credentials) error {
	if creds.Token != "" {
		c.authz = "Bearer " + creds.Token
		resp, err := c.do(ctx, http.MethodGet, "/services/authentication/current-context", nil, nil)
		if err != nil {
			return err
		}
		defer drain(resp)
		return checkStatus(resp)
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	c.authz = ""
	resp, err := c.do(ctx, http.MethodPost, "/services/auth/login", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	defer drain(resp)
	if err := checkStatus(resp); err != nil {
		return err
	}

	var login struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if login.SessionKey == "" {
		return fmt.Errorf("%w: login returned no session key", ErrUnauthorized)
	}
	c.authz = "Splunk " + login.SessionKey
	return nil
}

// ListIndexes implements Conn.
func (c *httpConn) ListIndexes(ctx context.Context) (cache.IndexSet, error) {
	query := url.Values{}
	query.Set("count", "0")

	resp, err := c.do(ctx, http.MethodGet, c.indexesPath(), query, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var listing struct {
		Entry []struct {
			Name string `json:"name"`
		} `json:"entry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode index listing: %w", err)
	}

	indexes := make(cache.IndexSet, len(listing.Entry))
	for _, e := range listing.Entry {
		if e.Name != "" {
			indexes[e.Name] = struct{}{}
		}
	}
	return indexes, nil
}

// DeleteIndex implements Conn.
func (c *httpConn) DeleteIndex(ctx context.Context, name string) {
	logger := c.connector.logger.With("identity", c.identity, "index", name)

	if err := ValidateIndexName(name); err != nil {
		logger.Warn("Index delete rejected", "error", err)
		return
	}

	resp, err := c.do(ctx, http.MethodDelete, c.indexesPath()+"/"+name, nil, nil)
	if err != nil {
		logger.Warn("Index delete request failed", "error", err)
		return
	}
	defer drain(resp)
	if err := checkStatus(resp); err != nil {
		logger.Warn("Index delete not accepted", "error", err)
		return
	}
	logger.Debug("Index delete issued")
}

func (c *httpConn) indexesPath() string {
	cfg := c.connector.config
	if cfg.App == "" && cfg.Owner == "" {
		return "/services/data/indexes"
	}
	owner, app := cfg.Owner, cfg.App
	if owner == "" {
		owner = "-"
	}
	if app == "" {
		app = "-"
	}
	return "/servicesNS/" + owner + "/" + app + "/data/indexes"
}

func (c *httpConn) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("output_mode", "json")

	u := *c.connector.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.authz != "" {
		req.Header.Set("Authorization", c.authz)
	}

	resp, err := c.connector.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

// checkStatus converts a non-2xx response into an error carrying the
// messages Splunk put in the body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body struct {
		Messages []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	texts := make([]string, 0, len(body.Messages))
	for _, m := range body.Messages {
		texts = append(texts, m.Text)
	}
	detail := strings.Join(texts, "; ")
	if detail == "" {
		detail = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnreachable, detail)
	default:
		return fmt.Errorf("splunk returned %d: %s", resp.StatusCode, detail)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
