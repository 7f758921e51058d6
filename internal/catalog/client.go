package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// MenuPath is the menu structure endpoint.
	MenuPath = "/challenge/menu"
	// VenuePathPrefix is joined with the configured venue id.
	VenuePathPrefix = "/challenge/venue/"

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes int64 = 8 << 20

	errorBodyLimit = 512
)

// Client issues the two read-only catalog fetches. It holds no state between
// calls so repeated loads are independent of each other.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	venueID      string
	maxBodyBytes int64
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxBodyBytes overrides the response size cap.
func WithMaxBodyBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewClient builds a catalog client for baseURL and the given venue.
func NewClient(baseURL, venueID string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		venueID:      strings.TrimSpace(venueID),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// VenueID returns the configured venue identifier.
func (c *Client) VenueID() string {
	return c.venueID
}

// MenuEndpoint returns the absolute menu URL.
func (c *Client) MenuEndpoint() string {
	return c.baseURL + MenuPath
}

// VenueEndpoint returns the absolute venue settings URL.
func (c *Client) VenueEndpoint() string {
	return c.baseURL + VenuePathPrefix + url.PathEscape(c.venueID)
}

// FetchMenu loads and validates the menu structure.
func (c *Client) FetchMenu(ctx context.Context) (Menu, error) {
	endpoint := c.MenuEndpoint()
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Menu{}, err
	}
	menu, err := DecodeMenu(body)
	if err != nil {
		return Menu{}, withEndpoint(err, endpoint)
	}
	return menu, nil
}

// FetchVenue loads and validates the venue settings.
func (c *Client) FetchVenue(ctx context.Context) (Venue, error) {
	if c.venueID == "" {
		return Venue{}, &FetchError{Endpoint: c.VenueEndpoint(), Err: errors.New("venue id is not configured")}
	}
	endpoint := c.VenueEndpoint()
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Venue{}, err
	}
	venue, err := DecodeVenue(body, c.venueID)
	if err != nil {
		return Venue{}, withEndpoint(err, endpoint)
	}
	return venue, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("body exceeds %d bytes", c.maxBodyBytes)}
	}
	return body, nil
}

func withEndpoint(err error, endpoint string) error {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Endpoint == "" {
		schemaErr.Endpoint = endpoint
	}
	return err
}
