package exfor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/logging"
)

const (
	// DefaultBaseURL is the IAEA EXFOR/ENDF web service.
	DefaultBaseURL = "https://www-nds.iaea.org/exfor"
	// DefaultRetries is the number of retries after a failed request.
	DefaultRetries = 2
	// DefaultBackoff is the wait before the first retry; it doubles per retry.
	DefaultBackoff = 500 * time.Millisecond
	// DefaultCacheTTL is how long section listings are memoised.
	DefaultCacheTTL = 10 * time.Minute

	maxResponseBytes = 64 << 20
	tracerName       = "github.com/agbru/macscalc/internal/exfor"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets the number of retries for transport errors and 5xx
// responses.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the initial retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithCacheTTL sets the lifetime of memoised section listings.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cacheTTL = d }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client fetches evaluated cross sections from the EXFOR/ENDF web service.
// It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	retries  int
	backoff  time.Duration
	cacheTTL time.Duration
	logger   logging.Logger
	sections *cache.Cache
}

var _ Source = (*Client)(nil)

// NewClient returns a Client with the given options applied over defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		http:     &http.Client{},
		retries:  DefaultRetries,
		backoff:  DefaultBackoff,
		cacheTTL: DefaultCacheTTL,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sections = cache.New(c.cacheTTL, 2*c.cacheTTL)
	return c
}

// Close drops memoised listings and idle connections.
func (c *Client) Close() error {
	c.sections.Flush()
	c.http.CloseIdleConnections()
	return nil
}

// FetchCrossSection lists the sections for q.Target and q.Reaction, selects
// the first one evaluated in q.Library and downloads its data points.
func (c *Client) FetchCrossSection(ctx context.Context, q Query) (ds *Dataset, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "exfor.FetchCrossSection")
	span.SetAttributes(
		attribute.String("exfor.target", q.Target),
		attribute.String("exfor.reaction", q.Reaction),
		attribute.String("exfor.library", q.Library),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sections, err := c.Sections(ctx, q)
	if err != nil {
		return nil, err
	}

	var selected *Section
	for i := range sections {
		if sections[i].LibName == q.Library {
			selected = &sections[i]
			break
		}
	}
	if selected == nil {
		return nil, apperrors.FetchError{
			Op:      "select library",
			Message: fmt.Sprintf("no %s section for %s(%s); available: %s", q.Library, q.Target, q.Reaction, strings.Join(libraryNames(sections), ", ")),
		}
	}

	v := url.Values{}
	v.Set("SectID", itoa(selected.SectID))
	v.Set("PenSectID", itoa(selected.PenSectID))
	u := c.baseURL + "/e4sig?" + v.Encode() + "&json"

	var resp sigResponse
	if err := c.getJSON(ctx, "e4sig", u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Datasets) == 0 {
		return nil, apperrors.FetchError{Op: "e4sig", URL: u, Message: "response contains no dataset"}
	}
	ds = resp.Datasets[0].toDataset(u)
	if len(ds.Points) == 0 {
		return nil, apperrors.FetchError{Op: "e4sig", URL: u, Message: "dataset contains no points"}
	}
	if ds.Library == "" {
		ds.Library = q.Library
	}
	if ds.Target == "" {
		ds.Target = q.Target
	}
	if ds.Reaction == "" {
		ds.Reaction = q.Reaction
	}

	span.SetAttributes(attribute.Int("exfor.points", len(ds.Points)))
	c.logger.Debug("cross section fetched",
		logging.String("library", ds.Library),
		logging.Int("points", len(ds.Points)),
		logging.Int("sect_id", selected.SectID))
	return ds, nil
}

// Sections returns the e4list sections for q.Target and q.Reaction. Listings
// are memoised per (target, reaction).
func (c *Client) Sections(ctx context.Context, q Query) ([]Section, error) {
	key := sectionKey(q)
	if cached, ok := c.sections.Get(key); ok {
		if s, ok := cached.([]Section); ok {
			c.logger.Debug("section listing served from cache", logging.String("key", key))
			return s, nil
		}
	}

	v := url.Values{}
	v.Set("Target", q.Target)
	v.Set("Reaction", q.Reaction)
	v.Set("Quantity", DefaultQuantity)
	u := c.baseURL + "/e4list?" + v.Encode() + "&json"

	var resp listResponse
	if err := c.getJSON(ctx, "e4list", u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Sections) == 0 {
		return nil, apperrors.FetchError{Op: "e4list", URL: u, Message: fmt.Sprintf("no sections for %s(%s)", q.Target, q.Reaction)}
	}
	c.sections.Set(key, resp.Sections, cache.DefaultExpiration)
	return resp.Sections, nil
}

// getJSON performs a GET with retries and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, op, u string, v any) error {
	for attempt := 0; ; attempt++ {
		retry, err := c.getOnce(ctx, op, u, v)
		if err == nil {
			return nil
		}
		if !retry || attempt >= c.retries || ctx.Err() != nil {
			return err
		}

		wait := c.backoff << attempt
		c.logger.Warn("request failed, retrying",
			logging.String("op", op),
			logging.Int("attempt", attempt+1),
			logging.Duration("backoff", wait),
			logging.Err(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apperrors.FetchError{Op: op, URL: u, Message: "canceled while waiting to retry", Cause: ctx.Err()}
		case <-timer.C:
		}
	}
}

func (c *Client) getOnce(ctx context.Context, op, u string, v any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, apperrors.FetchError{Op: op, URL: u, Message: "building request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return !apperrors.IsContextError(err), apperrors.FetchError{Op: op, URL: u, Cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("exfor response",
		logging.String("op", op),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return resp.StatusCode >= 500, apperrors.FetchError{Op: op, URL: u, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		if ctx.Err() != nil {
			return false, apperrors.FetchError{Op: op, URL: u, Cause: ctx.Err()}
		}
		return false, apperrors.FetchError{Op: op, URL: u, Message: "malformed JSON response", Cause: err}
	}
	return false, nil
}
