// Package oxr fetches historical exchange rates from openexchangerates.org.
//
// Rates are quoted against the USD: the number of units of a currency for one
// USD, which is what a reconciliation needs to convert US broker amounts.
package oxr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fxgains/date"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the openexchangerates API root.
const DefaultBaseURL = "https://openexchangerates.org/api"

// DefaultRequestsPerSecond keeps well below the plan quotas.
const DefaultRequestsPerSecond = 5

// Client fetches historical rates. It is safe for concurrent use.
type Client struct {
	appID   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	memo    *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL replaces DefaultBaseURL, mostly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the disk cached http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithDiskCache stores raw responses in dir. By default they are stored in the
// fxgains directory of the temporary directory.
func WithDiskCache(dir string) Option {
	return func(c *Client) { c.http = cachingClient(dir) }
}

// WithRequestsPerSecond limits the request rate. Zero or less disables the limit.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		limit := rate.Limit(rps)
		if rps <= 0 {
			limit = rate.Inf
		}
		c.limiter = rate.NewLimiter(limit, 1)
	}
}

// New returns a Client authenticated by appID.
func New(appID string, opts ...Option) *Client {
	c := &Client{
		appID:   appID,
		baseURL: DefaultBaseURL,
		http:    cachingClient(filepath.Join(os.TempDir(), "fxgains")),
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		memo:    cache.New(time.Hour, 2*time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cachingClient returns an http.Client that uses a permanent disk cache in dir.
func cachingClient(dir string) *http.Client {
	return &http.Client{
		Transport: &diskCache{base: http.DefaultTransport, dir: dir},
		Timeout:   30 * time.Second,
	}
}

// Rate returns the rate of currency on day.
func (c *Client) Rate(ctx context.Context, currency string, day date.Date) (decimal.Decimal, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "USD" {
		return decimal.NewFromInt(1), nil
	}
	if c.appID == "" {
		return decimal.Decimal{}, fmt.Errorf("missing openexchangerates app id")
	}

	key := currency + " " + day.String()
	if v, found := c.memo.Get(key); found {
		return v.(decimal.Decimal), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Decimal{}, err
	}
	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("base", "USD")
	q.Set("symbols", currency)
	addr := fmt.Sprintf("%s/historical/%s.json?%s", c.baseURL, day, q.Encode())

	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot fetch %s rate on %s: %w", currency, day, err)
	}
	v, err := extract(jobj, currency)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot read %s rate on %s: %w", currency, day, err)
	}
	c.memo.SetDefault(key, v)
	return v, nil
}

// extract reads the rate of currency in a historical payload like
//
//	{"base": "USD", "rates": {"JPY": 131.2}}
func extract(jobj any, currency string) (decimal.Decimal, error) {
	path := "$.rates." + currency
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	var v decimal.Decimal
	switch x := jval.(type) {
	case json.Number:
		v, err = decimal.NewFromString(x.String())
	case float64:
		v = decimal.NewFromFloat(x)
	default:
		err = fmt.Errorf("%q: not a number: %v", path, jval)
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !v.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%q: invalid rate %v", path, v)
	}
	return v, nil
}

// parallelism bounds the number of requests in flight, the limiter paces them.
const parallelism = 4

// Fetch returns the rates of currency on each of days.
//
// It fails on the first day that cannot be fetched.
func (c *Client) Fetch(ctx context.Context, currency string, days []date.Date) (*date.History[decimal.Decimal], error) {
	days = slices.Clone(days)
	slices.SortFunc(days, date.Date.Compare)
	days = slices.Compact(days)

	values := make([]decimal.Decimal, len(days))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, day := range days {
		g.Go(func() (err error) {
			values[i], err = c.Rate(ctx, currency, day)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := new(date.History[decimal.Decimal])
	for i, day := range days {
		h.Append(day, values[i])
	}
	return h, nil
}
