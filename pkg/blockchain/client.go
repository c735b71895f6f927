// Package blockchain fetches address data from the upstream ledger API.
//
// The upstream enforces a strict request budget, so the [Client] funnels
// every fetch through a shared [ratelimit.Governor], records every
// attempt in a [calllog.Log], and consults a [cache.Cache] before
// spending any budget at all. At most one upstream request is in flight
// per Client at any time.
package blockchain

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chainlens/chainlens/pkg/address"
	"github.com/chainlens/chainlens/pkg/cache"
	"github.com/chainlens/chainlens/pkg/calllog"
	"github.com/chainlens/chainlens/pkg/errors"
	"github.com/chainlens/chainlens/pkg/observability"
	"github.com/chainlens/chainlens/pkg/ratelimit"
)

// Default client settings, used when a Config field is zero.
const (
	DefaultBaseURL            = "https://blockchain.info"
	DefaultRequestTimeout     = 30 * time.Second
	DefaultRetryAfterFallback = 30 * time.Second
	DefaultCacheTTL           = 5 * time.Minute

	// DefaultPageLimit is the transactions-per-page default; MaxPageLimit
	// is the largest page the upstream serves.
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Config holds the externally tunable client settings.
type Config struct {
	// BaseURL is the ledger API root, without a trailing slash.
	BaseURL string
	// RequestTimeout bounds each individual HTTP attempt.
	RequestTimeout time.Duration
	// RetryAfterFallback is the wait applied to a throttled response
	// that carries no usable Retry-After header.
	RetryAfterFallback time.Duration
	// CacheTTL is how long fetched pages stay cached.
	CacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryAfterFallback <= 0 {
		c.RetryAfterFallback = DefaultRetryAfterFallback
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

// Client fetches address transaction pages from the ledger API.
//
// The client's mutex is held across the whole attempt sequence of a
// fetch, including the single automatic retry after a throttled
// response, so concurrent callers cannot interleave requests.
type Client struct {
	mu       sync.Mutex
	cfg      Config
	http     *http.Client
	governor *ratelimit.Governor
	calls    *calllog.Log
	store    cache.Cache

	sleep func(time.Duration)
}

// NewClient creates a Client. A nil governor gets default pacing, a nil
// call log gets a default-capacity log, and a nil cache disables caching.
func NewClient(cfg Config, gov *ratelimit.Governor, calls *calllog.Log, store cache.Cache) *Client {
	cfg = cfg.withDefaults()
	if gov == nil {
		gov = ratelimit.New(ratelimit.Config{})
	}
	if calls == nil {
		calls = calllog.New(0)
	}
	if store == nil {
		store = cache.NewNullCache()
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		governor: gov,
		calls:    calls,
		store:    store,
		sleep:    time.Sleep,
	}
}

// Calls returns the attempt log shared by this client.
func (c *Client) Calls() *calllog.Log { return c.calls }

// FetchAddress retrieves one transaction page for addr.
//
// The address is classified before anything else: invalid addresses and
// taproot addresses are rejected without touching the cache, the
// governor, or the network. A throttled response is retried exactly
// once after honoring Retry-After; a second throttle surfaces as a
// rate-limited error. Timeouts and transport failures are never retried.
func (c *Client) FetchAddress(ctx context.Context, addr string, limit, offset int, refresh bool) (*AddressDetails, error) {
	switch v := address.Classify(addr); {
	case v == address.VariantInvalid:
		return nil, errors.New(errors.ErrCodeInvalidAddress, "not a recognized address: %s", addr)
	case !v.Supported():
		return nil, errors.New(errors.ErrCodeUnsupportedAddress, "taproot addresses are not served by the ledger API: %s", addr)
	}

	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "limit must be between 1 and %d, got %d", MaxPageLimit, limit)
	}
	if offset < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "offset must not be negative, got %d", offset)
	}

	key := cache.PageKey(addr, limit, offset)
	if !refresh {
		if details := c.cached(ctx, key); details != nil {
			return details, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reqURL := fmt.Sprintf("%s/rawaddr/%s?limit=%d&offset=%d",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), url.PathEscape(addr), limit, offset)

	var retryAfter int
	for attempt := 0; attempt < 2; attempt++ {
		c.governor.Acquire()

		details, ra, err := c.attempt(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		if ra < 0 {
			c.storePage(ctx, key, details)
			return details, nil
		}

		retryAfter = ra
		if attempt == 0 {
			wait := time.Duration(ra) * time.Second
			observability.HTTP().OnWait(ctx, "retry-after", wait)
			c.sleep(wait)
		}
	}

	return nil, errors.Wrap(errors.ErrCodeRateLimited,
		&errors.RateLimitedError{RetryAfter: retryAfter},
		"ledger API throttled the retried request for %s", addr)
}

// attempt issues a single HTTP request and records it in the call log.
// A throttled response returns (nil, retryAfterSeconds, nil); every
// other outcome returns retryAfter -1.
func (c *Client) attempt(ctx context.Context, reqURL string) (*AddressDetails, int, error) {
	entry := calllog.Entry{
		Timestamp: time.Now().UnixMilli(),
		Method:    http.MethodGet,
		URL:       reqURL,
	}
	start := time.Now()
	observability.HTTP().OnRequest(ctx, http.MethodGet, reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, -1, errors.Wrap(errors.ErrCodeInternal, err, "building request for %s", reqURL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	entry.Duration = time.Since(start).Milliseconds()
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, reqURL, err)
		ferr := classifyTransport(err, reqURL, c.cfg.RequestTimeout)
		entry.Error = errors.UserMessage(ferr)
		c.calls.Record(entry)
		return nil, -1, ferr
	}
	defer resp.Body.Close()

	entry.Status = resp.StatusCode
	entry.StatusText = http.StatusText(resp.StatusCode)
	observability.HTTP().OnResponse(ctx, http.MethodGet, reqURL, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		ra := c.retryAfter(resp)
		entry.Error = fmt.Sprintf("rate limited, retry after %ds", ra)
		c.calls.Record(entry)
		return nil, ra, nil

	case resp.StatusCode == http.StatusNotFound:
		c.calls.Record(entry)
		return nil, -1, errors.New(errors.ErrCodeAddressNotFound, "address not found upstream")

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail := readDetail(resp.Body)
		entry.Error = detail
		c.calls.Record(entry)
		return nil, -1, errors.Wrap(errors.ErrCodeUpstream,
			&errors.UpstreamError{Status: resp.StatusCode, Detail: detail},
			"ledger API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.Error = err.Error()
		c.calls.Record(entry)
		return nil, -1, errors.Wrap(errors.ErrCodeNetwork, err, "reading response from %s", reqURL)
	}
	c.calls.Record(entry)

	var details AddressDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, -1, errors.Wrap(errors.ErrCodeInvalidPage, err, "ledger API returned a malformed page")
	}
	return &details, -1, nil
}

// retryAfter extracts the Retry-After wait in whole seconds, falling
// back to the configured default when the header is absent or unusable.
func (c *Client) retryAfter(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
			return secs
		}
	}
	return int(c.cfg.RetryAfterFallback / time.Second)
}

// cached returns the decoded page for key, or nil on any miss.
// Undecodable entries are evicted so the next fetch replaces them.
func (c *Client) cached(ctx context.Context, key string) *AddressDetails {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil
	}
	var details AddressDetails
	if err := json.Unmarshal(data, &details); err != nil {
		_ = c.store.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, key)
	return &details
}

// storePage caches a fetched page. Cache write failures are ignored;
// the page was fetched successfully and the caller gets it either way.
func (c *Client) storePage(ctx context.Context, key string, details *AddressDetails) {
	data, err := json.Marshal(details)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, data, c.cfg.CacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
}

// classifyTransport distinguishes timeouts from other transport
// failures. Neither is retried.
func classifyTransport(err error, reqURL string, timeout time.Duration) error {
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s exceeded the %s budget", reqURL, timeout)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s exceeded the %s budget", reqURL, timeout)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", reqURL)
}

// readDetail captures a bounded prefix of an error response body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
