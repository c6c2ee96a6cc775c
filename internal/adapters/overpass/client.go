// internal/adapters/overpass/client.go
package overpass

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/domain"
)

const (
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"
	DefaultTimeout  = 15 * time.Second
)

type Client struct {
	endpoint  string
	hc        *http.Client
	rl        *rate.Limiter
	attempts  int
	userAgent string
	timeout   time.Duration
}

type Option func(*Client)

// WithTimeout bounds each HTTP request and the server-side query.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRate sets the client-side request rate; burst equals ceil(rps).
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			burst := int(rps)
			if float64(burst) < rps {
				burst++
			}
			c.rl = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithAttempts caps tries per query, including the first one.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:  endpoint,
		rl:        rate.NewLimiter(rate.Limit(2), 2),
		attempts:  3,
		userAgent: "counsel-locator/1.0",
		timeout:   DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	c.hc = &http.Client{Timeout: c.timeout}
	return c
}

// ---- Public API ----

// Element is one entry of an Overpass JSON response.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *Point            `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type response struct {
	Elements []Element `json:"elements"`
}

// Filter groups run as separate queries so one slow or failing group does
// not hide the results of the other.
var (
	tagFilters = []string{
		`["office"="lawyer"]`,
		`["amenity"="lawyer"]`,
		`["office"="legal"]`,
		`["lawyer"]`,
	}
	nameFilters = []string{
		`["name"~"lawyer|attorney|advocate|legal aid|law firm|law chambers|law associates|law office",i]`,
	}
)

// Nearby returns named POIs within radiusKm of (lat, lng). Failures of any
// kind are logged and produce fewer (possibly zero) results, never an error.
func (c *Client) Nearby(ctx context.Context, lat, lng, radiusKm float64) []domain.POI {
	radiusM := radiusKm * 1000
	qlTimeout := int(c.timeout / time.Second)

	var (
		mu     sync.Mutex
		merged = map[string]domain.POI{}
		order  []string
	)
	var g errgroup.Group
	for _, filters := range [][]string{tagFilters, nameFilters} {
		ql := BuildAroundQuery(filters, lat, lng, radiusM, qlTimeout)
		g.Go(func() error {
			els, err := c.Query(ctx, ql)
			if err != nil {
				log.Warn().Err(err).Str("err_type", observability.LabelErr(err)).
					Float64("lat", lat).Float64("lng", lng).Msg("overpass query failed")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, el := range els {
				p, ok := toPOI(el)
				if !ok {
					continue
				}
				if _, seen := merged[p.Key()]; seen {
					continue
				}
				merged[p.Key()] = p
				order = append(order, p.Key())
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.POI, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}

// BuildAroundQuery renders an Overpass QL union of nwr filters around a point.
func BuildAroundQuery(filters []string, lat, lng, radiusM float64, timeoutSec int) string {
	if timeoutSec <= 0 {
		timeoutSec = int(DefaultTimeout / time.Second)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSec)
	for _, f := range filters {
		fmt.Fprintf(&b, "  nwr%s(around:%.0f,%.6f,%.6f);\n", f, radiusM, lat, lng)
	}
	b.WriteString(");\nout center tags;\n")
	return b.String()
}

// toPOI converts an element; ways and relations use their center.
func toPOI(el Element) (domain.POI, bool) {
	tags := domain.Tags(el.Tags)
	if tags.Name() == "" {
		return domain.POI{}, false
	}
	lat, lon := el.Lat, el.Lon
	if el.Center != nil {
		lat, lon = el.Center.Lat, el.Center.Lon
	}
	if lat == 0 && lon == 0 {
		return domain.POI{}, false
	}
	kind := el.Type
	if kind == "" {
		kind = "node"
	}
	return domain.POI{ID: el.ID, Kind: kind, Lat: lat, Lng: lon, Tags: tags}, true
}

// ---- Internals ----

var (
	ErrBadQuery    = errors.New("overpass: bad query")
	ErrRateLimited = errors.New("overpass: rate limited")
)

// Query POSTs ql to the interpreter with client-side rate limiting and
// retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) Query(ctx context.Context, ql string) ([]Element, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	body := url.Values{"data": {ql}}.Encode()

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		last := i == c.attempts-1

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("overpass", "interpreter", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
			if !last && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("overpass", "interpreter", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var out response
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("overpass: decode: %w", err)
			}
			return out.Elements, nil

		case http.StatusBadRequest:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrBadQuery, strings.TrimSpace(string(b)))

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			wait = min(wait, c.timeout)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = ErrRateLimited
			} else {
				lastErr = fmt.Errorf("%w: remote %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
			}
			if !last && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("overpass: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
