package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent looks like a desktop browser; several recipe sites
	// reject obvious bot identifiers outright.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultTimeout   = 10 * time.Second
)

// Options configures a Fetcher. Zero values fall back to the defaults above.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// HostInterval paces requests to the same host. Zero disables pacing.
	HostInterval  time.Duration
	RespectRobots bool
	// ProxyURL sends every request through a forward proxy, e.g.
	// "http://proxy.internal:3128". Empty means a direct connection.
	ProxyURL string
}

// Fetcher retrieves raw page content through Colly with a spoofed client
// identity and a bounded timeout. Each call makes exactly one attempt.
type Fetcher struct {
	userAgent     string
	timeout       time.Duration
	respectRobots bool
	hostInterval  time.Duration
	proxyURL      string

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s (status %d): %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetcher(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Fetcher{
		userAgent:     opts.UserAgent,
		timeout:       opts.Timeout,
		respectRobots: opts.RespectRobots,
		hostInterval:  opts.HostInterval,
		proxyURL:      strings.TrimSpace(opts.ProxyURL),
		hosts:         make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL and returns the response body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return f.do(ctx, http.MethodGet, rawURL, nil, nil)
}

// Post sends body to rawURL with the given content type and returns the response body.
func (f *Fetcher) Post(ctx context.Context, rawURL, contentType string, body []byte) ([]byte, error) {
	hdr := http.Header{}
	hdr.Set("Content-Type", contentType)
	return f.do(ctx, http.MethodPost, rawURL, bytes.NewReader(body), hdr)
}

func (f *Fetcher) do(ctx context.Context, method, rawURL string, payload io.Reader, hdr http.Header) ([]byte, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if err := f.waitForHost(ctx, hostKey(target)); err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	body, status, err := f.fetchOnce(ctx, method, target, payload, hdr)
	if err != nil {
		return nil, &FetchError{URL: target, Status: status, Err: err}
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, method, target string, payload io.Reader, hdr http.Header) ([]byte, int, error) {
	c, err := f.newCollector()
	if err != nil {
		return nil, 0, err
	}

	var body []byte
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	if hdr == nil {
		hdr = http.Header{}
	}
	if hdr.Get("Accept-Language") == "" {
		hdr.Set("Accept-Language", "en-US,en;q=0.9")
	}

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(method, target, payload, collyCtx, hdr); err != nil {
		return nil, status, err
	}
	if err := ctx.Err(); err != nil {
		return nil, status, err
	}
	if reqErr != nil {
		return nil, status, reqErr
	}
	if status < 200 || status >= 300 {
		return nil, status, fmt.Errorf("status %d", status)
	}
	return body, status, nil
}

func (f *Fetcher) newCollector() (*colly.Collector, error) {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.IgnoreRobotsTxt = !f.respectRobots
	c.SetRequestTimeout(f.timeout)
	if f.proxyURL != "" {
		if err := c.SetProxy(f.proxyURL); err != nil {
			return nil, fmt.Errorf("proxy %q: %w", f.proxyURL, err)
		}
	}

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c, nil
}

func (f *Fetcher) waitForHost(ctx context.Context, host string) error {
	if f.hostInterval <= 0 {
		return nil
	}
	return f.limiterFor(host).Wait(ctx)
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	if host == "" {
		host = "default"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.hosts[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(f.hostInterval), 1)
	f.hosts[host] = l
	return l
}

func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	return normalizeHost(u.Hostname())
}
