package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/resilience"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept       = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	defaultAcceptLang   = "en-US,en;q=0.5"
	defaultMaxBodyBytes = 5 << 20
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	// Timeout bounds a single attempt. Default: 30s.
	Timeout time.Duration
	// Retry is the backoff policy for 429/502 responses and network errors.
	Retry resilience.RetryConfig
	// MaxBodyBytes caps how much of a response body is read. Default: 5 MiB.
	MaxBodyBytes int64
	// RatePerHost paces requests to the same host (requests per second).
	// Zero disables pacing.
	RatePerHost float64
	// AllowInsecureFallback retries once without certificate validation when
	// the TLS handshake fails verification.
	AllowInsecureFallback bool
	// Transport overrides the base transport. The insecure fallback clones it.
	Transport *http.Transport
	Metrics   *metrics.Metrics
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements Fetcher using net/http. One HTTPFetcher is a
// session: it owns its connection pool until Close is called.
type HTTPFetcher struct {
	client   *http.Client
	insecure *http.Client
	opts     HTTPOptions

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	f := &HTTPFetcher{
		client:   &http.Client{Timeout: opts.Timeout, Transport: transport},
		opts:     opts,
		limiters: make(map[string]*AdaptiveLimiter),
	}

	if opts.AllowInsecureFallback {
		insecure := transport.Clone()
		if insecure.TLSClientConfig == nil {
			insecure.TLSClientConfig = &tls.Config{}
		}
		insecure.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // explicit opt-in downgrade
		f.insecure = &http.Client{Timeout: opts.Timeout, Transport: insecure}
	}
	return f
}

// Close releases idle connections held by the session.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
	if f.insecure != nil {
		f.insecure.CloseIdleConnections()
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *AdaptiveLimiter {
	if f.opts.RatePerHost <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[u.Host]
	if !ok {
		lim = NewAdaptiveLimiter(rate.Limit(f.opts.RatePerHost), 1)
		f.limiters[u.Host] = lim
	}
	return lim
}

// Fetch retrieves rawURL. 429 and 502 responses back off after every attempt
// and give up with a resilience.TransientError wrapping the StatusError once
// attempts run out. Other non-2xx
// statuses fail at once. Network errors back off between attempts only. A
// certificate verification failure triggers a single unverified attempt
// whose outcome is final.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	log := zap.L().With(zap.String("url", rawURL))
	lim := f.limiterFor(rawURL)

	var lastErr error
	for attempt := 0; attempt < f.opts.Retry.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return "", eris.Wrap(err, "fetcher: rate limiter wait")
			}
		}

		body, err := f.get(ctx, f.client, rawURL)
		if err == nil {
			if lim != nil {
				lim.OnSuccess()
			}
			f.opts.Metrics.ObserveFetch(metrics.FetchOK)
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr):
			if !statusErr.Retryable() {
				f.opts.Metrics.ObserveFetch(metrics.FetchStatus)
				return "", err
			}
			if lim != nil && statusErr.StatusCode == http.StatusTooManyRequests {
				lim.OnRateLimit()
			}
			log.Warn("fetcher: retryable status, backing off",
				zap.Int("status", statusErr.StatusCode),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", f.opts.Retry.Backoff(attempt)),
			)
			f.opts.Metrics.IncFetchRetry()
			if werr := f.opts.Retry.Wait(ctx, attempt); werr != nil {
				f.opts.Metrics.ObserveFetch(metrics.FetchError)
				return "", eris.Wrap(werr, "fetcher: backoff interrupted")
			}

		case f.insecure != nil && resilience.IsTLSVerification(err):
			return f.fetchInsecure(ctx, rawURL, err)

		case ctx.Err() != nil:
			f.opts.Metrics.ObserveFetch(metrics.FetchError)
			return "", eris.Wrap(err, "fetcher: request cancelled")

		default:
			log.Warn("fetcher: request failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if attempt < f.opts.Retry.MaxAttempts-1 {
				f.opts.Metrics.IncFetchRetry()
				if werr := f.opts.Retry.Wait(ctx, attempt); werr != nil {
					f.opts.Metrics.ObserveFetch(metrics.FetchError)
					return "", eris.Wrap(werr, "fetcher: backoff interrupted")
				}
			}
		}
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) {
		f.opts.Metrics.ObserveFetch(metrics.FetchStatus)
		return "", lastErr
	}
	f.opts.Metrics.ObserveFetch(metrics.FetchError)
	return "", eris.Wrapf(lastErr, "fetcher: giving up on %s after %d attempts", rawURL, f.opts.Retry.MaxAttempts)
}

func (f *HTTPFetcher) fetchInsecure(ctx context.Context, rawURL string, cause error) (string, error) {
	zap.L().Warn("fetcher: certificate verification failed, retrying without verification",
		zap.String("url", rawURL),
		zap.Error(cause),
	)
	f.opts.Metrics.IncTLSDowngrade()

	body, err := f.get(ctx, f.insecure, rawURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			f.opts.Metrics.ObserveFetch(metrics.FetchStatus)
			return "", err
		}
		f.opts.Metrics.ObserveFetch(metrics.FetchError)
		return "", eris.Wrap(err, "fetcher: insecure retry")
	}
	f.opts.Metrics.ObserveFetch(metrics.FetchOK)
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", defaultAcceptLang)
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		statusErr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		if statusErr.Retryable() {
			return "", resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return "", statusErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read body")
	}
	return string(data), nil
}
