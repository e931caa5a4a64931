package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"premiumflow/config"
	"premiumflow/logger"
	"premiumflow/models"
)

const (
	defaultUserAgent      = "Mozilla/5.0"
	defaultAcceptLanguage = "en-US,en;q=0.9"
	defaultTimeout        = 10 * time.Second
)

// Client fetches option-chain snapshots from the NSE endpoints. The upstream
// refuses bare API calls, so every snapshot fetch first visits the
// human-facing option-chain page to collect session cookies and then replays
// them on the JSON API call.
type Client struct {
	cfg       config.NSESourceConfig
	transport http.RoundTripper
	limiter   *rate.Limiter
	timeout   time.Duration
	log       *logger.Log
}

// NewClient creates a Client for the configured symbol. The rate limiter and
// connection pool are shared by all fetches; session cookies are not.
func NewClient(cfg *config.Config) *Client {
	src := cfg.Source.NSE

	pool := src.ConnectionPool
	base := &http.Transport{
		MaxIdleConns:        pool.MaxIdleConns,
		MaxIdleConnsPerHost: pool.MaxIdleConns,
		MaxConnsPerHost:     pool.MaxConnsPerHost,
		IdleConnTimeout:     time.Duration(pool.IdleConnTimeoutMs) * time.Millisecond,
		DisableCompression:  false,
	}

	agent := src.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}
	language := src.AcceptLanguage
	if language == "" {
		language = defaultAcceptLanguage
	}

	rl := src.RateLimit
	rps := rl.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := rl.BurstSize
	if burst <= 0 {
		burst = 1
	}

	timeout := time.Duration(src.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		cfg:       src,
		transport: browserTransport{agent: agent, language: language, base: base},
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		timeout:   timeout,
		log:       logger.GetLogger(),
	}

	client.log.WithComponent("nse_client").WithFields(logger.Fields{
		"symbol":             src.Symbol,
		"timeout":            timeout,
		"max_conns_per_host": pool.MaxConnsPerHost,
	}).Info("nse client initialized")

	return client
}

// Symbol returns the instrument symbol the client is configured for.
func (c *Client) Symbol() string {
	return c.cfg.Symbol
}

// FetchChain retrieves one option-chain snapshot. Each call runs on a fresh
// cookie jar so concurrent fetches never share session state.
func (c *Client) FetchChain(ctx context.Context) (*models.OptionChain, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	session := &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   c.timeout,
	}

	if err := c.bootstrapSession(ctx, session); err != nil {
		return nil, fmt.Errorf("session bootstrap failed: %w", err)
	}

	chain, err := c.fetchChainData(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("option chain fetch failed: %w", err)
	}

	return chain, nil
}

// bootstrapSession visits the option-chain page so the upstream sets its
// session cookies on the jar. The body is discarded.
func (c *Client) bootstrapSession(ctx context.Context, session *http.Client) error {
	log := c.log.WithComponent("nse_client").WithFields(logger.Fields{"operation": "bootstrap_session"})

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.PageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
	logger.IncrementUpstreamFetch(0)
	logger.LogPerformanceEntry(log, "nse_client", "page_request", time.Since(start), nil)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return nil
}

// fetchChainData calls the JSON API for the configured symbol reusing the
// session cookies collected during bootstrap.
func (c *Client) fetchChainData(ctx context.Context, session *http.Client) (*models.OptionChain, error) {
	log := c.log.WithComponent("nse_client").WithFields(logger.Fields{
		"operation": "fetch_chain",
		"symbol":    c.cfg.Symbol,
	})

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s?symbol=%s", c.cfg.APIURL, url.QueryEscape(c.cfg.Symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.cfg.PageURL)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	resp, err := session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.IncrementUpstreamFetch(len(body))
	logger.LogPerformanceEntry(log, "nse_client", "api_request", time.Since(start), logger.Fields{
		"bytes": len(body),
	})

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var chain models.OptionChain
	if err := json.Unmarshal(body, &chain); err != nil {
		return nil, fmt.Errorf("failed to decode option chain: %w", err)
	}

	if chain.Empty() {
		return nil, fmt.Errorf("option chain response is missing records")
	}

	log.WithFields(logger.Fields{
		"expiries": len(chain.Records.ExpiryDates),
		"rows":     len(chain.Records.Data),
	}).Debug("fetched option chain snapshot")

	return &chain, nil
}
