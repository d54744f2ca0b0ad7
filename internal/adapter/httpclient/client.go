package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/niksmo/korzina/pkg/retry"
)

var _ port.ProductQuerier = (*ProductQueryService)(nil)

const (
	productsPath    = "/api/products"
	maxBodySize     = 8 << 20
	retryDelay      = 200 * time.Millisecond
	defaultAttempts = 1
)

var ErrInvalidBaseURL = errors.New("invalid base url")

type Opt func(*clientOpts) error

type clientOpts struct {
	httpClient *http.Client
	timeout    time.Duration
	attempts   int
}

// HTTPClientOpt replaces the default [http.Client].
func HTTPClientOpt(c *http.Client) Opt {
	return func(o *clientOpts) error {
		if c == nil {
			return errors.New("http client is nil")
		}
		o.httpClient = c
		return nil
	}
}

// TimeoutOpt limits a single request. Zero keeps the transport default.
func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %s", d)
		}
		o.timeout = d
		return nil
	}
}

// RetryAttemptsOpt sets how many times a transport failure is tried.
func RetryAttemptsOpt(n int) Opt {
	return func(o *clientOpts) error {
		if n < 1 {
			return fmt.Errorf("retry attempts %d: must be positive", n)
		}
		o.attempts = n
		return nil
	}
}

// A ProductQueryService requests shop products from the catalog endpoint.
type ProductQueryService struct {
	httpClient *http.Client
	endpoint   *url.URL
	retryCfg   retry.RetryConfig
}

func NewProductQueryService(
	baseURL string, opts ...Opt,
) (ProductQueryService, error) {
	const op = "NewProductQueryService"

	endpoint, err := parseEndpoint(baseURL)
	if err != nil {
		return ProductQueryService{}, fmt.Errorf("%s: %w", op, err)
	}

	options := clientOpts{attempts: defaultAttempts}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ProductQueryService{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if options.timeout != 0 {
		c := *httpClient
		c.Timeout = options.timeout
		httpClient = &c
	}

	return ProductQueryService{
		httpClient: httpClient,
		endpoint:   endpoint,
		retryCfg: retry.RetryConfig{
			MaxAttempts: options.attempts,
			Backoff:     retry.LinearBackoff(retryDelay),
			ShouldRetry: func(err error) bool {
				return errors.Is(err, domain.ErrTransport)
			},
		},
	}, nil
}

func parseEndpoint(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	return u.JoinPath(productsPath), nil
}

// FetchProducts requests the products of q.ShopID, searching q.SearchTerm
// when present.
func (s ProductQueryService) FetchProducts(
	ctx context.Context, q domain.Query,
) ([]domain.Product, error) {
	const op = "ProductQueryService.FetchProducts"
	log := slog.With("op", op, "shop", q.ShopID, "q", q.SearchTerm)

	if q.ShopID == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyShop)
	}

	ps, err := retry.DoWithResult(ctx, s.retryCfg, func() ([]domain.Product, error) {
		return s.fetch(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("products fetched", "nProducts", len(ps))
	return ps, nil
}

func (s ProductQueryService) fetch(
	ctx context.Context, q domain.Query,
) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, s.requestURL(q), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrProtocol, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrProtocol, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", domain.ErrTransport, err)
	}

	return decodeProducts(body)
}

func (s ProductQueryService) requestURL(q domain.Query) string {
	u := *s.endpoint
	values := url.Values{}
	values.Set("shop", q.ShopID)
	if q.HasSearchTerm() {
		values.Set("q", q.SearchTerm)
	}
	u.RawQuery = values.Encode()
	return u.String()
}
