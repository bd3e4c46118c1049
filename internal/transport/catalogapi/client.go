package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Defaults for Config fields left zero.
const (
	DefaultProductsPath  = "/products"
	DefaultBundlingsPath = "/bundlings"
	DefaultTimeout       = 15 * time.Second
	DefaultMaxPages      = 100
)

// maxErrorBody caps how much of an upstream error body is logged.
const maxErrorBody = 512

// Compile-time check: Client implements catalog.Fetcher.
var _ catalog.Fetcher = (*Client)(nil)

// Config holds the upstream catalog API settings.
type Config struct {
	BaseURL       string
	ProductsPath  string
	BundlingsPath string
	APIKey        string
	Timeout       time.Duration
	MaxPages      int
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client fetches the full product and bundling lists from the catalog API.
type Client struct {
	base          *url.URL
	productsPath  string
	bundlingsPath string
	apiKey        string
	maxPages      int
	http          *http.Client
	logger        *zap.Logger
}

// New creates a catalog API client.
func New(cfg *Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", cfg.BaseURL)
	}

	c := &Client{
		base:          base,
		productsPath:  cfg.ProductsPath,
		bundlingsPath: cfg.BundlingsPath,
		apiKey:        cfg.APIKey,
		maxPages:      cfg.MaxPages,
		http:          cfg.HTTPClient,
		logger:        cfg.Logger,
	}
	if c.productsPath == "" {
		c.productsPath = DefaultProductsPath
	}
	if c.bundlingsPath == "" {
		c.bundlingsPath = DefaultBundlingsPath
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Fetch implements catalog.Fetcher. Products and bundlings are fetched
// concurrently; either failing fails the whole call.
func (c *Client) Fetch(ctx context.Context) ([]catalog.Item, error) {
	var products, bundlings []catalog.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.fetchAll(gctx, c.productsPath, catalog.Product)
		return err
	})
	g.Go(func() error {
		var err error
		bundlings, err = c.fetchAll(gctx, c.bundlingsPath, catalog.Bundling)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(products)+len(bundlings))
	items = append(items, products...)
	items = append(items, bundlings...)
	return items, nil
}

// fetchAll follows next_page_url links until the last page.
func (c *Client) fetchAll(ctx context.Context, path string, t catalog.ItemType) ([]catalog.Item, error) {
	next := c.base.JoinPath(path).String()
	var items []catalog.Item

	for page := 1; next != ""; page++ {
		if page > c.maxPages {
			return nil, fmt.Errorf("%w: %s exceeded %d pages", domain.ErrCatalogFetch, path, c.maxPages)
		}
		p, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for i := range p.Data {
			items = append(items, p.Data[i].toDomain(t))
		}
		next, err = c.resolve(p.NextPageURL)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("catalog list fetched", zap.String("path", path), zap.Int("items", len(items)))
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, rawURL string) (*pageDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("catalog API error",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrCatalogFetch, req.URL.Path, resp.StatusCode)
	}

	var p pageDTO
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrCatalogFetch, req.URL.Path, err)
	}
	return &p, nil
}

// resolve turns a possibly relative next-page link into an absolute URL.
// Links leaving the configured origin are rejected: every request carries the API key.
func (c *Client) resolve(next string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: bad next_page_url %q", domain.ErrCatalogFetch, next)
	}
	abs := c.base.ResolveReference(u)
	if !strings.EqualFold(abs.Scheme, c.base.Scheme) || !strings.EqualFold(abs.Host, c.base.Host) {
		return "", fmt.Errorf("%w: next_page_url %s://%s leaves catalog origin %s://%s",
			domain.ErrCatalogFetch, abs.Scheme, abs.Host, c.base.Scheme, c.base.Host)
	}
	return abs.String(), nil
}
