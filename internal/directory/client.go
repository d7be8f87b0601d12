// Package directory talks to the external university directory API the
// nightly ingestion pulls from.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/univdir/universities-api/internal/config"
	"github.com/univdir/universities-api/internal/domain"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// Record is one entry in the directory's search response.
type Record struct {
	Name          string   `json:"name"`
	Domains       []string `json:"domains"`
	Country       string   `json:"country"`
	AlphaTwoCode  string   `json:"alpha_two_code"`
	StateProvince string   `json:"state-province"`
	WebPages      []string `json:"web_pages"`
}

func (r Record) ToUniversity() domain.University {
	return domain.University{
		Name:          r.Name,
		Domains:       r.Domains,
		Country:       r.Country,
		AlphaTwoCode:  r.AlphaTwoCode,
		StateProvince: r.StateProvince,
		WebPages:      r.WebPages,
	}
}

//go:generate mockgen -source=client.go -destination=gomock/client_mock.go -package=gomock
type Client interface {
	SearchByCountry(ctx context.Context, country string) ([]Record, error)
	FetchCountries(ctx context.Context, countries []string) ([]Record, error)
	Ping(ctx context.Context) error
}

type RestClient struct {
	http      *resty.Client
	searchURL string
	logger    *slog.Logger
}

func NewClient(cfg *config.Config, logger *slog.Logger) *RestClient {
	c := resty.New().
		SetTimeout(cfg.DirectoryTimeout).
		SetHeader("Accept", "application/json")
	return &RestClient{
		http:      c,
		searchURL: cfg.DirectoryAPIURL,
		logger:    logger,
	}
}

func (c *RestClient) SearchByCountry(ctx context.Context, country string) ([]Record, error) {
	var records []Record
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("country", country).
		SetResult(&records).
		Get(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("directory search %q: %w", country, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("directory search %q: status %d", country, resp.StatusCode())
	}
	return records, nil
}

// FetchCountries queries all countries concurrently. Any single failure
// fails the whole fetch so an ingestion run never persists a partial
// view of the directory.
func (c *RestClient) FetchCountries(ctx context.Context, countries []string) ([]Record, error) {
	results := make([][]Record, len(countries))
	g, gctx := errgroup.WithContext(ctx)
	for i, country := range countries {
		g.Go(func() error {
			records, err := c.SearchByCountry(gctx, country)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Record
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all, nil
}

// Ping issues a minimal search to confirm the directory answers.
func (c *RestClient) Ping(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("country", "brasil").
		Get(c.searchURL)
	if err != nil {
		return fmt.Errorf("directory ping: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("directory ping: status %d", resp.StatusCode())
	}
	return nil
}

// WaitReady polls the directory until it answers or attempts run out.
// The server refuses to start when the directory never comes up.
func WaitReady(ctx context.Context, client Client, attempts int, backoff time.Duration, logger *slog.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = client.Ping(ctx)
		if lastErr == nil {
			logger.Info("university directory reachable", "attempt", attempt)
			return nil
		}
		logger.Warn("university directory not ready",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr,
		)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return fmt.Errorf("university directory unreachable after %d attempts: %w", attempts, lastErr)
}
