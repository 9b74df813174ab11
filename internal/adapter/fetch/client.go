// Package fetch retrieves the three startup data sources over HTTP: the
// state geometry topology, the language CSV, and the population CSV.
package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mapfolk/language-atlas/internal/domain"
	"github.com/mapfolk/language-atlas/internal/observability"
)

// Source labels used in logs and metrics.
const (
	sourceGeometry   = "geometry"
	sourceLanguage   = "language"
	sourcePopulation = "population"
)

// Client fetches and decodes the external data sources. It implements
// dataset.Fetcher.
type Client struct {
	geometryURL   string
	languageURL   string
	populationURL string

	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a source fetch client with a shared per-request timeout.
func NewClient(geometryURL, languageURL, populationURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		geometryURL:   geometryURL,
		languageURL:   languageURL,
		populationURL: populationURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchAtlas retrieves and decodes the TopoJSON geometry document.
func (c *Client) FetchAtlas(ctx context.Context) (*domain.Atlas, error) {
	body, err := c.get(ctx, sourceGeometry, c.geometryURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	atlas, err := decodeTopology(body)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(sourceGeometry).Inc()
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	return atlas, nil
}

// FetchLanguageTable retrieves the language CSV as rows including the header.
func (c *Client) FetchLanguageTable(ctx context.Context) ([][]string, error) {
	return c.fetchCSV(ctx, sourceLanguage, c.languageURL)
}

// FetchPopulationTable retrieves the population CSV as rows including the header.
func (c *Client) FetchPopulationTable(ctx context.Context) ([][]string, error) {
	return c.fetchCSV(ctx, sourcePopulation, c.populationURL)
}

func (c *Client) fetchCSV(ctx context.Context, source, url string) ([][]string, error) {
	body, err := c.get(ctx, source, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	// Source tables are hand-maintained; tolerate ragged rows and let
	// ingestion pad short ones.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("decode %s csv: %w", source, err)
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, source, url string) (io.ReadCloser, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("create %s request: %w", source, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		c.metrics.FetchErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("fetch %s: status %d: %s", source, resp.StatusCode, excerpt)
	}

	c.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	c.logger.Debug("source fetched", "source", source, "url", url)
	return resp.Body, nil
}
