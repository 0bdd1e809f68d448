// Package geo guesses the caller's country from public IP lookup services.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("all location services failed")

// Provider is one IP lookup endpoint and the JSON key holding the country name.
type Provider struct {
	Name       string
	URL        string
	CountryKey string
}

// DefaultProviders are tried in order.
func DefaultProviders() []Provider {
	return []Provider{
		{Name: "ipwho.is", URL: "https://ipwho.is/", CountryKey: "country"},
		{Name: "freeipapi", URL: "https://freeipapi.com/api/json", CountryKey: "countryName"},
		{Name: "ipapi.co", URL: "https://ipapi.co/json/", CountryKey: "country_name"},
	}
}

type Locator struct {
	HTTPClient *http.Client
	providers  []Provider
	logger     *zap.Logger
}

func NewLocator(providers []Provider, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(providers) == 0 {
		providers = DefaultProviders()
	}

	return &Locator{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		providers:  providers,
		logger:     logger,
	}
}

// Country returns the first country name any provider reports.
func (l *Locator) Country(ctx context.Context) (string, error) {
	for _, p := range l.providers {
		country, err := l.lookup(ctx, p)
		if err == nil {
			l.logger.Debug("country detected", zap.String("provider", p.Name), zap.String("country", country))
			return country, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		l.logger.Warn("location provider failed", zap.String("provider", p.Name), zap.Error(err))
	}

	return "", ErrUnavailable
}

func (l *Locator) lookup(ctx context.Context, p Provider) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	country, _ := body[p.CountryKey].(string)
	if country = strings.TrimSpace(country); country == "" {
		return "", fmt.Errorf("response has no %s", p.CountryKey)
	}

	return country, nil
}
