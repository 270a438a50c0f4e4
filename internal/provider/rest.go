package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/models"
)

// restClient is the shared request/decode plumbing behind the REST providers
type restClient struct {
	name    string
	baseURL string
	apiKey  string
	http    *RateLimitedHTTPClient
}

func (c *restClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewProviderError(c.name, ErrCodeInvalidData, "failed to build request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return NewProviderError(c.name, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewProviderError(c.name, ErrCodeNotFound, "resource not found", models.ErrMatchNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewProviderError(c.name, ErrCodeAuthenticationFailed, "authentication failed", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(c.name, ErrCodeRateLimitExceeded, "rate limited by upstream", nil)
	case resp.StatusCode >= 500:
		return NewProviderError(c.name, ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), ErrServerError)
	case resp.StatusCode != http.StatusOK:
		return NewProviderError(c.name, ErrCodeInvalidData, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(c.name, ErrCodeInvalidData, "failed to decode response", err)
	}

	return nil
}

// RESTStatsProvider fetches historical samples over the normalized REST API
type RESTStatsProvider struct {
	rest restClient
}

// NewRESTStatsProvider creates a stats provider against a base URL
func NewRESTStatsProvider(baseURL, apiKey string, client *RateLimitedHTTPClient) *RESTStatsProvider {
	return &RESTStatsProvider{rest: restClient{name: "rest-stats", baseURL: baseURL, apiKey: apiKey, http: client}}
}

// FetchSamples retrieves recent samples for a team, most-recent-first
func (p *RESTStatsProvider) FetchSamples(ctx context.Context, teamID string, limit int) ([]models.Sample, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))

	var samples []models.Sample
	path := "/teams/" + url.PathEscape(teamID) + "/samples"
	if err := p.rest.getJSON(ctx, path, query, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (p *RESTStatsProvider) Name() string {
	return p.rest.name
}

// RESTOddsProvider fetches upcoming events and quotes over the normalized
// REST API
type RESTOddsProvider struct {
	rest restClient
}

// NewRESTOddsProvider creates an odds provider against a base URL
func NewRESTOddsProvider(baseURL, apiKey string, client *RateLimitedHTTPClient) *RESTOddsProvider {
	return &RESTOddsProvider{rest: restClient{name: "rest-odds", baseURL: baseURL, apiKey: apiKey, http: client}}
}

// FetchEvents retrieves the upcoming events the provider quotes
func (p *RESTOddsProvider) FetchEvents(ctx context.Context) ([]models.EventRecord, error) {
	var events []models.EventRecord
	if err := p.rest.getJSON(ctx, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchQuotes retrieves quotes for an event market line
func (p *RESTOddsProvider) FetchQuotes(ctx context.Context, eventID, market string, line float64, side models.BetSide) ([]models.BookmakerQuote, error) {
	query := url.Values{}
	query.Set("market", market)
	query.Set("line", fmt.Sprintf("%g", line))
	query.Set("side", string(side))

	var quotes []models.BookmakerQuote
	path := "/events/" + url.PathEscape(eventID) + "/odds"
	if err := p.rest.getJSON(ctx, path, query, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (p *RESTOddsProvider) Name() string {
	return p.rest.name
}

// RESTResultProvider fetches finished-event results over the normalized
// REST API. Every call here is expected to pass the quota gate first.
type RESTResultProvider struct {
	rest restClient
}

// NewRESTResultProvider creates a result provider against a base URL
func NewRESTResultProvider(baseURL, apiKey string, client *RateLimitedHTTPClient) *RESTResultProvider {
	return &RESTResultProvider{rest: restClient{name: "rest-results", baseURL: baseURL, apiKey: apiKey, http: client}}
}

// FetchResult retrieves the final result for an event
func (p *RESTResultProvider) FetchResult(ctx context.Context, eventID string) (*EventResult, error) {
	var result EventResult
	path := "/events/" + url.PathEscape(eventID) + "/result"
	if err := p.rest.getJSON(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	if !result.Finished {
		return &result, fmt.Errorf("event %s: %w", eventID, models.ErrMatchNotFinished)
	}
	return &result, nil
}

func (p *RESTResultProvider) Name() string {
	return p.rest.name
}
