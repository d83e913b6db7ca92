package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for search requests.
var (
	ErrAPIKeyRequired = errors.New("websearch: tavily api key is required")
	ErrEmptyQuery     = errors.New("websearch: search query cannot be empty")
	ErrBadMaxResults  = errors.New("websearch: max results must be between 1 and 20")
	ErrUnauthorized   = errors.New("websearch: invalid api key")
	ErrRateLimited    = errors.New("websearch: api rate limit exceeded")
	ErrSearchFailed   = errors.New("websearch: search request failed")
)

// Client performs web searches through the Tavily API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a client. The API key is required; baseURL defaults to the
// public Tavily endpoint.
func New(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.tavily.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}, nil
}

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Results is a search response.
type Results struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// SearchResults runs a search and returns typed hits. Missing titles and
// content get readable placeholders.
func (c *Client) SearchResults(ctx context.Context, query string, maxResults int) (*Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults < 1 || maxResults > 20 {
		return nil, ErrBadMaxResults
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":     c.apiKey,
		"query":       query,
		"num_results": maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("websearch: payload marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("websearch: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var decoded struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	results := make([]Result, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		content := r.Content
		if content == "" {
			content = "No content available"
		}
		results = append(results, Result{Title: title, URL: r.URL, Content: content})
	}

	return &Results{Query: query, Results: results}, nil
}

// Search runs a search and returns the hits as a JSON snippet for prompt
// assembly.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (string, error) {
	results, err := c.SearchResults(ctx, query, maxResults)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("websearch: results marshal: %w", err)
	}
	return string(data), nil
}
