package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "", time.Second)
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestSearchResults(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "Goa travel guide", "url": "https://example.com/goa", "content": "Beaches and forts"},
			{"title": "", "url": "https://example.com/2", "content": ""}
		]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New("tavily-key", srv.URL, time.Second)
	require.NoError(t, err)

	results, err := client.SearchResults(context.Background(), "  things to do in Goa ", 5)
	require.NoError(t, err)

	assert.Equal(t, "tavily-key", payload["api_key"])
	assert.Equal(t, "things to do in Goa", payload["query"])
	assert.Equal(t, 5.0, payload["num_results"])

	require.Len(t, results.Results, 2)
	assert.Equal(t, "Goa travel guide", results.Results[0].Title)
	assert.Equal(t, "No title", results.Results[1].Title)
	assert.Equal(t, "No content available", results.Results[1].Content)
}

func TestSearchResultsValidation(t *testing.T) {
	client, err := New("tavily-key", "http://localhost:0", time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.SearchResults(ctx, "  ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = client.SearchResults(ctx, "goa", 0)
	assert.ErrorIs(t, err, ErrBadMaxResults)

	_, err = client.SearchResults(ctx, "goa", 21)
	assert.ErrorIs(t, err, ErrBadMaxResults)
}

func TestSearchResultsStatusErrors(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrSearchFailed},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		client, err := New("tavily-key", srv.URL, time.Second)
		require.NoError(t, err)

		_, err = client.SearchResults(context.Background(), "goa", 5)
		assert.ErrorIs(t, err, tc.want)
		srv.Close()
	}
}

func TestSearchReturnsJSONSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"title": "Goa", "url": "https://example.com", "content": "info"}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New("tavily-key", srv.URL, time.Second)
	require.NoError(t, err)

	snippet, err := client.Search(context.Background(), "goa", 5)
	require.NoError(t, err)

	var decoded Results
	require.NoError(t, json.Unmarshal([]byte(snippet), &decoded))
	assert.Equal(t, "goa", decoded.Query)
	require.Len(t, decoded.Results, 1)
}
