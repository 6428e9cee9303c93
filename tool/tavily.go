package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
)

// ErrMissingAPIKey is returned when a search tool is created without credentials.
var ErrMissingAPIKey = errors.New("TAVILY_API_KEY not set")

// SearchResult is one Tavily hit.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	RawContent string  `json:"raw_content,omitempty"`
}

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

// TavilySearch searches the web through the Tavily API.
type TavilySearch struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	SearchDepth       string
	IncludeRawContent bool

	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ Definer = (*TavilySearch)(nil)

// TavilyOption configures TavilySearch.
type TavilyOption func(*TavilySearch)

// WithTavilyBaseURL sets the search endpoint.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results to return (1-20).
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		t.MaxResults = min(max(n, 1), 20)
	}
}

// WithTavilySearchDepth sets "basic" or "advanced" search.
func WithTavilySearchDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.SearchDepth = depth
	}
}

// WithTavilyRawContent asks for the page content of every hit. HTML is
// reduced to plain text.
func WithTavilyRawContent() TavilyOption {
	return func(t *TavilySearch) {
		t.IncludeRawContent = true
	}
}

// WithTavilyHTTPClient sets the HTTP client.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.client = c
	}
}

// NewTavilySearch creates the tool. Consecutive failures open a circuit
// breaker that rejects calls for 30 seconds.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	t := &TavilySearch{
		APIKey:     apiKey,
		BaseURL:    "https://api.tavily.com/search",
		MaxResults: 5,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tavily",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})
	return t, nil
}

// Name returns the name of the tool.
func (t *TavilySearch) Name() string {
	return "tavily_search_results_json"
}

// Description returns the description of the tool.
func (t *TavilySearch) Description() string {
	return "A search engine optimized for comprehensive, accurate, and trusted results. " +
		"Useful for when you need to answer questions about current events. " +
		"Input should be a search query."
}

// Parameters returns the JSON schema of the arguments.
func (t *TavilySearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "search query to look up"},
		},
		"required": []string{"query"},
	}
}

// Call searches for input, which is either a plain query or {"query": "..."},
// and formats the hits as text.
func (t *TavilySearch) Call(ctx context.Context, input string) (string, error) {
	query := input
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err == nil && args.Query != "" {
		query = args.Query
	}

	results, err := t.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No results found", nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. Title: %s\nURL: %s\nContent: %s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return sb.String(), nil
}

// Search returns the hits for query.
func (t *TavilySearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	out, err := t.breaker.Execute(func() (any, error) {
		return t.search(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	return out.([]SearchResult), nil
}

func (t *TavilySearch) search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:             query,
		MaxResults:        t.MaxResults,
		SearchDepth:       t.SearchDepth,
		IncludeRawContent: t.IncludeRawContent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for i := range decoded.Results {
		if raw := decoded.Results[i].RawContent; raw != "" {
			decoded.Results[i].RawContent = htmlToText(raw)
		}
	}
	return decoded.Results, nil
}

// htmlToText drops scripts and styles and collapses whitespace. Input that
// does not parse is returned unchanged.
func htmlToText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
