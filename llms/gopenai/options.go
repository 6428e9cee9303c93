package gopenai

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

// DefaultModel is used when neither WithModel nor OPENAI_MODEL is set.
const DefaultModel = "gpt-4o"

type options struct {
	apiKey           string
	model            string
	baseURL          string
	organization     string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option configures the LLM.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		o.apiKey = apiKey
	}
}

// WithModel sets the default model. A per-call llms.WithModel wins.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithOrganization sets the OpenAI organization header.
func WithOrganization(org string) Option {
	return func(o *options) {
		o.organization = org
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithCallback sets the langchaingo callbacks handler.
func WithCallback(h callbacks.Handler) Option {
	return func(o *options) {
		o.callbacksHandler = h
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
