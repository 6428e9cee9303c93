// Package chatmodel builds the chat model used by the lessons.
package chatmodel

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/tvme/intro-LangGraph/internal/config"
	"github.com/tvme/intro-LangGraph/llms/gopenai"
)

// Options selects the model of one lesson.
type Options struct {
	// Model overrides OPENAI_MODEL.
	Model string
	// Temperature is applied to every call when set.
	Temperature *float64
	Callbacks   callbacks.Handler
}

// Temperature is a helper for Options.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// New returns a chat model for cfg.LLMProvider: "openai" uses langchaingo's
// OpenAI client, "gopenai" the go-openai backed one.
func New(cfg config.Config, opts Options) (llms.Model, error) {
	model := opts.Model
	if model == "" {
		model = cfg.OpenAIModel
	}
	if model == "" {
		model = gopenai.DefaultModel
	}

	var (
		llm llms.Model
		err error
	)
	switch cfg.LLMProvider {
	case "", "openai":
		o := []openai.Option{openai.WithToken(cfg.OpenAIKey), openai.WithModel(model)}
		if cfg.OpenAIBaseURL != "" {
			o = append(o, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		if opts.Callbacks != nil {
			o = append(o, openai.WithCallback(opts.Callbacks))
		}
		llm, err = openai.New(o...)
	case "gopenai":
		o := []gopenai.Option{gopenai.WithAPIKey(cfg.OpenAIKey), gopenai.WithModel(model)}
		if cfg.OpenAIBaseURL != "" {
			o = append(o, gopenai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		if opts.Callbacks != nil {
			o = append(o, gopenai.WithCallback(opts.Callbacks))
		}
		llm, err = gopenai.New(o...)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.LLMProvider, err)
	}

	if opts.Temperature == nil {
		return llm, nil
	}
	return &defaults{Model: llm, options: []llms.CallOption{llms.WithTemperature(*opts.Temperature)}}, nil
}

// defaults applies fixed call options before the caller's.
type defaults struct {
	llms.Model
	options []llms.CallOption
}

func (d *defaults) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return d.Model.GenerateContent(ctx, messages, append(append([]llms.CallOption(nil), d.options...), options...)...)
}

func (d *defaults) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, d, prompt, options...)
}
