// Package lessons contains the academy lessons: each lesson builds a small
// graph and runs it against a chat model, printing what happens.
package lessons

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/tvme/intro-LangGraph/graph"
	"github.com/tvme/intro-LangGraph/internal/chatmodel"
	"github.com/tvme/intro-LangGraph/internal/config"
	"github.com/tvme/intro-LangGraph/internal/studio"
	"github.com/tvme/intro-LangGraph/log"
	"github.com/tvme/intro-LangGraph/message"
	"github.com/tvme/intro-LangGraph/store"
	"github.com/tvme/intro-LangGraph/tool"
	"github.com/tvme/intro-LangGraph/tracing/langfuse"
)

// Env carries everything a lesson depends on. NewEnv fills it from
// configuration; tests replace single fields.
type Env struct {
	Config config.Config
	Out    io.Writer
	In     io.Reader
	Logger log.Logger

	// NewModel creates the chat model of a lesson.
	NewModel func(chatmodel.Options) (llms.Model, error)
	// OpenCheckpointer opens the configured checkpoint store. The returned
	// func releases it.
	OpenCheckpointer func(ctx context.Context) (store.CheckpointStore, func(), error)
	// Tracer is nil when Langfuse is not configured.
	Tracer *langfuse.Handler
	// InStudio reports whether persistence is provided by the host.
	InStudio func() bool

	TavilyOptions []tool.TavilyOption
	TokenCounter  message.TokenCounter
	Random        func() float64

	HTTPClient     *http.Client
	MermaidInkURL  string
	DiagramDir     string
	TranscriptPath string
}

// NewEnv builds the production environment for cfg.
func NewEnv(cfg config.Config, logger log.Logger) (*Env, error) {
	env := &Env{
		Config:        cfg,
		Out:           os.Stdout,
		In:            os.Stdin,
		Logger:        logger,
		InStudio:      studio.IsRunningInStudio,
		TokenCounter:  message.CountTokens("gpt-4o-mini"),
		Random:        rand.Float64,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		MermaidInkURL: graph.DefaultMermaidInkURL,
		DiagramDir:    ".",
	}
	env.OpenCheckpointer = func(ctx context.Context) (store.CheckpointStore, func(), error) {
		return OpenCheckpointer(ctx, cfg, logger)
	}

	if cfg.LangfuseEnabled() {
		client, err := langfuse.NewClient(langfuse.Options{
			PublicKey: cfg.LangfusePublicKey,
			SecretKey: cfg.LangfuseSecretKey,
			Host:      cfg.LangfuseHost,
			Logger:    logger,
			BatchSize: 50,
		})
		if err != nil {
			return nil, err
		}
		env.Tracer = langfuse.NewHandler(client)
	}

	env.NewModel = func(opts chatmodel.Options) (llms.Model, error) {
		if env.Tracer != nil && opts.Callbacks == nil {
			opts.Callbacks = env.Tracer
		}
		return chatmodel.New(cfg, opts)
	}
	return env, nil
}

// Close flushes pending traces.
func (e *Env) Close(ctx context.Context) error {
	if e.Tracer == nil {
		return nil
	}
	return e.Tracer.Client().Close(ctx)
}

// callbacks returns the graph callbacks of a traced run.
func (e *Env) callbacks() []graph.CallbackHandler {
	if e.Tracer == nil {
		return nil
	}
	return []graph.CallbackHandler{e.Tracer}
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

func (e *Env) inStudio() bool {
	return e.InStudio != nil && e.InStudio()
}
