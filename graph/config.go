package graph

import (
	"context"
)

// DefaultRecursionLimit is the superstep limit used when Config leaves it unset.
const DefaultRecursionLimit = 25

// Config carries per-run settings.
type Config struct {
	// Configurable holds run parameters such as "thread_id".
	Configurable map[string]any

	// Callbacks receive chain and node events.
	Callbacks []CallbackHandler

	// Metadata is passed to callbacks and stored with checkpoints.
	Metadata map[string]any

	Tags []string

	// RecursionLimit bounds the number of supersteps. 0 means DefaultRecursionLimit.
	RecursionLimit int
}

// WithThreadID returns a Config bound to a conversation thread.
//
//	result, err := runnable.InvokeWithConfig(ctx, state, graph.WithThreadID("1"))
func WithThreadID(threadID string) *Config {
	return &Config{
		Configurable: map[string]any{"thread_id": threadID},
	}
}

// ThreadID returns the configured thread id, or "".
func (c *Config) ThreadID() string {
	if c == nil {
		return ""
	}
	id, _ := c.Configurable["thread_id"].(string)
	return id
}

func (c *Config) recursionLimit() int {
	if c == nil || c.RecursionLimit <= 0 {
		return DefaultRecursionLimit
	}
	return c.RecursionLimit
}

type configKey struct{}

// WithConfig stores config in ctx.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig returns the Config of the enclosing run, or nil.
func GetConfig(ctx context.Context) *Config {
	config, _ := ctx.Value(configKey{}).(*Config)
	return config
}
