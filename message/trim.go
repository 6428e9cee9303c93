package message

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Trim strategies.
const (
	StrategyFirst = "first"
	StrategyLast  = "last"
)

// OpenAI chat format overhead: every message is wrapped in role markers and
// every reply is primed with an assistant header.
const (
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// TokenCounter returns the number of tokens a list of messages would take.
type TokenCounter func(msgs []Message) int

// TrimOptions controls Trim.
type TrimOptions struct {
	MaxTokens int
	// Strategy is StrategyLast (keep the most recent messages) or StrategyFirst.
	Strategy string
	// TokenCounter defaults to CountTokens for gpt-4o.
	TokenCounter TokenCounter
	// AllowPartial lets the boundary message keep as many whole words as fit.
	AllowPartial bool
	// IncludeSystem keeps a leading system message with StrategyLast.
	IncludeSystem bool
	// StartOn drops kept messages until the first one with this role
	// (StrategyLast only).
	StartOn llms.ChatMessageType
}

// CountTokens returns a counter that tokenizes content with the encoding of
// model and adds the per-message chat overhead.
func CountTokens(model string) TokenCounter {
	return func(msgs []Message) int {
		if len(msgs) == 0 {
			return 0
		}
		total := tokensPerReply
		for _, m := range msgs {
			total += tokensPerMessage + llms.CountTokens(model, m.Content)
			if m.Name != "" {
				total += llms.CountTokens(model, m.Name) + 1
			}
			for _, tc := range m.ToolCalls {
				total += llms.CountTokens(model, tc.Name) + llms.CountTokens(model, tc.Arguments)
			}
		}
		return total
	}
}

// Trim returns the messages that fit in opts.MaxTokens according to the
// chosen strategy. The input slice is not modified.
func Trim(msgs []Message, opts TrimOptions) ([]Message, error) {
	if opts.MaxTokens <= 0 {
		return nil, fmt.Errorf("trim: max tokens must be positive, got %d", opts.MaxTokens)
	}
	counter := opts.TokenCounter
	if counter == nil {
		counter = CountTokens("gpt-4o")
	}

	switch opts.Strategy {
	case StrategyFirst:
		return trimFirst(msgs, opts, counter), nil
	case StrategyLast, "":
		return trimLast(msgs, opts, counter), nil
	default:
		return nil, fmt.Errorf("trim: unknown strategy %q", opts.Strategy)
	}
}

func trimFirst(msgs []Message, opts TrimOptions, counter TokenCounter) []Message {
	var kept []Message
	for _, m := range msgs {
		candidate := append(append([]Message(nil), kept...), m)
		if counter(candidate) <= opts.MaxTokens {
			kept = candidate
			continue
		}
		if opts.AllowPartial {
			if p, ok := partial(kept, m, false, opts.MaxTokens, counter); ok {
				kept = append(kept, p)
			}
		}
		break
	}
	return kept
}

func trimLast(msgs []Message, opts TrimOptions, counter TokenCounter) []Message {
	var system []Message
	rest := msgs
	if opts.IncludeSystem && len(msgs) > 0 && msgs[0].Role == llms.ChatMessageTypeSystem {
		system = msgs[:1]
		rest = msgs[1:]
	}

	var kept []Message
	for i := len(rest) - 1; i >= 0; i-- {
		candidate := append([]Message{rest[i]}, kept...)
		if counter(append(append([]Message(nil), system...), candidate...)) <= opts.MaxTokens {
			kept = candidate
			continue
		}
		if opts.AllowPartial {
			prefix := append(append([]Message(nil), system...), kept...)
			if p, ok := partial(prefix, rest[i], true, opts.MaxTokens, counter); ok {
				kept = append([]Message{p}, kept...)
			}
		}
		break
	}

	if opts.StartOn != "" {
		for len(kept) > 0 && kept[0].Role != opts.StartOn {
			kept = kept[1:]
		}
	}

	if len(system) > 0 && counter(system) <= opts.MaxTokens {
		return append(append([]Message(nil), system...), kept...)
	}
	return kept
}

// partial keeps the longest run of whole words from m (its tail when fromEnd)
// such that others plus the shortened message still fit.
func partial(others []Message, m Message, fromEnd bool, maxTokens int, counter TokenCounter) (Message, bool) {
	words := strings.Fields(m.Content)
	for n := len(words) - 1; n > 0; n-- {
		var chunk []string
		if fromEnd {
			chunk = words[len(words)-n:]
		} else {
			chunk = words[:n]
		}
		p := m
		p.Content = strings.Join(chunk, " ")
		p.ToolCalls = nil
		if counter(append(append([]Message(nil), others...), p)) <= maxTokens {
			return p, true
		}
	}
	return Message{}, false
}

// Filter returns the messages whose role is one of roles, in order.
func Filter(msgs []Message, roles ...llms.ChatMessageType) []Message {
	var out []Message
	for _, m := range msgs {
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
