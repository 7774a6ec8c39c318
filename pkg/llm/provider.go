package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// FragmentFunc receives one incremental piece of model output during a
// streaming call. Returning a non-nil error aborts the stream.
type FragmentFunc func(fragment string) error

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatStream sends a chat history and relays the response incrementally.
	// fn is called once per fragment, in arrival order. The stream is finite
	// and non-restartable; ChatStream returns once the model signals the end
	// of output, or with an error if the call or fn fails.
	ChatStream(ctx context.Context, history []Message, fn FragmentFunc, options ...Option) error
}
