package contract

import (
	"context"
	"time"
)

// ChatMessage is one turn of a conversation. The system turn is always
// present and always first.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Conversation is the stored state for one (session, paper) pair.
// MessageCount counts user and assistant turns only, never the system turn.
type Conversation struct {
	Messages     []ChatMessage `json:"messages"`
	MessageCount int           `json:"message_count"`
	LastActivity time.Time     `json:"last_activity"`
}

// RateLimitStatus is the result of a rate limit check. ResetAt is set only
// when the check rejects.
type RateLimitStatus struct {
	Allowed   bool
	Remaining int
	ResetAt   *time.Time
}

// IChatStore is the storage interface for chat conversations and rate
// limiting. Implementations must make every operation atomic under
// concurrent access: no caller may ever observe a partially applied update.
//
// A session holds at most one live conversation across all papers; Init
// enforces this by replacing the session's entire conversation set.
type IChatStore interface {
	// Get returns the conversation for (session, paper), or false if none
	// exists. Never mutates conversation state.
	Get(ctx context.Context, sessionID, paperID string) (*Conversation, bool)

	// Init replaces all of the session's conversations with a single new one
	// for paperID, with message count zero and last activity now.
	Init(ctx context.Context, sessionID, paperID string, messages []ChatMessage) error

	// AppendMessage appends one turn, increments the message count and
	// refreshes last activity, all in one step. It is a no-op when no
	// matching conversation exists.
	AppendMessage(ctx context.Context, sessionID, paperID, role, content string) error

	// DeleteConversation removes the conversation for (session, paper), or
	// every conversation of the session when paperID is empty. Deleting a
	// non-existent conversation is not an error.
	DeleteConversation(ctx context.Context, sessionID, paperID string)

	// MessageCount returns the conversation's message count, or 0 when no
	// conversation exists.
	MessageCount(ctx context.Context, sessionID, paperID string) int

	// CheckRateLimit lazily creates the session's hourly window, resets it
	// first when it has expired, then evaluates the limit.
	CheckRateLimit(ctx context.Context, sessionID string) RateLimitStatus

	// IncrementRateLimit bumps the hourly counter of an existing window. It
	// never creates one; callers must have called CheckRateLimit earlier in
	// the same request.
	IncrementRateLimit(ctx context.Context, sessionID string)

	// SweepIdle evicts conversations past the inactivity threshold and rate
	// windows past the staleness threshold, returning the number of
	// conversations removed.
	SweepIdle(ctx context.Context) int
}
