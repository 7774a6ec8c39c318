package memory

import (
	"context"
	"sync"
	"time"

	"paper-chat-be/internal/constant"
	"paper-chat-be/internal/repository/contract"
)

// Options bound the store. Zero values fall back to the defaults in
// internal/constant.
type Options struct {
	RateLimitPerHour  int
	InactivityTimeout time.Duration
	RateWindowStale   time.Duration
}

type conversation struct {
	messages     []contract.ChatMessage
	messageCount int
	lastActivity time.Time
}

type rateWindow struct {
	count       int
	windowStart time.Time
}

// ChatStore is the in-memory chat storage. A single mutex serializes every
// operation; each method is one atomic read-modify-write. Suitable for a
// single-process deployment only; see the redis store for anything else.
type ChatStore struct {
	mu            sync.Mutex
	conversations map[string]map[string]*conversation // sessionID -> paperID -> conversation
	rateLimits    map[string]*rateWindow              // sessionID -> window

	rateLimitPerHour  int
	inactivityTimeout time.Duration
	rateWindowStale   time.Duration
}

var _ contract.IChatStore = &ChatStore{}

func NewChatStore(opts Options) *ChatStore {
	if opts.RateLimitPerHour <= 0 {
		opts.RateLimitPerHour = constant.DefaultRateLimitPerHour
	}
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = constant.DefaultInactivityTimeout
	}
	if opts.RateWindowStale <= 0 {
		opts.RateWindowStale = constant.DefaultRateWindowStale
	}

	return &ChatStore{
		conversations:     make(map[string]map[string]*conversation),
		rateLimits:        make(map[string]*rateWindow),
		rateLimitPerHour:  opts.RateLimitPerHour,
		inactivityTimeout: opts.InactivityTimeout,
		rateWindowStale:   opts.RateWindowStale,
	}
}

func (s *ChatStore) Get(_ context.Context, sessionID, paperID string) (*contract.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[sessionID][paperID]
	if !ok {
		return nil, false
	}
	return snapshot(conv), true
}

func (s *ChatStore) Init(_ context.Context, sessionID, paperID string, messages []contract.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One chat at a time: drop every other conversation for the session.
	s.conversations[sessionID] = map[string]*conversation{
		paperID: {
			messages:     append([]contract.ChatMessage(nil), messages...),
			messageCount: 0,
			lastActivity: time.Now(),
		},
	}
	return nil
}

func (s *ChatStore) AppendMessage(_ context.Context, sessionID, paperID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[sessionID][paperID]
	if !ok {
		// Callers verify existence first; a missing conversation here means
		// it was evicted in between, and the append is silently dropped.
		return nil
	}

	conv.messages = append(conv.messages, contract.ChatMessage{Role: role, Content: content})
	conv.messageCount++
	conv.lastActivity = time.Now()
	return nil
}

func (s *ChatStore) DeleteConversation(_ context.Context, sessionID, paperID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	papers, ok := s.conversations[sessionID]
	if !ok {
		return
	}

	if paperID == "" {
		delete(s.conversations, sessionID)
		return
	}

	delete(papers, paperID)
	if len(papers) == 0 {
		delete(s.conversations, sessionID)
	}
}

func (s *ChatStore) MessageCount(_ context.Context, sessionID, paperID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[sessionID][paperID]
	if !ok {
		return 0
	}
	return conv.messageCount
}

func (s *ChatStore) CheckRateLimit(_ context.Context, sessionID string) contract.RateLimitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	w, ok := s.rateLimits[sessionID]
	if !ok {
		w = &rateWindow{windowStart: now}
		s.rateLimits[sessionID] = w
	}

	// The reset takes priority over rejection: an expired window always
	// starts fresh before the limit is evaluated.
	if now.Sub(w.windowStart) > constant.RateLimitWindow {
		w.count = 0
		w.windowStart = now
	}

	if w.count >= s.rateLimitPerHour {
		resetAt := w.windowStart.Add(constant.RateLimitWindow)
		return contract.RateLimitStatus{Allowed: false, Remaining: 0, ResetAt: &resetAt}
	}

	return contract.RateLimitStatus{
		Allowed:   true,
		Remaining: s.rateLimitPerHour - w.count,
	}
}

func (s *ChatStore) IncrementRateLimit(_ context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.rateLimits[sessionID]; ok {
		w.count++
	}
}

func (s *ChatStore) SweepIdle(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0

	for sessionID, papers := range s.conversations {
		for paperID, conv := range papers {
			if now.Sub(conv.lastActivity) > s.inactivityTimeout {
				delete(papers, paperID)
				removed++
			}
		}
		if len(papers) == 0 {
			delete(s.conversations, sessionID)
		}
	}

	for sessionID, w := range s.rateLimits {
		if now.Sub(w.windowStart) > s.rateWindowStale {
			delete(s.rateLimits, sessionID)
		}
	}

	return removed
}

// snapshot copies a conversation so callers can read it outside the lock.
func snapshot(conv *conversation) *contract.Conversation {
	return &contract.Conversation{
		Messages:     append([]contract.ChatMessage(nil), conv.messages...),
		MessageCount: conv.messageCount,
		LastActivity: conv.lastActivity,
	}
}
