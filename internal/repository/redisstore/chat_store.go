package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"paper-chat-be/internal/constant"
	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/repository/contract"
)

// ChatStore is the Redis-backed chat storage, for deployments with more than
// one process. Layout:
//
//	chat:session:{sessionID}:{paperID} -> conversation JSON, TTL = inactivity timeout
//	chat:sessions:{sessionID}          -> set of the session's live paper ids
//	rate_limit:{sessionID}:hour        -> counter, TTL = 1 hour
//
// TTLs replace the idle sweep: Redis evicts expired conversations and rate
// windows on its own, so SweepIdle is a no-op here.
//
// Read paths fail open (a Redis outage degrades to "no conversation" /
// "not rate limited") while write paths surface their errors, so a broken
// store rejects new turns instead of silently dropping them.
type ChatStore struct {
	rdb           *redis.Client
	log           logger.ILogger
	rateLimit     int
	inactivityTTL time.Duration
}

var _ contract.IChatStore = &ChatStore{}

type Options struct {
	RateLimitPerHour  int
	InactivityTimeout time.Duration
}

func NewChatStore(ctx context.Context, redisURL string, log logger.ILogger, opts Options) (*ChatStore, error) {
	if opts.RateLimitPerHour <= 0 {
		opts.RateLimitPerHour = constant.DefaultRateLimitPerHour
	}
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = constant.DefaultInactivityTimeout
	}

	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(ropts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &ChatStore{
		rdb:           rdb,
		log:           log,
		rateLimit:     opts.RateLimitPerHour,
		inactivityTTL: opts.InactivityTimeout,
	}, nil
}

func conversationKey(sessionID, paperID string) string {
	return fmt.Sprintf("chat:session:%s:%s", sessionID, paperID)
}

func sessionsKey(sessionID string) string {
	return fmt.Sprintf("chat:sessions:%s", sessionID)
}

func rateLimitKey(sessionID string) string {
	return fmt.Sprintf("rate_limit:%s:hour", sessionID)
}

func (s *ChatStore) Get(ctx context.Context, sessionID, paperID string) (*contract.Conversation, bool) {
	key := conversationKey(sessionID, paperID)

	data, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Error("redis-chat-store", "failed to get conversation", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var conv contract.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		s.log.Error("redis-chat-store", "corrupt conversation payload", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	// Refresh TTL on access.
	s.rdb.Expire(ctx, key, s.inactivityTTL)

	return &conv, true
}

func (s *ChatStore) Init(ctx context.Context, sessionID, paperID string, messages []contract.ChatMessage) error {
	skey := sessionsKey(sessionID)

	existing, err := s.rdb.SMembers(ctx, skey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("list session conversations: %w", err)
	}

	conv := contract.Conversation{
		Messages:     messages,
		MessageCount: 0,
		LastActivity: time.Now(),
	}
	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	// One chat at a time: drop every other conversation for the session.
	for _, old := range existing {
		pipe.Del(ctx, conversationKey(sessionID, old))
	}
	pipe.Del(ctx, skey)
	pipe.Set(ctx, conversationKey(sessionID, paperID), payload, s.inactivityTTL)
	pipe.SAdd(ctx, skey, paperID)
	pipe.Expire(ctx, skey, s.inactivityTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("init conversation: %w", err)
	}
	return nil
}

func (s *ChatStore) AppendMessage(ctx context.Context, sessionID, paperID, role, content string) error {
	key := conversationKey(sessionID, paperID)

	data, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		s.log.Warn("redis-chat-store", "append to non-existent conversation", map[string]interface{}{
			"session_id": sessionID,
			"paper_id":   paperID,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	var conv contract.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return fmt.Errorf("unmarshal conversation: %w", err)
	}

	conv.Messages = append(conv.Messages, contract.ChatMessage{Role: role, Content: content})
	conv.MessageCount++
	conv.LastActivity = time.Now()

	payload, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, payload, s.inactivityTTL)
	pipe.Expire(ctx, sessionsKey(sessionID), s.inactivityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store conversation: %w", err)
	}
	return nil
}

func (s *ChatStore) DeleteConversation(ctx context.Context, sessionID, paperID string) {
	skey := sessionsKey(sessionID)

	if paperID != "" {
		pipe := s.rdb.TxPipeline()
		pipe.Del(ctx, conversationKey(sessionID, paperID))
		pipe.SRem(ctx, skey, paperID)
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Error("redis-chat-store", "failed to delete conversation", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	papers, err := s.rdb.SMembers(ctx, skey).Result()
	if err != nil && err != redis.Nil {
		s.log.Error("redis-chat-store", "failed to list conversations for delete", map[string]interface{}{"error": err.Error()})
		return
	}

	pipe := s.rdb.TxPipeline()
	for _, p := range papers {
		pipe.Del(ctx, conversationKey(sessionID, p))
	}
	pipe.Del(ctx, skey)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("redis-chat-store", "failed to delete session conversations", map[string]interface{}{"error": err.Error()})
	}
}

func (s *ChatStore) MessageCount(ctx context.Context, sessionID, paperID string) int {
	data, err := s.rdb.Get(ctx, conversationKey(sessionID, paperID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Error("redis-chat-store", "failed to get message count", map[string]interface{}{"error": err.Error()})
		}
		return 0
	}

	var conv contract.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return 0
	}
	return conv.MessageCount
}

func (s *ChatStore) CheckRateLimit(ctx context.Context, sessionID string) contract.RateLimitStatus {
	key := rateLimitKey(sessionID)

	count, err := s.rdb.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		// Fail open: a Redis outage must not lock visitors out.
		s.log.Error("redis-chat-store", "failed to check rate limit", map[string]interface{}{"error": err.Error()})
		return contract.RateLimitStatus{Allowed: true, Remaining: s.rateLimit}
	}

	if count == 0 {
		// Make sure the window exists so IncrementRateLimit has something
		// to bump, mirroring the lazy initialization contract.
		s.rdb.SetNX(ctx, key, 0, constant.RateLimitWindow)
	}

	if count >= s.rateLimit {
		ttl, err := s.rdb.TTL(ctx, key).Result()
		if err == nil && ttl > 0 {
			resetAt := time.Now().Add(ttl)
			return contract.RateLimitStatus{Allowed: false, Remaining: 0, ResetAt: &resetAt}
		}
		// Counter exists but its TTL is gone; start a fresh window.
		s.rdb.Set(ctx, key, 0, constant.RateLimitWindow)
		return contract.RateLimitStatus{Allowed: true, Remaining: s.rateLimit}
	}

	return contract.RateLimitStatus{Allowed: true, Remaining: s.rateLimit - count}
}

func (s *ChatStore) IncrementRateLimit(ctx context.Context, sessionID string) {
	key := rateLimitKey(sessionID)

	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.log.Error("redis-chat-store", "failed to increment rate limit", map[string]interface{}{"error": err.Error()})
		return
	}
	if count == 1 {
		// First message of a window that INCR just created: give it a TTL.
		s.rdb.Expire(ctx, key, constant.RateLimitWindow)
	}
}

// SweepIdle is a no-op: key TTLs already evict idle conversations and stale
// rate windows.
func (s *ChatStore) SweepIdle(_ context.Context) int {
	return 0
}

// Client exposes the underlying connection for the chatctl inspection tool.
func (s *ChatStore) Client() *redis.Client {
	return s.rdb
}
