package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"paper-chat-be/internal/constant"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "memory", cfg.Chat.StoreBackend)
	assert.Equal(t, constant.DefaultRateLimitPerHour, cfg.Chat.RateLimitPerHour)
	assert.Equal(t, constant.DefaultMaxMessages, cfg.Chat.MaxMessages)
	assert.Equal(t, constant.DefaultMaxMessageTokens, cfg.Chat.MaxMessageTokens)
	assert.Equal(t, constant.DefaultInactivityTimeout, cfg.Chat.InactivityTimeout)
	assert.Equal(t, constant.DefaultCleanupInterval, cfg.Chat.CleanupInterval)
	assert.Equal(t, constant.DefaultRateWindowStale, cfg.Chat.RateWindowStale)
	assert.Equal(t, "", cfg.Database.Connection)
}

func TestLoadChatOverrides(t *testing.T) {
	t.Setenv("CHAT_STORE_BACKEND", "redis")
	t.Setenv("CHAT_RATE_LIMIT_PER_HOUR", "5")
	t.Setenv("CHAT_MAX_MESSAGES", "4")
	t.Setenv("CHAT_MAX_MESSAGE_TOKENS", "256")
	t.Setenv("CHAT_INACTIVITY_TIMEOUT_MINUTES", "3")
	t.Setenv("CHAT_CLEANUP_INTERVAL_MINUTES", "1")
	t.Setenv("CHAT_RATE_WINDOW_STALE_MINUTES", "120")

	cfg := Load()

	assert.Equal(t, "redis", cfg.Chat.StoreBackend)
	assert.Equal(t, 5, cfg.Chat.RateLimitPerHour)
	assert.Equal(t, 4, cfg.Chat.MaxMessages)
	assert.Equal(t, 256, cfg.Chat.MaxMessageTokens)
	assert.Equal(t, 3*time.Minute, cfg.Chat.InactivityTimeout)
	assert.Equal(t, 1*time.Minute, cfg.Chat.CleanupInterval)
	assert.Equal(t, 2*time.Hour, cfg.Chat.RateWindowStale)
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("CHAT_RATE_LIMIT_PER_HOUR", "lots")
	t.Setenv("CHAT_INACTIVITY_TIMEOUT_MINUTES", "-1")

	cfg := Load()

	assert.Equal(t, constant.DefaultRateLimitPerHour, cfg.Chat.RateLimitPerHour)
	assert.Equal(t, constant.DefaultInactivityTimeout, cfg.Chat.InactivityTimeout)
}
