package redisstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The key layout is shared with the chatctl inspection tool and with the
// original deployment's data; it must not drift.
func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "chat:session:abc:smith2023", conversationKey("abc", "smith2023"))
	assert.Equal(t, "chat:sessions:abc", sessionsKey("abc"))
	assert.Equal(t, "rate_limit:abc:hour", rateLimitKey("abc"))
}
