package constant

import "time"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

// Default chat limits. All of these can be overridden via environment
// variables, see internal/config.
const (
	DefaultRateLimitPerHour  = 20
	DefaultMaxMessages       = 10
	DefaultMaxMessageTokens  = 1000
	DefaultInactivityTimeout = 10 * time.Minute
	DefaultCleanupInterval   = 5 * time.Minute
	DefaultRateWindowStale   = 2 * time.Hour
)

// RateLimitWindow is the rolling window for the per-session message counter.
const RateLimitWindow = time.Hour

// ChatLogTopicName is the watermill topic carrying chat analytics events.
const ChatLogTopicName = "CHAT_MESSAGE_LOGGED"

// PaperChatSystemPromptV1 is the system turn injected at conversation start.
// The first placeholder is the paper title, the second the full paper text.
const PaperChatSystemPromptV1 = `You are a research assistant answering questions about the paper "%s".

PAPER CONTENT:
%s

RULES:
1. Answer only from the content of this paper. Do not use outside knowledge.
2. If the question is not about this paper, politely decline and steer the
   conversation back to the paper.
3. Be concise: a few sentences unless the user asks for detail.
4. If the paper does not address something, say so instead of guessing.`
