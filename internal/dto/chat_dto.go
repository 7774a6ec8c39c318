package dto

// SendChatRequest is the body of POST /api/papers/:paperId/chat.
type SendChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatStreamEvent is one server-sent event of the chat stream. Exactly one
// of the optional field groups is populated, keyed by Type:
//
//	"chat_chunk"    -> Content
//	"chat_complete" -> RemainingMessages, MessageCount
//	"error"         -> Message
type ChatStreamEvent struct {
	Type              string `json:"type"`
	Content           string `json:"content,omitempty"`
	Message           string `json:"message,omitempty"`
	RemainingMessages *int   `json:"remaining_messages,omitempty"`
	MessageCount      *int   `json:"message_count,omitempty"`
}

const (
	StreamEventChunk    = "chat_chunk"
	StreamEventComplete = "chat_complete"
	StreamEventError    = "error"
)

func NewChunkEvent(content string) ChatStreamEvent {
	return ChatStreamEvent{Type: StreamEventChunk, Content: content}
}

func NewCompleteEvent(remaining, messageCount int) ChatStreamEvent {
	return ChatStreamEvent{
		Type:              StreamEventComplete,
		RemainingMessages: &remaining,
		MessageCount:      &messageCount,
	}
}

func NewErrorEvent(message string) ChatStreamEvent {
	return ChatStreamEvent{Type: StreamEventError, Message: message}
}

// ChatLogEvent is the analytics payload published per persisted turn.
type ChatLogEvent struct {
	SessionId  string `json:"session_id"`
	PaperId    string `json:"paper_id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	IpAddress  string `json:"ip_address,omitempty"`
	TokenCount int    `json:"token_count"`
}
