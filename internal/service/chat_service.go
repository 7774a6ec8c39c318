package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"paper-chat-be/internal/config"
	"paper-chat-be/internal/constant"
	"paper-chat-be/internal/dto"
	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/pkg/serverutils"
	"paper-chat-be/internal/repository/contract"
	"paper-chat-be/pkg/content"
	"paper-chat-be/pkg/llm"
	"paper-chat-be/pkg/tokenizer"
)

// IChatService implements one end-to-end chat turn and conversation clearing.
// It is the only caller of the store's mutating operations on the request
// path.
type IChatService interface {
	// StreamChat validates the message against every limit, records the user
	// turn and returns a channel of stream events. All rejections happen
	// before any state change and are returned synchronously; once a channel
	// is returned, failures travel on it as error events.
	//
	// ctx governs the model call and the relay: cancel it when the client
	// goes away and the stream is abandoned without an assistant turn.
	StreamChat(ctx context.Context, sessionID, paperID, message, clientIP string) (<-chan dto.ChatStreamEvent, error)

	// ClearConversation drops the conversation for (session, paper),
	// reporting whether one existed.
	ClearConversation(ctx context.Context, sessionID, paperID string) bool
}

type chatService struct {
	store     contract.IChatStore
	papers    *content.Cache
	provider  llm.LLMProvider
	publisher IPublisherService // nil when analytics are disabled
	log       logger.ILogger
	cfg       config.ChatConfig
}

func NewChatService(
	store contract.IChatStore,
	papers *content.Cache,
	provider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
	cfg config.ChatConfig,
) IChatService {
	return &chatService{
		store:     store,
		papers:    papers,
		provider:  provider,
		publisher: publisher,
		log:       log,
		cfg:       cfg,
	}
}

func (s *chatService) StreamChat(ctx context.Context, sessionID, paperID, message, clientIP string) (<-chan dto.ChatStreamEvent, error) {
	// 1. Non-empty after trimming.
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, serverutils.NewAppError(fiber.StatusBadRequest, serverutils.ErrKindEmptyMessage, "Message cannot be empty")
	}

	// 2. Size cap, measured in estimated tokens.
	tokens := tokenizer.Estimate(message)
	if tokens > s.cfg.MaxMessageTokens {
		return nil, serverutils.NewAppError(
			fiber.StatusBadRequest,
			serverutils.ErrKindMessageTooLong,
			fmt.Sprintf("Message is too long (about %d tokens, limit %d)", tokens, s.cfg.MaxMessageTokens),
		).WithDetails(map[string]interface{}{
			"token_count": tokens,
			"limit":       s.cfg.MaxMessageTokens,
		})
	}

	// 3. Hourly rate limit.
	rl := s.store.CheckRateLimit(ctx, sessionID)
	if !rl.Allowed {
		appErr := serverutils.NewAppError(
			fiber.StatusTooManyRequests,
			serverutils.ErrKindRateLimited,
			"Rate limit reached. Please try again later.",
		)
		if rl.ResetAt != nil {
			appErr.WithDetails(map[string]interface{}{"reset_at": rl.ResetAt.UTC().Format(time.RFC3339)})
		}
		return nil, appErr
	}

	conv, exists := s.store.Get(ctx, sessionID, paperID)
	if exists {
		// 5. Per-conversation cap, counting both roles.
		if conv.MessageCount >= s.cfg.MaxMessages {
			return nil, serverutils.NewAppError(
				fiber.StatusBadRequest,
				serverutils.ErrKindConversationLimit,
				"Conversation limit reached. Clear the chat to start over.",
			)
		}

		// 6. Lazy eviction of a conversation the reaper has not reached yet.
		if time.Since(conv.LastActivity) > s.cfg.InactivityTimeout {
			s.store.DeleteConversation(ctx, sessionID, paperID)
			return nil, serverutils.NewAppError(
				fiber.StatusRequestTimeout,
				serverutils.ErrKindSessionTimeout,
				"Chat session timed out due to inactivity. Send a message to start a new one.",
			)
		}
	} else {
		// 4. Paper must be known and chat-available before we spend anything.
		paper, ok := s.papers.GetPaper(paperID)
		if !ok || !paper.ChatAvailable {
			return nil, serverutils.NewAppError(fiber.StatusNotFound, serverutils.ErrKindNotFound, "Paper not found or chat not available for it")
		}

		text, ok := s.papers.LoadFullText(paperID)
		if !ok {
			s.log.Error("chat-service", "paper text unavailable despite chat-available flag", map[string]interface{}{
				"paper_id": paperID,
			})
			return nil, serverutils.NewAppError(fiber.StatusServiceUnavailable, serverutils.ErrKindUnavailable, "Paper content is unavailable right now")
		}

		systemMsg := contract.ChatMessage{
			Role:    constant.ChatMessageRoleSystem,
			Content: fmt.Sprintf(constant.PaperChatSystemPromptV1, paper.Title, text),
		}
		if err := s.store.Init(ctx, sessionID, paperID, []contract.ChatMessage{systemMsg}); err != nil {
			s.log.Error("chat-service", "failed to init conversation", map[string]interface{}{"error": err.Error()})
			return nil, serverutils.NewAppError(fiber.StatusServiceUnavailable, serverutils.ErrKindUnavailable, "Chat is unavailable right now")
		}
	}

	// All preconditions passed; from here on state changes are committed.
	if err := s.store.AppendMessage(ctx, sessionID, paperID, constant.ChatMessageRoleUser, message); err != nil {
		s.log.Error("chat-service", "failed to append user turn", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.NewAppError(fiber.StatusServiceUnavailable, serverutils.ErrKindUnavailable, "Chat is unavailable right now")
	}
	s.store.IncrementRateLimit(ctx, sessionID)
	s.publishLog(ctx, sessionID, paperID, constant.ChatMessageRoleUser, message, clientIP, tokens)

	// Snapshot the full history for the model call; the store lock is not
	// held while streaming.
	conv, exists = s.store.Get(ctx, sessionID, paperID)
	if !exists {
		return nil, serverutils.NewAppError(fiber.StatusServiceUnavailable, serverutils.ErrKindUnavailable, "Chat is unavailable right now")
	}

	history := make([]llm.Message, len(conv.Messages))
	for i, m := range conv.Messages {
		history[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	events := make(chan dto.ChatStreamEvent, 8)
	go s.produce(ctx, events, history, sessionID, paperID, clientIP)

	return events, nil
}

// produce drives the model stream and owns the events channel.
func (s *chatService) produce(ctx context.Context, events chan<- dto.ChatStreamEvent, history []llm.Message, sessionID, paperID, clientIP string) {
	defer close(events)

	var reply strings.Builder

	err := s.provider.ChatStream(ctx, history, func(fragment string) error {
		reply.WriteString(fragment)
		select {
		case events <- dto.NewChunkEvent(fragment):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err != nil {
		if ctx.Err() != nil {
			// Client went away: nobody is listening and the model call was
			// aborted, so no assistant turn is recorded for this request.
			s.log.Info("chat-service", "stream cancelled by client", map[string]interface{}{
				"session_id": sessionID,
				"paper_id":   paperID,
			})
			return
		}

		s.log.Error("chat-service", "model stream failed", map[string]interface{}{
			"error":    err.Error(),
			"paper_id": paperID,
		})
		// The user turn stays in history on purpose: a retry sees it as
		// prior context. The client only gets an opaque message.
		s.send(ctx, events, dto.NewErrorEvent("The assistant is unavailable right now. Please try again."))
		return
	}

	assistantText := reply.String()
	if err := s.store.AppendMessage(ctx, sessionID, paperID, constant.ChatMessageRoleAssistant, assistantText); err != nil {
		s.log.Error("chat-service", "failed to append assistant turn", map[string]interface{}{"error": err.Error()})
	}
	s.publishLog(ctx, sessionID, paperID, constant.ChatMessageRoleAssistant, assistantText, clientIP, tokenizer.Estimate(assistantText))

	rl := s.store.CheckRateLimit(ctx, sessionID)
	count := s.store.MessageCount(ctx, sessionID, paperID)
	s.send(ctx, events, dto.NewCompleteEvent(rl.Remaining, count))
}

func (s *chatService) send(ctx context.Context, events chan<- dto.ChatStreamEvent, ev dto.ChatStreamEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func (s *chatService) publishLog(ctx context.Context, sessionID, paperID, role, chatContent, clientIP string, tokens int) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(dto.ChatLogEvent{
		SessionId:  sessionID,
		PaperId:    paperID,
		Role:       role,
		Content:    chatContent,
		IpAddress:  clientIP,
		TokenCount: tokens,
	})
	if err != nil {
		return
	}

	if err := s.publisher.Publish(ctx, payload); err != nil {
		// Analytics must never affect the request path.
		s.log.Warn("chat-service", "failed to publish chat log event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *chatService) ClearConversation(ctx context.Context, sessionID, paperID string) bool {
	_, existed := s.store.Get(ctx, sessionID, paperID)
	s.store.DeleteConversation(ctx, sessionID, paperID)
	return existed
}
