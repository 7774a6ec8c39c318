package contract

import (
	"context"

	"paper-chat-be/internal/model"
)

// IChatLogRepository persists chat turns for analytics.
type IChatLogRepository interface {
	Create(ctx context.Context, log *model.ChatLog) error
}
