package implementation

import (
	"context"

	"gorm.io/gorm"

	"paper-chat-be/internal/model"
	"paper-chat-be/internal/repository/contract"
)

type chatLogRepository struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) contract.IChatLogRepository {
	return &chatLogRepository{db: db}
}

func (r *chatLogRepository) Create(ctx context.Context, log *model.ChatLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
