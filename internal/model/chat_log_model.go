package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatLog is one chat turn recorded for analytics. This table is append-only
// and independent of the live conversation state in the chat store.
type ChatLog struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId  string    `gorm:"type:varchar(64);not null;index"`
	PaperId    string    `gorm:"type:varchar(128);not null;index"`
	Role       string    `gorm:"type:varchar(20);not null"`
	Content    string    `gorm:"type:text;not null"`
	IpAddress  string    `gorm:"type:varchar(45)"`
	TokenCount int
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (ChatLog) TableName() string {
	return "chat_messages"
}
