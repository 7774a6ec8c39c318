package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"paper-chat-be/internal/dto"
	"paper-chat-be/internal/model"
	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/repository/contract"
)

// IAnalyticsConsumerService drains chat log events off the in-process bus
// and persists them. It runs for the process lifetime, decoupled from the
// request path: a slow or failing database delays analytics, not chats.
type IAnalyticsConsumerService interface {
	Consume(ctx context.Context) error
}

type analyticsConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	repo      contract.IChatLogRepository
	log       logger.ILogger
}

func NewAnalyticsConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	repo contract.IChatLogRepository,
	log logger.ILogger,
) IAnalyticsConsumerService {
	return &analyticsConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		repo:      repo,
		log:       log,
	}
}

func (s *analyticsConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *analyticsConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatLogEvent
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error("analytics-consumer", "failed to unmarshal chat log event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	row := &model.ChatLog{
		Id:         uuid.New(),
		SessionId:  payload.SessionId,
		PaperId:    payload.PaperId,
		Role:       payload.Role,
		Content:    payload.Content,
		IpAddress:  payload.IpAddress,
		TokenCount: payload.TokenCount,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.log.Error("analytics-consumer", "failed to persist chat log", map[string]interface{}{"error": err.Error()})
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
