package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"paper-chat-be/internal/config"
	"paper-chat-be/internal/constant"
	"paper-chat-be/internal/controller"
	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/repository/contract"
	"paper-chat-be/internal/repository/implementation"
	"paper-chat-be/internal/repository/memory"
	"paper-chat-be/internal/repository/redisstore"
	"paper-chat-be/internal/service"
	"paper-chat-be/pkg/content"
	"paper-chat-be/pkg/llm/factory"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	PaperController controller.IPaperController

	// Background Services (Exposed for main.go to run)
	CleanupService  service.ICleanupService
	ConsumerService service.IAnalyticsConsumerService // nil when analytics are disabled

	Logger logger.ILogger
}

// NewContainer wires the whole object graph once at startup; nothing in the
// request path reaches for globals. db may be nil, which disables analytics.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Content Cache: catalog plus chat-availability flags, loaded once.
	papers, err := content.NewCache(cfg.Content.PapersJSONPath, cfg.Content.PaperTextDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load paper catalog: %v", err)
	}
	chatReady := 0
	for _, p := range papers.Papers() {
		if p.ChatAvailable {
			chatReady++
		}
	}
	log.Printf("[INFO] Loaded %d papers (%d chat-available)", len(papers.Papers()), chatReady)

	// Chat store backend per config.
	var chatStore contract.IChatStore
	switch cfg.Chat.StoreBackend {
	case "redis":
		chatStore, err = redisstore.NewChatStore(context.Background(), cfg.App.RedisURL, sysLogger, redisstore.Options{
			RateLimitPerHour:  cfg.Chat.RateLimitPerHour,
			InactivityTimeout: cfg.Chat.InactivityTimeout,
		})
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect Redis chat store: %v", err)
		}
		log.Printf("[INFO] Using chat store: REDIS")
	default:
		chatStore = memory.NewChatStore(memory.Options{
			RateLimitPerHour:  cfg.Chat.RateLimitPerHour,
			InactivityTimeout: cfg.Chat.InactivityTimeout,
			RateWindowStale:   cfg.Chat.RateWindowStale,
		})
		log.Printf("[INFO] Using chat store: MEMORY (single process only)")
	}

	// LLM Provider per config.
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Analytics: event bus plus consumer, only when a database is present.
	var publisherService service.IPublisherService
	var consumerService service.IAnalyticsConsumerService
	if db != nil {
		watermillLogger := watermill.NewStdLogger(false, false)
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

		publisherService = service.NewPublisherService(constant.ChatLogTopicName, pubSub)
		chatLogRepo := implementation.NewChatLogRepository(db)
		consumerService = service.NewAnalyticsConsumerService(pubSub, constant.ChatLogTopicName, chatLogRepo, sysLogger)
		log.Printf("[INFO] Chat analytics logging: ENABLED")
	} else {
		log.Printf("[INFO] Chat analytics logging: DISABLED (no database configured)")
	}

	chatService := service.NewChatService(chatStore, papers, llmProvider, publisherService, sysLogger, cfg.Chat)
	cleanupService := service.NewCleanupService(chatStore, sysLogger, cfg.Chat.CleanupInterval)

	return &Container{
		ChatController:  controller.NewChatController(chatService),
		PaperController: controller.NewPaperController(papers),
		CleanupService:  cleanupService,
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
