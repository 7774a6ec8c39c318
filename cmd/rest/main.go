package main

import (
	"context"
	"log"

	"gorm.io/gorm"

	"paper-chat-be/internal/bootstrap"
	"paper-chat-be/internal/config"
	"paper-chat-be/internal/model"
	"paper-chat-be/internal/server"
	"paper-chat-be/internal/tracer"
	"paper-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: analytics only)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := gormDB.AutoMigrate(&model.ChatLog{}); err != nil {
			log.Panicf("Unable to migrate chat log table: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx := context.Background()

	go func() {
		log.Println("Background: Starting Idle Reaper...")
		container.CleanupService.Run(ctx)
	}()

	if container.ConsumerService != nil {
		go func() {
			log.Println("Background: Starting Analytics Consumer...")
			if err := container.ConsumerService.Consume(ctx); err != nil {
				log.Printf("Background Consumer Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
