package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"outreach_messaging_service/internal/messaging/app"
	"outreach_messaging_service/internal/messaging/domain"
	"outreach_messaging_service/internal/messaging/repository"
	"outreach_messaging_service/internal/messaging/router"
	"outreach_messaging_service/pkg/config"
	"outreach_messaging_service/pkg/database"
	"outreach_messaging_service/pkg/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceLogPath)
	if config.Env() == "dev" {
		logger.Log.SetDebugMode(true)
	}
	cfg := config.LoadConfig[config.Messaging](config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceYAMLPath)

	ctx := context.Background()

	// Mongo holds conversations and messages.
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// Redis carries the push channel and the inbox snapshot cache.
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// Postgres holds the profile directory snapshots.
	pgConnStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Profile.User, cfg.Profile.Password, cfg.Profile.Host, cfg.Profile.Port, cfg.Profile.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgConnStr,
		RetryCount:    cfg.Profile.RetryCount,
		RetryInterval: time.Duration(cfg.Profile.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect postgres err : %v", err))
	}
	defer pgPool.Close()

	convRepo := repository.NewMongoConversationRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	profileRepo := repository.NewProfileRepository(pgPool)
	pubSub := repository.NewRedisPubSub(redisClient)
	inboxCache := database.NewRedisRepository[domain.InboxSnapshot](redisClient)

	// The unique pair index is what makes concurrent first contact
	// converge on a single conversation.
	if err := convRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("ensure indexes err : %v", err))
	}

	convUC := app.NewConversationUseCase(convRepo)
	msgUC := app.NewMessageUseCase(convRepo, msgRepo, pubSub, cfg.Limits.MaxBodyLen)
	inboxUC := app.NewInboxUseCase(convRepo, msgRepo, profileRepo, inboxCache)
	engine := app.NewSyncEngine(pubSub, msgRepo)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessagingServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewMessagingHTTPHandler(convUC, msgUC, inboxUC),
		app.NewMessagingWebsocketHandler(convUC, msgUC, inboxUC, engine),
	)

	port := ":" + cfg.Port
	log.Printf("Messaging Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
