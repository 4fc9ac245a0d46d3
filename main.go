package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/config"
	"cohort-chat-service/internal/db"
	"cohort-chat-service/internal/handlers"
	"cohort-chat-service/internal/logger"
	"cohort-chat-service/internal/observability"
	"cohort-chat-service/internal/rabbitmq"
	"cohort-chat-service/internal/repositories"
	"cohort-chat-service/internal/storage"
	"cohort-chat-service/internal/telemetry"
	"cohort-chat-service/internal/ws"
)

const serviceName = "cohort-chat-service"

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Environment)
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}
	defer shutdownTracer(ctx)

	database, err := db.Connect(cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	var mediaStore storage.MediaStore
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStore(ctx, cfg.MinIO, log)
		if err != nil {
			log.Fatal("failed to connect to object storage", zap.Error(err))
		}
		mediaStore = store
	} else {
		log.Warn("object storage not configured, media messages disabled")
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AMQP.RoutingKey, serviceName, cfg.Telemetry.Environment, log)

	userRepo := repositories.NewUserRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewGroupMessageRepo(database)

	authorizer := auth.NewAuthorizer(groupRepo)
	hub := ws.NewHub(log)

	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo, audit, log)
	messageHandler := handlers.NewMessageHandler(messageRepo, authorizer, mediaStore, hub, audit, log)
	socketHandler := ws.NewSocketHandler(hub, authorizer, log)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := auth.Middleware(cfg.JWT.Secret)

	api := router.Group("/api/v1", authMiddleware)
	{
		api.GET("/groups", groupHandler.ListGroups)
		api.GET("/groups/:group_id/messages", messageHandler.ListMessages)
		api.POST("/groups/:group_id/messages", messageHandler.PostMessage)

		admin := api.Group("", auth.RequireAdmin())
		{
			admin.POST("/groups", groupHandler.CreateGroup)
			admin.POST("/groups/:group_id/members", groupHandler.AddMember)
			admin.DELETE("/groups/:group_id/members/:user_id", groupHandler.RemoveMember)
			admin.DELETE("/groups/:group_id", groupHandler.DeleteGroup)
			admin.DELETE("/group-messages/:message_id", messageHandler.DeleteMessage)
		}
	}

	router.GET("/ws", authMiddleware, socketHandler.Handle)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
