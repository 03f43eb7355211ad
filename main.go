package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nexus-chat/internal/auth"
	"nexus-chat/internal/blob"
	"nexus-chat/internal/config"
	"nexus-chat/internal/db"
	"nexus-chat/internal/handlers"
	"nexus-chat/internal/middleware"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/rabbitmq"
	"nexus-chat/internal/repositories"
	"nexus-chat/internal/service"
	"nexus-chat/internal/telemetry"
	"nexus-chat/internal/view"
)

func main() {
	cfg := config.Load()

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, "nexus-chat", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	uploader := blob.NewClient(cfg.BlobBaseURL, cfg.BlobToken, nil)
	if cfg.BlobToken == "" {
		log.Println("blob access token not set, media uploads will fail")
	}

	sessionMgr := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionMaxAgeSec)
	authService := auth.NewService(userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, groupRepo, uploader)

	authHandler := handlers.NewAuthHandler(authService, sessionMgr, renderer, audit)
	pageHandler := handlers.NewPageHandler(userRepo, groupRepo, messageRepo, sessionMgr, renderer)
	messageHandler := handlers.NewMessageHandler(messageService, sessionMgr, audit, cfg.MaxUploadBytes)
	groupHandler := handlers.NewGroupHandler(groupRepo, messageRepo, messageService, sessionMgr, renderer, audit, cfg.MaxUploadBytes)

	router := gin.Default()
	router.Use(observability.HTTPMetricsMiddleware())
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	authRequired := middleware.AuthRequired(sessionMgr)

	router.GET("/", authRequired, pageHandler.Home)
	router.GET("/private/:receiver_id", authRequired, pageHandler.PrivateChat)
	router.POST("/send_message", authRequired, messageHandler.SendMessage)
	router.POST("/create_group", authRequired, groupHandler.CreateGroup)
	router.POST("/join_group", authRequired, groupHandler.JoinGroup)
	router.GET("/groups", authRequired, groupHandler.ListGroups)
	router.GET("/group/:group_id", authRequired, groupHandler.GroupChat)
	router.POST("/group/:group_id", authRequired, groupHandler.GroupChat)
	router.GET("/uploads/*filepath", pageHandler.Uploads)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
