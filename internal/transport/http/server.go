package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"promptgate/internal/ai"
	appsvc "promptgate/internal/app"
	"promptgate/internal/bootstrap"
	"promptgate/internal/cache"
	"promptgate/internal/platform/rabbitmq"
	"promptgate/internal/repository"
	"promptgate/internal/transport/http/handler"
	"promptgate/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config
	invokeTimeout := time.Duration(cfg.Chat.InvokeTimeoutSecond) * time.Second

	userRepo := repository.NewUserRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	modelRepo := repository.NewAIModelRepository(app.MySQL)
	docRepo := repository.NewRAGDocumentRepository(app.MySQL)
	chunkRepo := repository.NewRAGChunkRepository(app.MySQL)

	llmClient := ai.NewOpenAICompatibleClient(invokeTimeout)
	retriever := ai.NewRetriever(chunkRepo, llmClient, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel, cfg.LLM.RetrievalTopK)
	llamaClient := ai.NewLlamaClient(ai.LlamaConfig{
		BaseURL:           cfg.Llama.BaseURL,
		APIKey:            cfg.Llama.APIKey,
		Model:             cfg.Llama.Model,
		Persona:           cfg.Llama.Persona,
		Temperature:       cfg.Llama.Temperature,
		TopP:              cfg.Llama.TopP,
		MaxLength:         cfg.Llama.MaxLength,
		RepetitionPenalty: cfg.Llama.RepetitionPenalty,
	}, invokeTimeout)
	invoker := ai.NewRouter(ai.RouterConfig{ChatBaseURL: cfg.LLM.BaseURL}, llmClient, retriever, llamaClient)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	turnPublisher := rabbitmq.NewTurnPublisher(app.MQConn, cfg.RabbitMQ.TurnEventQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(chatRepo, messageRepo, historyCache, cfg.Chat.PlaceholderName)
	modelService := appsvc.NewModelService(modelRepo, docRepo)
	ingestService := appsvc.NewIngestService(modelRepo, docRepo, chunkRepo, llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.EmbeddingModel,
	})
	answerService := appsvc.NewAnswerService(
		chatRepo,
		messageRepo,
		modelRepo,
		invoker,
		historyCache,
		turnPublisher,
		appsvc.AnswerConfig{
			HistoryCeiling:    cfg.Chat.HistoryCeiling,
			PlaceholderName:   cfg.Chat.PlaceholderName,
			RenamePrefixRunes: cfg.Chat.RenamePrefixRunes,
			InvokeTimeout:     invokeTimeout,
		},
	)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	modelHandler := handler.NewModelHandler(modelService, ingestService)
	answerHandler := handler.NewAnswerHandler(answerService, cfg.Chat.LimitStatus)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authorized := middleware.AccessToken(authService)

	promts := router.Group("/promts", authorized)
	promts.GET("/get_models", modelHandler.GetModels)
	promts.GET("/get_model_info", modelHandler.GetModelInfo)
	promts.GET("/answer", answerHandler.Answer)
	promts.POST("/upload_model/", modelHandler.UploadModel)
	promts.DELETE("/delete_model", modelHandler.DeleteModel)

	user := router.Group("/user", authorized)
	user.POST("/create_chat", chatHandler.CreateChat)
	user.POST("/get_chats", chatHandler.GetChats)
	user.POST("/get_chat_data", chatHandler.GetChatData)
	user.POST("/delete_chat", chatHandler.DeleteChat)

	return router
}
