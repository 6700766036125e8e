package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ragchat/internal/ai"
	appsvc "ragchat/internal/app"
	"ragchat/internal/cache"
	"ragchat/internal/config"
	"ragchat/internal/model"
	mysqlClient "ragchat/internal/platform/mysql"
	redisClient "ragchat/internal/platform/redis"
	"ragchat/internal/repository"
	"ragchat/internal/vectorstore/qdrant"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	Qdrant *qdrant.Client

	Auth      *appsvc.AuthService
	Documents *appsvc.DocumentService
	RAG       *appsvc.RAGService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	qdrantCli := qdrant.NewClient(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		VectorSize: cfg.Qdrant.VectorSize,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSeconds) * time.Second,
	})
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := qdrantCli.EnsureCollection(ensureCtx); err != nil {
		return nil, fmt.Errorf("ensure qdrant collection failed: %w", err)
	}

	llmClient := ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	llm := ai.NewService(
		llmClient,
		ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model},
		ai.EmbeddingConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.EmbeddingModel},
	)

	userRepo := repository.NewUserRepository(mysqlDB)
	tokenCache := cache.NewTokenCache(redisCli)

	authService := appsvc.NewAuthService(
		userRepo,
		tokenCache,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinute)*time.Minute,
	)
	documentService := appsvc.NewDocumentService(
		qdrantCli,
		llm,
		cfg.RAG.ChunkSize,
		cfg.RAG.ChunkOverlap,
		logger,
	)
	ragService := appsvc.NewRAGService(
		qdrantCli,
		llm,
		llm,
		appsvc.RetrievalPolicy{TopK: cfg.RAG.TopK, ScoreThreshold: cfg.RAG.ScoreThreshold},
		logger,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		Qdrant:    qdrantCli,
		Auth:      authService,
		Documents: documentService,
		RAG:       ragService,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
