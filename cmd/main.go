package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/adapters/llm"
	"github.com/loquilab/loqui-server/adapters/stt"
	"github.com/loquilab/loqui-server/adapters/tts"
	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/api"
	"github.com/loquilab/loqui-server/internal/config"
	"github.com/loquilab/loqui-server/internal/registry"
	"github.com/loquilab/loqui-server/internal/session"
	"github.com/loquilab/loqui-server/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	reg, err := registry.Load(cfg.PromptsPath)
	if err != nil {
		logger.Fatal("Failed to load scenarios", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	chatClient, err := llm.NewOpenAIChat(llm.OpenAIConfig{
		APIKey:       cfg.OpenAIAPIKey,
		ChatModel:    cfg.OpenAIChatModel,
		UtilityModel: cfg.OpenAIUtilityModel,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create chat adapter", zap.Error(err))
	}

	var transcriber repositories.SpeechToText
	if cfg.STTProvider == "google" {
		transcriber = stt.NewGoogleSpeechToText(cfg.GoogleCredentials, logger)
	} else {
		whisper, err := stt.NewWhisperSpeechToText(cfg.OpenAIAPIKey, cfg.OpenAITranscribeModel, logger)
		if err != nil {
			logger.Fatal("Failed to create transcription adapter", zap.Error(err))
		}
		transcriber = whisper
	}

	// Speech synthesis is optional: without credentials the server runs
	// text-only.
	var synthesizer repositories.TextToSpeech
	if len(cfg.GoogleCredentials) > 0 {
		googleTTS, err := tts.NewGoogleTextToSpeech(cfg.GoogleCredentials, logger)
		if err != nil {
			logger.Fatal("Failed to create speech synthesis adapter", zap.Error(err))
		}
		synthesizer = googleTTS
	} else {
		logger.Warn("GOOGLE_CREDENTIALS not set, speech synthesis disabled")
	}

	// Initialize usecase services
	store := session.NewStore(logger)
	conversations := usecase.NewConversationService(chatClient, chatClient, transcriber, synthesizer, reg, logger)
	conversations.SetWordTally(cfg.EnableWordTally)
	analysis := usecase.NewAnalysisService(chatClient, chatClient, reg, logger)
	reports := usecase.NewReportService(chatClient, reg, logger)

	// Initialize API routes
	api.InitRoutes(e, api.NewServer(conversations, analysis, reports, store, reg, logger))

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.Int("scenarios", len(reg.ScenarioNames())),
		zap.Bool("synthesis", synthesizer != nil))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
