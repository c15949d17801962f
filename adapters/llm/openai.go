// Package llm adapts the OpenAI chat-completion API to the domain
// interfaces. One client serves both chat completion and translation;
// translation is a constrained completion on the utility model.
package llm

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
)

const (
	defaultChatModel       = "gpt-4o"
	defaultUtilityModel    = "gpt-4o-mini"
	defaultClassifierModel = "gpt-3.5-turbo"
	defaultTimeoutSeconds  = 30
	maxAttempts            = 3
)

const translationSystemPrompt = "You are a translation assistant. Return only the translated text."

// OpenAIConfig holds configuration for the OpenAI adapter.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - ChatModel: model for conversation turns (default: "gpt-4o")
// - UtilityModel: model for translation and summaries (default: "gpt-4o-mini")
// - ClassifierModel: model for strict yes/no calls (default: "gpt-3.5-turbo")
// - TimeoutSeconds: per-call timeout (default: 30)
type OpenAIConfig struct {
	APIKey          string
	ChatModel       string
	UtilityModel    string
	ClassifierModel string
	TimeoutSeconds  int
}

// ValidateOpenAIConfig validates the OpenAIConfig.
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}

// NewOpenAIConfigFromEnv creates an OpenAIConfig from environment variables.
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:          os.Getenv("OPENAI_API_KEY"),
		ChatModel:       os.Getenv("OPENAI_CHAT_MODEL"),
		UtilityModel:    os.Getenv("OPENAI_UTILITY_MODEL"),
		ClassifierModel: os.Getenv("OPENAI_CLASSIFIER_MODEL"),
	}
}

// OpenAIChat implements ChatCompleter and Translator on the OpenAI API.
type OpenAIChat struct {
	client          *openai.Client
	chatModel       string
	utilityModel    string
	classifierModel string
	timeout         time.Duration
	logger          *zap.Logger
}

var (
	_ repositories.ChatCompleter = (*OpenAIChat)(nil)
	_ repositories.Translator    = (*OpenAIChat)(nil)
)

// NewOpenAIChat creates a new OpenAI chat adapter.
func NewOpenAIChat(config OpenAIConfig, logger *zap.Logger) (*OpenAIChat, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
		logger.Info("Using default chat model", zap.String("model", chatModel))
	}

	utilityModel := config.UtilityModel
	if utilityModel == "" {
		utilityModel = defaultUtilityModel
		logger.Info("Using default utility model", zap.String("model", utilityModel))
	}

	classifierModel := config.ClassifierModel
	if classifierModel == "" {
		classifierModel = defaultClassifierModel
		logger.Info("Using default classifier model", zap.String("model", classifierModel))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}

	return &OpenAIChat{
		client:          openai.NewClient(config.APIKey),
		chatModel:       chatModel,
		utilityModel:    utilityModel,
		classifierModel: classifierModel,
		timeout:         time.Duration(timeoutSeconds) * time.Second,
		logger:          logger,
	}, nil
}

// Complete implements repositories.ChatCompleter.
func (o *OpenAIChat) Complete(ctx context.Context, messages []repositories.ChatMessage, opts repositories.CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     o.modelFor(opts.Tier),
		Messages:  toOpenAIMessages(messages),
		MaxTokens: opts.MaxTokens,
	}
	if opts.Deterministic {
		// go-openai omits a zero temperature, so send the smallest
		// representable value instead.
		req.Temperature = math.SmallestNonzeroFloat32
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err = o.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		o.logger.Warn("Chat completion failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.String("model", req.Model),
			zap.Error(err))

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("chat completion cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no chat completion choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Translate implements repositories.Translator.
func (o *OpenAIChat) Translate(ctx context.Context, text, targetCode string) (string, error) {
	messages := []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: translationSystemPrompt},
		{Role: entities.RoleUser, Content: fmt.Sprintf("Translate the following text into %s. Return only translation:\n\n%s", targetCode, text)},
	}

	translated, err := o.Complete(ctx, messages, repositories.CompletionOptions{
		Tier:      repositories.TierUtility,
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if translated == "" {
		// An empty translation is useless; fall back to the input.
		return text, nil
	}
	return translated, nil
}

func (o *OpenAIChat) modelFor(tier repositories.ModelTier) string {
	switch tier {
	case repositories.TierUtility:
		return o.utilityModel
	case repositories.TierClassifier:
		return o.classifierModel
	default:
		return o.chatModel
	}
}

func toOpenAIMessages(messages []repositories.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return out
}
