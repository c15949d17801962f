// Package stt adapts speech-recognition providers to the domain interface.
package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/repositories"
)

const defaultTranscribeModel = openai.Whisper1

// WhisperSpeechToText implements SpeechToText using the OpenAI
// transcription API.
type WhisperSpeechToText struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// NewWhisperSpeechToText creates a Whisper-backed transcriber. An empty
// model selects the default transcription model.
func NewWhisperSpeechToText(apiKey, model string, logger *zap.Logger) (*WhisperSpeechToText, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultTranscribeModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}
	return &WhisperSpeechToText{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe converts recorded audio to text.
func (w *WhisperSpeechToText) Transcribe(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	filename := config.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	req := openai.AudioRequest{
		Model:    w.model,
		Language: config.Language,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	w.logger.Info("Transcription completed",
		zap.String("language", config.Language),
		zap.Int("audioBytes", len(audio)),
		zap.Int("textLength", len(text)))

	return text, nil
}
