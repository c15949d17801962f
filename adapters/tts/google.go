// Package tts adapts Google Cloud Text-to-Speech to the domain interface.
package tts

import (
	"context"
	"encoding/json"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/loquilab/loqui-server/domain/repositories"
)

const mp3MIMEType = "audio/mpeg"

// GoogleTextToSpeech implements TextToSpeech using Google Cloud
// Text-to-Speech, synthesizing MP3 audio.
type GoogleTextToSpeech struct {
	credentials []byte
	logger      *zap.Logger
}

var _ repositories.TextToSpeech = (*GoogleTextToSpeech)(nil)

// NewGoogleTextToSpeech creates a synthesizer from service-account JSON
// credentials. The payload must be valid JSON; synthesis is an optional
// feature, so callers without credentials should not construct an adapter
// at all rather than pass an empty payload.
func NewGoogleTextToSpeech(credentials []byte, logger *zap.Logger) (*GoogleTextToSpeech, error) {
	if len(credentials) == 0 {
		return nil, fmt.Errorf("google credentials payload is required")
	}
	if !json.Valid(credentials) {
		return nil, fmt.Errorf("google credentials payload is not valid JSON")
	}
	return &GoogleTextToSpeech{credentials: credentials, logger: logger}, nil
}

// Synthesize renders text as MP3 audio.
func (g *GoogleTextToSpeech) Synthesize(ctx context.Context, text string, voice repositories.VoiceConfig) (*repositories.Synthesis, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsJSON(g.credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.Locale,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}

	g.logger.Info("Synthesis completed",
		zap.String("locale", voice.Locale),
		zap.Int("audioBytes", len(resp.AudioContent)))

	return &repositories.Synthesis{
		Audio:    resp.AudioContent,
		MIMEType: mp3MIMEType,
	}, nil
}
