package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/loquilab/loqui-server/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText using Google Cloud
// Speech-to-Text. Recognition is synchronous: uploads are short user
// utterances, well inside the one-minute limit of the Recognize call.
type GoogleSpeechToText struct {
	credentials []byte
	logger      *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Google Cloud transcriber. The credentials
// payload is the service-account JSON; nil falls back to application
// default credentials.
func NewGoogleSpeechToText(credentials []byte, logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{credentials: credentials, logger: logger}
}

// Transcribe converts recorded audio to text.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	var opts []option.ClientOption
	if len(g.credentials) > 0 {
		opts = append(opts, option.WithCredentialsJSON(g.credentials))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(config.SampleRate),
			LanguageCode:    config.Locale,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}

	g.logger.Info("Recognition completed",
		zap.String("locale", config.Locale),
		zap.Int("textLength", len(transcript)))

	return transcript, nil
}

// audioEncoding converts a string encoding to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "", "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
