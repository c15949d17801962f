package repositories

import "context"

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// Transcribe converts recorded audio to text.
	Transcribe(ctx context.Context, audio []byte, config AudioConfig) (string, error)
}

// AudioConfig describes the uploaded audio and the expected language.
type AudioConfig struct {
	// Filename carries the upload's original name; some providers sniff the
	// container format from its extension.
	Filename string `json:"filename"`
	// Language is the ISO 639-1 code, Locale the BCP-47 speech locale.
	Language   string `json:"language"`
	Locale     string `json:"locale"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
}
