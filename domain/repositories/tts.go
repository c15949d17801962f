package repositories

import "context"

// Synthesis is the result of a text-to-speech call.
type Synthesis struct {
	Audio    []byte
	MIMEType string
}

// VoiceConfig selects the voice for synthesis.
type VoiceConfig struct {
	// Locale is the BCP-47 speech locale, e.g. "de-DE".
	Locale string `json:"locale"`
}

// TextToSpeech abstracts speech synthesis services.
type TextToSpeech interface {
	// Synthesize renders text as spoken audio.
	Synthesize(ctx context.Context, text string, voice VoiceConfig) (*Synthesis, error)
}
