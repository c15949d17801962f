package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/registry"
)

type fakeChat struct {
	replies  []string
	err      error
	calls    int
	lastMsgs []repositories.ChatMessage
	lastOpts repositories.CompletionOptions
}

func (f *fakeChat) Complete(_ context.Context, msgs []repositories.ChatMessage, opts repositories.CompletionOptions) (string, error) {
	f.calls++
	f.lastMsgs = msgs
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakeTranslator struct {
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, text, targetCode string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("[%s] %s", targetCode, text), nil
}

type fakeSpeechToText struct {
	text  string
	err   error
	calls int
}

func (f *fakeSpeechToText) Transcribe(_ context.Context, _ []byte, _ repositories.AudioConfig) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeTextToSpeech struct {
	err   error
	calls int
}

func (f *fakeTextToSpeech) Synthesize(_ context.Context, _ string, _ repositories.VoiceConfig) (*repositories.Synthesis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &repositories.Synthesis{Audio: []byte("mp3"), MIMEType: "audio/mpeg"}, nil
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `"Uppgift 1: Möt Sabrina":
  context: "Du träffar Sabrina på en fest."
  role: "You are Sabrina, a friendly person at a party."
"Social hilfe check":
  context: "Beratung zur sozialen Unterstützung."
  role: "You are a social services advisor."
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write prompts fixture: %v", err)
	}

	reg, err := registry.Load(path)
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}
	return reg
}
