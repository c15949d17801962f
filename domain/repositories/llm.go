package repositories

import (
	"context"

	"github.com/loquilab/loqui-server/domain/entities"
)

// ModelTier selects which configured model serves a completion. The
// conversation tier carries the role-play itself; the utility tier covers
// translation and summaries; the classifier tier is the smallest model,
// used for strict yes/no style calls.
type ModelTier string

const (
	TierConversation ModelTier = "conversation"
	TierUtility      ModelTier = "utility"
	TierClassifier   ModelTier = "classifier"
)

// ChatMessage is one message of a chat-completion request.
type ChatMessage struct {
	Role    entities.Role `json:"role"`
	Content string        `json:"content"`
}

// CompletionOptions bound a single chat-completion call.
type CompletionOptions struct {
	Tier      ModelTier
	MaxTokens int
	// Deterministic asks for near-zero temperature, for calls whose output
	// is parsed rather than shown to the user.
	Deterministic bool
}

// ChatCompleter abstracts the chat-completion collaborator.
type ChatCompleter interface {
	// Complete returns the assistant text for the given conversation.
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)
}

// Translator abstracts machine translation between languages.
type Translator interface {
	// Translate returns text rendered in the target language, identified by
	// its ISO 639-1 code. The result contains only the translation.
	Translate(ctx context.Context, text, targetCode string) (string, error)
}
