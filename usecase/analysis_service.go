package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/registry"
)

const (
	concludedMaxTokens = 30
	summaryMaxTokens   = 200
	analysisMaxTokens  = 700
)

// AnalysisService produces the end-of-session artifacts: the conclusion
// check, the fact summary and the linguistic analysis of the learner's
// turns.
type AnalysisService struct {
	chat       repositories.ChatCompleter
	translator repositories.Translator
	registry   *registry.Registry
	logger     *zap.Logger
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(chat repositories.ChatCompleter, translator repositories.Translator, reg *registry.Registry, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		chat:       chat,
		translator: translator,
		registry:   reg,
		logger:     logger,
	}
}

// Concluded reports whether the advisory conversation already reached a
// final outcome. A conversation with at most one completed exchange cannot
// have concluded, so the classifier is not consulted. A positive verdict is
// cached on the session; the flag is advisory and never blocks further
// turns.
func (s *AnalysisService) Concluded(ctx context.Context, sess *entities.Session) bool {
	if sess.Concluded {
		return true
	}
	if len(sess.Transcript.Turns()) <= 2 {
		return false
	}

	verdict, err := s.chat.Complete(ctx, []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: concludedPrompt},
		{Role: entities.RoleUser, Content: chatText(sess.Transcript)},
	}, repositories.CompletionOptions{
		Tier:          repositories.TierClassifier,
		MaxTokens:     concludedMaxTokens,
		Deterministic: true,
	})
	if err != nil {
		s.logger.Warn("Conclusion check failed, assuming not concluded", zap.Error(err))
		return false
	}

	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(verdict)), "true") {
		sess.Concluded = true
		return true
	}
	return false
}

// Summarize produces the short German fact summary of the conversation.
func (s *AnalysisService) Summarize(ctx context.Context, sess *entities.Session) (string, error) {
	if len(sess.Transcript.Turns()) == 0 {
		return "", ErrNoTurns
	}

	summary, err := s.chat.Complete(ctx, []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: summaryPrompt},
		{Role: entities.RoleUser, Content: chatText(sess.Transcript)},
	}, repositories.CompletionOptions{
		Tier:      repositories.TierUtility,
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return "", upstream("chat completion", err)
	}
	return summary, nil
}

// Analyze generates the linguistic feedback on the learner's turns. The
// teacher instructions are translated into the learner's native language so
// the feedback arrives in a language the learner reads fluently.
func (s *AnalysisService) Analyze(ctx context.Context, sess *entities.Session, nativeKey string) (string, error) {
	if len(sess.Transcript.Turns()) == 0 {
		return "", ErrNoTurns
	}

	target := s.registry.LanguageOrDefault(sess.Language)
	native := s.registry.LanguageOrDefault(nativeKey)

	instructions := analysisPrompt(target.Label, sess.Level)
	translated, err := s.translator.Translate(ctx, instructions, native.Code)
	if err != nil {
		s.logger.Warn("Analysis prompt translation failed, using untranslated prompt",
			zap.String("native", native.Key),
			zap.Error(err))
		translated = instructions
	}

	analysis, err := s.chat.Complete(ctx, []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: translated},
		{Role: entities.RoleUser, Content: chatText(sess.Transcript)},
	}, repositories.CompletionOptions{
		Tier:      repositories.TierConversation,
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		return "", upstream("chat completion", err)
	}
	return analysis, nil
}

// chatText renders the visible turns as labeled plain text for prompts
// that consume the conversation as a single document.
func chatText(t *entities.Transcript) string {
	var b strings.Builder
	for _, m := range t.Turns() {
		switch m.Role {
		case entities.RoleUser:
			b.WriteString("User: ")
		case entities.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
