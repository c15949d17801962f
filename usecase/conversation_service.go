// Package usecase sequences the external collaborators (chat completion,
// translation, transcription, speech synthesis) into the user-visible
// conversation actions, and owns the transcript semantics.
package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
	"github.com/loquilab/loqui-server/internal/registry"
	"github.com/loquilab/loqui-server/internal/textutil"
)

const (
	replyMaxTokens      = 160
	proposalMaxTokens   = 100
	quickReplyMaxTokens = 120
	wordClassMaxTokens  = 200
	quickReplyLimit     = 4
	quickReplyMaxChars  = 30
)

// ConversationService orchestrates the conversation flow. All collaborators
// are injected; there are no package-level clients.
type ConversationService struct {
	chat       repositories.ChatCompleter
	translator repositories.Translator
	stt        repositories.SpeechToText
	tts        repositories.TextToSpeech
	registry   *registry.Registry
	tallyWords bool
	logger     *zap.Logger
}

// NewConversationService creates a new conversation service. tts may be nil,
// in which case all actions degrade to text-only responses.
func NewConversationService(
	chat repositories.ChatCompleter,
	translator repositories.Translator,
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	reg *registry.Registry,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		chat:       chat,
		translator: translator,
		stt:        stt,
		tts:        tts,
		registry:   reg,
		logger:     logger,
	}
}

// SetWordTally enables the per-turn vocabulary tally enrichment.
func (s *ConversationService) SetWordTally(enabled bool) {
	s.tallyWords = enabled
}

// InitResult is the outcome of initializing a conversation.
type InitResult struct {
	Intro string
	Audio *repositories.Synthesis
}

// Initialize rebuilds the session's transcript for the given language,
// scenario and proficiency level. The scenario preamble is translated into
// the target language; a translation failure degrades to the untranslated
// text because the conversation must still start. The returned introduction
// is for narration only and is never stored as a chat message.
func (s *ConversationService) Initialize(ctx context.Context, sess *entities.Session, languageKey, scenarioKey, level string) (*InitResult, error) {
	lang := s.registry.LanguageOrDefault(languageKey)

	scenario := sess.CustomScenario
	if scenario == nil {
		resolved, err := s.registry.ResolveScenario(scenarioKey)
		if err != nil {
			return nil, err
		}
		scenario = &resolved
	}

	var preamble []entities.Message
	if levelPrompt := s.registry.LevelPrompt(level); levelPrompt != "" {
		preamble = append(preamble, entities.Message{Content: s.translateOrFallback(ctx, levelPrompt, lang.Code)})
	}
	preamble = append(preamble, entities.Message{Content: s.translateOrFallback(ctx, scenario.Role, lang.Code)})

	intro := s.translateOrFallback(ctx, scenario.Context, lang.Code)

	sess.Transcript.Reset(preamble...)
	sess.ResetDerivedState()
	sess.Language = lang.Key
	sess.Scenario = scenarioKey
	sess.Level = level
	sess.Initialized = true
	sess.Touch()

	s.logger.Info("Conversation initialized",
		zap.String("token", sess.Token),
		zap.String("language", lang.Key),
		zap.String("scenario", scenarioKey))

	return &InitResult{
		Intro: intro,
		Audio: s.synthesize(ctx, intro, lang),
	}, nil
}

// SubmitTurn appends the user utterance, asks the chat collaborator for the
// assistant reply, and appends it. When the reply call fails the user
// message stays in the transcript as a pending turn; it is never dropped.
func (s *ConversationService) SubmitTurn(ctx context.Context, sess *entities.Session, utterance string) (string, []entities.Pair, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return "", sess.Transcript.Pairs(), ErrEmptyInput
	}
	if !sess.Initialized {
		return "", nil, ErrNotInitialized
	}

	sess.Transcript.AppendUser(utterance)
	sess.Touch()

	if s.tallyWords {
		s.WordFrequencyTally(ctx, sess, utterance)
	}

	reply, err := s.chat.Complete(ctx, toChatMessages(sess.Transcript.Messages()), repositories.CompletionOptions{
		Tier:      repositories.TierConversation,
		MaxTokens: replyMaxTokens,
	})
	if err != nil {
		s.logger.Error("Assistant reply failed, turn left pending",
			zap.String("token", sess.Token),
			zap.Error(err))
		return "", sess.Transcript.Pairs(), upstream("chat completion", err)
	}

	sess.Transcript.AppendAssistant(reply)
	return reply, sess.Transcript.Pairs(), nil
}

// Transcribe converts uploaded audio to text. Transcription is
// non-essential for the request to succeed, so failures degrade to an
// empty transcription instead of aborting.
func (s *ConversationService) Transcribe(ctx context.Context, languageKey string, audio []byte, filename string) string {
	lang := s.registry.LanguageOrDefault(languageKey)

	text, err := s.stt.Transcribe(ctx, audio, repositories.AudioConfig{
		Filename: filename,
		Language: lang.Code,
		Locale:   lang.SpeechLocale,
	})
	if err != nil {
		s.logger.Warn("Transcription failed, returning empty transcription",
			zap.String("language", lang.Key),
			zap.Error(err))
		return ""
	}
	return text
}

// TranslateStandalone translates free text into the target language and
// synthesizes it. It has no transcript side effects.
func (s *ConversationService) TranslateStandalone(ctx context.Context, text, targetKey string) (string, *repositories.Synthesis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, ErrEmptyInput
	}

	lang := s.registry.LanguageOrDefault(targetKey)
	translated, err := s.translator.Translate(ctx, text, lang.Code)
	if err != nil {
		return "", nil, upstream("translation", err)
	}

	return translated, s.synthesize(ctx, translated, lang), nil
}

// ToggleTranslation flips the translated-view flag. When the view turns on,
// pairs not yet in the cache are translated into the native language and
// appended; cached pairs never re-invoke the translator.
func (s *ConversationService) ToggleTranslation(ctx context.Context, sess *entities.Session, nativeKey string) ([]entities.Pair, bool, error) {
	if !sess.ToggleTranslation() {
		return sess.Transcript.Pairs(), false, nil
	}

	native := s.registry.LanguageOrDefault(nativeKey)
	pairs := sess.Transcript.Pairs()
	for i := len(sess.TranslatedPairs()); i < len(pairs); i++ {
		user, err := s.translator.Translate(ctx, pairs[i].User, native.Code)
		if err != nil {
			sess.ToggleTranslation()
			return nil, false, upstream("translation", err)
		}
		assistant, err := s.translator.Translate(ctx, pairs[i].Assistant, native.Code)
		if err != nil {
			sess.ToggleTranslation()
			return nil, false, upstream("translation", err)
		}
		sess.ExtendTranslationCache(entities.Pair{User: user, Assistant: assistant})
	}

	return sess.TranslatedPairs(), true, nil
}

// Proposal is a suggested next user utterance. It is a side-channel hint:
// the canonical transcript is never mutated.
type Proposal struct {
	Suggestion       string
	SuggestionNative string
	Audio            *repositories.Synthesis
}

// ProposeAnswer generates a plausible next user utterance by swapping the
// user and assistant roles of the conversation so far. Requires at least
// one completed pair; with zero pairs the role swap is undefined.
func (s *ConversationService) ProposeAnswer(ctx context.Context, sess *entities.Session, nativeKey string) (*Proposal, error) {
	if !sess.Initialized {
		return nil, ErrNotInitialized
	}
	if len(sess.Transcript.Pairs()) == 0 {
		return nil, ErrNoTurns
	}

	target := s.registry.LanguageOrDefault(sess.Language)
	native := s.registry.LanguageOrDefault(nativeKey)

	suggestion, err := s.chat.Complete(ctx, roleSwapped(sess.Transcript), repositories.CompletionOptions{
		Tier:      repositories.TierConversation,
		MaxTokens: proposalMaxTokens,
	})
	if err != nil {
		return nil, upstream("chat completion", err)
	}

	suggestionNative, err := s.translator.Translate(ctx, suggestion, native.Code)
	if err != nil {
		return nil, upstream("translation", err)
	}

	return &Proposal{
		Suggestion:       suggestion,
		SuggestionNative: suggestionNative,
		Audio:            s.synthesize(ctx, suggestion, target),
	}, nil
}

// QuickReplies asks for short suggested answers to an assistant message.
// The result is best effort: any collaborator or parse failure yields an
// empty list, never an error.
func (s *ConversationService) QuickReplies(ctx context.Context, text, languageKey string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lang := s.registry.LanguageOrDefault(languageKey)
	raw, err := s.chat.Complete(ctx, []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: quickReplyPrompt},
		{Role: entities.RoleUser, Content: "Language: " + lang.Label + ".\nAssistant message:\n" + text + "\n\nReturn only JSON."},
	}, repositories.CompletionOptions{
		Tier:          repositories.TierClassifier,
		MaxTokens:     quickReplyMaxTokens,
		Deterministic: true,
	})
	if err != nil {
		s.logger.Warn("Quick reply suggestion failed", zap.Error(err))
		return nil
	}

	var payload struct {
		Answers []string `json:"answers"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn("Malformed quick reply payload", zap.String("raw", raw), zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	var replies []string
	for _, answer := range payload.Answers {
		answer = strings.TrimSpace(answer)
		if answer == "" || len([]rune(answer)) > quickReplyMaxChars {
			continue
		}
		if _, dup := seen[answer]; dup {
			continue
		}
		seen[answer] = struct{}{}
		replies = append(replies, answer)
		if len(replies) == quickReplyLimit {
			break
		}
	}
	return replies
}

// WordFrequencyTally classifies the utterance's words into noun/verb/
// adjective lemma sets and merges them into the session's running tally.
// Malformed model output leaves the tally unchanged; this enrichment never
// fails the turn.
func (s *ConversationService) WordFrequencyTally(ctx context.Context, sess *entities.Session, utterance string) {
	raw, err := s.chat.Complete(ctx, []repositories.ChatMessage{
		{Role: entities.RoleSystem, Content: wordClassPrompt},
		{Role: entities.RoleUser, Content: utterance},
	}, repositories.CompletionOptions{
		Tier:          repositories.TierUtility,
		MaxTokens:     wordClassMaxTokens,
		Deterministic: true,
	})
	if err != nil {
		s.logger.Warn("Word classification failed, tally unchanged", zap.Error(err))
		return
	}

	var payload struct {
		Nouns      []string `json:"nouns"`
		Verbs      []string `json:"verbs"`
		Adjectives []string `json:"adjectives"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		s.logger.Warn("Malformed word classification payload, tally unchanged",
			zap.String("raw", raw),
			zap.Error(err))
		return
	}

	sess.MergeTally(payload.Nouns, payload.Verbs, payload.Adjectives)
}

// Speak synthesizes free text in the given language. Returns nil when
// synthesis is unavailable or fails; audio is always optional.
func (s *ConversationService) Speak(ctx context.Context, text, languageKey string) *repositories.Synthesis {
	return s.synthesize(ctx, text, s.registry.LanguageOrDefault(languageKey))
}

// translateOrFallback degrades to the untranslated text on failure.
func (s *ConversationService) translateOrFallback(ctx context.Context, text, targetCode string) string {
	translated, err := s.translator.Translate(ctx, text, targetCode)
	if err != nil {
		s.logger.Warn("Translation failed, using untranslated text",
			zap.String("target", targetCode),
			zap.Error(err))
		return text
	}
	return translated
}

// synthesize renders speech for the given language, degrading to no audio
// when synthesis is unavailable or fails.
func (s *ConversationService) synthesize(ctx context.Context, text string, lang registry.Language) *repositories.Synthesis {
	if s.tts == nil {
		return nil
	}

	text = strings.TrimSpace(textutil.StripEmojis(text))
	if text == "" {
		return nil
	}

	audio, err := s.tts.Synthesize(ctx, text, repositories.VoiceConfig{Locale: lang.SpeechLocale})
	if err != nil {
		s.logger.Warn("Speech synthesis failed, responding without audio",
			zap.String("locale", lang.SpeechLocale),
			zap.Error(err))
		return nil
	}
	return audio
}

// roleSwapped returns the chat messages with user and assistant roles
// exchanged, so the model continues the conversation from the user's side.
func roleSwapped(t *entities.Transcript) []repositories.ChatMessage {
	msgs := toChatMessages(t.Messages())
	for i := range msgs {
		switch msgs[i].Role {
		case entities.RoleUser:
			msgs[i].Role = entities.RoleAssistant
		case entities.RoleAssistant:
			msgs[i].Role = entities.RoleUser
		}
	}
	return msgs
}

func toChatMessages(msgs []entities.Message) []repositories.ChatMessage {
	out := make([]repositories.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = repositories.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
