package api

import "github.com/loquilab/loqui-server/domain/entities"

// InitializeRequest starts or restarts a conversation. A non-empty
// custom_role overrides the named scenario for this session only.
type InitializeRequest struct {
	Language      string `json:"language"`
	Scenario      string `json:"scenario"`
	Level         string `json:"level"`
	CustomContext string `json:"custom_context,omitempty"`
	CustomRole    string `json:"custom_role,omitempty"`
}

// InitializeResponse carries the narrated scenario introduction and the
// (empty) conversation state.
type InitializeResponse struct {
	OK             bool            `json:"ok"`
	Intro          string          `json:"intro"`
	IntroAudio     string          `json:"intro_audio,omitempty"`
	IntroAudioMIME string          `json:"intro_audio_mime,omitempty"`
	QuickReplies   []string        `json:"quick_replies,omitempty"`
	State          []entities.Pair `json:"state"`
}

// SendMessageRequest is a typed user turn.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// TurnResponse is the outcome of a user turn, spoken or typed. State is the
// completed pairs; a pending user message without a reply is not part of it.
type TurnResponse struct {
	OK             bool            `json:"ok"`
	Transcription  string          `json:"transcription,omitempty"`
	Reply          string          `json:"reply"`
	ReplyAudio     string          `json:"reply_audio,omitempty"`
	ReplyAudioMIME string          `json:"reply_audio_mime,omitempty"`
	Concluded      bool            `json:"concluded"`
	QuickReplies   []string        `json:"quick_replies,omitempty"`
	State          []entities.Pair `json:"state"`
}

// TranslateRequest translates free text into the target language.
type TranslateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TranslateResponse carries the translation and optional narration.
type TranslateResponse struct {
	OK          bool   `json:"ok"`
	Translation string `json:"translation"`
	Audio       string `json:"audio,omitempty"`
	AudioMIME   string `json:"audio_mime,omitempty"`
}

// QuickRepliesRequest asks for short answer suggestions to a message.
type QuickRepliesRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// QuickRepliesResponse lists the suggestions, possibly empty.
type QuickRepliesResponse struct {
	OK           bool     `json:"ok"`
	QuickReplies []string `json:"quick_replies"`
}

// ProposeAnswerRequest asks for a suggested next user utterance. Language is
// the learner's native language for the parallel rendering.
type ProposeAnswerRequest struct {
	Language string `json:"language"`
}

// ProposeAnswerResponse carries the suggestion in the target language, its
// native-language rendering, and optional narration.
type ProposeAnswerResponse struct {
	OK               bool   `json:"ok"`
	Suggestion       string `json:"suggestion"`
	SuggestionNative string `json:"suggestion_native"`
	Audio            string `json:"audio,omitempty"`
	AudioMIME        string `json:"audio_mime,omitempty"`
}

// ToggleTranslationRequest flips the translated transcript view.
type ToggleTranslationRequest struct {
	Language string `json:"language"`
}

// ToggleTranslationResponse returns the view now in effect.
type ToggleTranslationResponse struct {
	OK      bool            `json:"ok"`
	Enabled bool            `json:"enabled"`
	State   []entities.Pair `json:"state"`
}

// AnalyzeRequest asks for linguistic feedback in the native language.
type AnalyzeRequest struct {
	Language string `json:"language"`
}

// AnalyzeResponse carries the feedback text.
type AnalyzeResponse struct {
	OK       bool   `json:"ok"`
	Analysis string `json:"analysis"`
}

// ResetResponse confirms the cleared conversation.
type ResetResponse struct {
	OK    bool            `json:"ok"`
	State []entities.Pair `json:"state"`
}

// LanguageInfo is one selectable conversation language.
type LanguageInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Flag  string `json:"flag"`
}

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
