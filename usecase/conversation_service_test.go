package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/loquilab/loqui-server/domain/entities"
	"github.com/loquilab/loqui-server/domain/repositories"
)

const scenarioSabrina = "Uppgift 1: Möt Sabrina"

func newConversationFixture(t *testing.T, chat *fakeChat, translator *fakeTranslator, stt *fakeSpeechToText, tts *fakeTextToSpeech) *ConversationService {
	t.Helper()
	var synth repositories.TextToSpeech
	if tts != nil {
		synth = tts
	}
	return NewConversationService(chat, translator, stt, synth, newTestRegistry(t), zaptest.NewLogger(t))
}

func initializedSession(t *testing.T, svc *ConversationService) *entities.Session {
	t.Helper()
	sess := entities.NewSession("tok-1", "swedish")
	if _, err := svc.Initialize(context.Background(), sess, "swedish", scenarioSabrina, "beginner"); err != nil {
		t.Fatalf("Failed to initialize session: %v", err)
	}
	return sess
}

func TestInitializeBuildsPreamble(t *testing.T) {
	translator := &fakeTranslator{}
	tts := &fakeTextToSpeech{}
	svc := newConversationFixture(t, &fakeChat{}, translator, &fakeSpeechToText{}, tts)

	sess := entities.NewSession("tok-1", "swedish")
	result, err := svc.Initialize(context.Background(), sess, "swedish", scenarioSabrina, "beginner")
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if !sess.Initialized {
		t.Error("Expected session to be marked initialized")
	}
	if got := len(sess.Transcript.Preamble()); got != 2 {
		t.Errorf("Expected level prompt and scenario role in preamble, got %d messages", got)
	}
	if got := len(sess.Transcript.Turns()); got != 0 {
		t.Errorf("Expected no visible turns after initialize, got %d", got)
	}
	if result.Intro == "" {
		t.Error("Expected a non-empty introduction")
	}
	if result.Audio == nil {
		t.Error("Expected introduction audio")
	}
	if tts.calls != 1 {
		t.Errorf("Expected 1 synthesis call, got %d", tts.calls)
	}
}

func TestInitializeUnknownScenario(t *testing.T) {
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, &fakeSpeechToText{}, nil)

	sess := entities.NewSession("tok-1", "german")
	if _, err := svc.Initialize(context.Background(), sess, "german", "no such scenario", ""); err == nil {
		t.Error("Expected error for unknown scenario")
	}
	if sess.Initialized {
		t.Error("Session must not be initialized after a failed scenario lookup")
	}
}

func TestInitializeCustomScenarioOverride(t *testing.T) {
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, &fakeSpeechToText{}, nil)

	sess := entities.NewSession("tok-1", "german")
	sess.CustomScenario = &entities.Scenario{Context: "Eigene Szene.", Role: "You are a custom persona."}

	result, err := svc.Initialize(context.Background(), sess, "german", "ignored name", "")
	if err != nil {
		t.Fatalf("Initialize with custom scenario failed: %v", err)
	}
	if result.Intro == "" {
		t.Error("Expected introduction from the custom scenario")
	}
	if got := len(sess.Transcript.Preamble()); got != 1 {
		t.Errorf("Expected only the custom role in the preamble, got %d messages", got)
	}
}

func TestInitializeTranslationFailureDegrades(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("quota exceeded")}
	svc := newConversationFixture(t, &fakeChat{}, translator, &fakeSpeechToText{}, nil)

	sess := entities.NewSession("tok-1", "swedish")
	result, err := svc.Initialize(context.Background(), sess, "swedish", scenarioSabrina, "")
	if err != nil {
		t.Fatalf("Initialize must not fail on translation errors: %v", err)
	}
	if result.Intro != "Du träffar Sabrina på en fest." {
		t.Errorf("Expected untranslated introduction fallback, got %q", result.Intro)
	}
}

func TestSubmitTurnCompletesPair(t *testing.T) {
	chat := &fakeChat{replies: []string{"Hej! Trevligt att träffas."}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	reply, pairs, err := svc.SubmitTurn(context.Background(), sess, "Hej, jag heter Anna.")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if reply != "Hej! Trevligt att träffas." {
		t.Errorf("Unexpected reply: %q", reply)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 completed pair, got %d", len(pairs))
	}
	if pairs[0].User != "Hej, jag heter Anna." {
		t.Errorf("Pair does not carry the user utterance: %q", pairs[0].User)
	}
	if _, pending := sess.Transcript.PendingUser(); pending {
		t.Error("No pending user message expected after a completed pair")
	}
}

func TestSubmitTurnEmptyInput(t *testing.T) {
	chat := &fakeChat{}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if chat.calls != 0 {
		t.Errorf("Blank input must not reach the chat collaborator, got %d calls", chat.calls)
	}
}

func TestSubmitTurnNotInitialized(t *testing.T) {
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := entities.NewSession("tok-1", "german")

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "Hallo"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestSubmitTurnFailureLeavesPendingUser(t *testing.T) {
	chat := &fakeChat{err: errors.New("rate limited")}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	_, _, err := svc.SubmitTurn(context.Background(), sess, "Hej!")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}

	pending, ok := sess.Transcript.PendingUser()
	if !ok {
		t.Fatal("User message must stay pending after a failed reply")
	}
	if pending != "Hej!" {
		t.Errorf("Unexpected pending message: %q", pending)
	}
}

func TestSubmitTurnAfterFailureKeepsPairingValid(t *testing.T) {
	chat := &fakeChat{err: errors.New("rate limited")}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "first question"); err == nil {
		t.Fatal("Expected the first turn to fail")
	}

	chat.err = nil
	chat.replies = []string{"Här är svaret."}

	reply, pairs, err := svc.SubmitTurn(context.Background(), sess, "second question")
	if err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair after the retried turn, got %d", len(pairs))
	}
	if pairs[0].Assistant != reply {
		t.Errorf("A user utterance is rendered as the assistant half: %+v", pairs[0])
	}
	if !strings.Contains(pairs[0].User, "first question") || !strings.Contains(pairs[0].User, "second question") {
		t.Errorf("Expected both utterances on the user side, got %q", pairs[0].User)
	}
	if _, pending := sess.Transcript.PendingUser(); pending {
		t.Error("No pending user message expected after the completed turn")
	}
}

func TestToggleTranslationCachesPairs(t *testing.T) {
	chat := &fakeChat{replies: []string{"Svar ett.", "Svar två."}}
	translator := &fakeTranslator{}
	svc := newConversationFixture(t, chat, translator, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)
	translator.calls = 0

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "Fråga ett."); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	if _, _, err := svc.SubmitTurn(context.Background(), sess, "Fråga två."); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	pairs, enabled, err := svc.ToggleTranslation(context.Background(), sess, "german")
	if err != nil {
		t.Fatalf("ToggleTranslation failed: %v", err)
	}
	if !enabled {
		t.Error("Expected the translated view to be enabled")
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 translated pairs, got %d", len(pairs))
	}
	if translator.calls != 4 {
		t.Errorf("Expected 4 translation calls for 2 pairs, got %d", translator.calls)
	}

	if _, enabled, _ = svc.ToggleTranslation(context.Background(), sess, "german"); enabled {
		t.Error("Expected the translated view to be disabled after second toggle")
	}
	if _, _, err = svc.ToggleTranslation(context.Background(), sess, "german"); err != nil {
		t.Fatalf("Third toggle failed: %v", err)
	}
	if translator.calls != 4 {
		t.Errorf("Cached pairs must not re-invoke the translator, got %d calls", translator.calls)
	}
}

func TestToggleTranslationFailureRevertsState(t *testing.T) {
	chat := &fakeChat{replies: []string{"Svar."}}
	translator := &fakeTranslator{}
	svc := newConversationFixture(t, chat, translator, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "Fråga."); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}

	translator.err = errors.New("unavailable")
	if _, _, err := svc.ToggleTranslation(context.Background(), sess, "german"); err == nil {
		t.Fatal("Expected error when translation fails")
	}
	if sess.ShowTranslation() {
		t.Error("Toggle must revert when translation fails")
	}
}

func TestProposeAnswerRequiresPair(t *testing.T) {
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	if _, err := svc.ProposeAnswer(context.Background(), sess, "german"); !errors.Is(err, ErrNoTurns) {
		t.Errorf("Expected ErrNoTurns, got %v", err)
	}
}

func TestProposeAnswerDoesNotMutateTranscript(t *testing.T) {
	chat := &fakeChat{replies: []string{"Svar.", "Jag mår bra, tack!"}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := initializedSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), sess, "Hur mår du?"); err != nil {
		t.Fatalf("SubmitTurn failed: %v", err)
	}
	lenBefore := sess.Transcript.Len()

	proposal, err := svc.ProposeAnswer(context.Background(), sess, "german")
	if err != nil {
		t.Fatalf("ProposeAnswer failed: %v", err)
	}
	if proposal.Suggestion != "Jag mår bra, tack!" {
		t.Errorf("Unexpected suggestion: %q", proposal.Suggestion)
	}
	if proposal.SuggestionNative == "" {
		t.Error("Expected a native-language rendering of the suggestion")
	}
	if sess.Transcript.Len() != lenBefore {
		t.Error("ProposeAnswer must not mutate the transcript")
	}
}

func TestQuickRepliesNormalization(t *testing.T) {
	chat := &fakeChat{replies: []string{`{"answers": ["Ja", "Nein", "Ja", "  ", "Vielleicht", "Eine viel zu lange Antwort, die niemals passt", "Gern", "Danke"]}`}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)

	replies := svc.QuickReplies(context.Background(), "Möchtest du Hilfe?", "german")
	want := []string{"Ja", "Nein", "Vielleicht", "Gern"}
	if len(replies) != len(want) {
		t.Fatalf("Expected %d replies, got %d: %v", len(want), len(replies), replies)
	}
	for i, r := range replies {
		if r != want[i] {
			t.Errorf("Reply %d: expected %q, got %q", i, want[i], r)
		}
	}
}

func TestQuickRepliesMalformedPayload(t *testing.T) {
	chat := &fakeChat{replies: []string{"not json at all"}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)

	if replies := svc.QuickReplies(context.Background(), "Hallo?", "german"); len(replies) != 0 {
		t.Errorf("Expected no replies for malformed payload, got %v", replies)
	}
}

func TestQuickRepliesEmptyText(t *testing.T) {
	chat := &fakeChat{}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)

	if replies := svc.QuickReplies(context.Background(), "  ", "german"); replies != nil {
		t.Errorf("Expected nil for blank text, got %v", replies)
	}
	if chat.calls != 0 {
		t.Errorf("Blank text must not reach the chat collaborator, got %d calls", chat.calls)
	}
}

func TestWordFrequencyTallyMerges(t *testing.T) {
	chat := &fakeChat{replies: []string{`{"nouns": ["hund"], "verbs": ["springa"], "adjectives": ["snabb"]}`}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := entities.NewSession("tok-1", "swedish")

	svc.WordFrequencyTally(context.Background(), sess, "hunden springer snabbt")
	if got := sess.Tally().Size(); got != 3 {
		t.Errorf("Expected 3 tallied lemmas, got %d", got)
	}
}

func TestWordFrequencyTallyMalformedPayload(t *testing.T) {
	chat := &fakeChat{replies: []string{"oops"}}
	svc := newConversationFixture(t, chat, &fakeTranslator{}, &fakeSpeechToText{}, nil)
	sess := entities.NewSession("tok-1", "swedish")

	svc.WordFrequencyTally(context.Background(), sess, "hunden springer")
	if got := sess.Tally().Size(); got != 0 {
		t.Errorf("Malformed payload must leave the tally unchanged, got %d", got)
	}
}

func TestTranscribeDegradesToEmpty(t *testing.T) {
	stt := &fakeSpeechToText{err: errors.New("decode failure")}
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, stt, nil)

	if got := svc.Transcribe(context.Background(), "german", []byte("audio"), "clip.webm"); got != "" {
		t.Errorf("Expected empty transcription on failure, got %q", got)
	}
}

func TestTranslateStandalone(t *testing.T) {
	svc := newConversationFixture(t, &fakeChat{}, &fakeTranslator{}, &fakeSpeechToText{}, &fakeTextToSpeech{})

	translated, audio, err := svc.TranslateStandalone(context.Background(), "Hello there", "german")
	if err != nil {
		t.Fatalf("TranslateStandalone failed: %v", err)
	}
	if translated != "[de] Hello there" {
		t.Errorf("Unexpected translation: %q", translated)
	}
	if audio == nil {
		t.Error("Expected synthesized audio")
	}

	if _, _, err := svc.TranslateStandalone(context.Background(), "", "german"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}
