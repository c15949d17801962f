package entities

import (
	"sync"
	"time"
)

// sessionTTL is the sliding inactivity window after which a session is
// considered dead and eligible for lazy eviction from the store.
const sessionTTL = 24 * time.Hour

// Session is the per-user server-side conversation state, keyed by an
// opaque token delivered via cookie. One session object exists per token;
// concurrent requests carrying the same token share it by reference and
// serialize turns through the session mutex.
type Session struct {
	Token       string
	Language    string
	Scenario    string
	Level       string
	Initialized bool
	Transcript  *Transcript

	// Concluded is advisory only: it records the latest classifier verdict
	// and never blocks further turns.
	Concluded bool

	// CustomScenario overrides the registry entry for this session only.
	// Registry state is never mutated per request.
	CustomScenario *Scenario

	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	mu              sync.Mutex
	showTranslation bool
	translatedPairs []Pair
	tally           WordTally
}

// NewSession creates a fresh, uninitialized session.
func NewSession(token, language string) *Session {
	now := time.Now()
	return &Session{
		Token:        token,
		Language:     language,
		Transcript:   NewTranscript(),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(sessionTTL),
		tally:        NewWordTally(),
	}
}

// Lock serializes turns within this session. Handlers hold the lock for the
// duration of each user-facing action so interleaved requests with the same
// token cannot corrupt the pairing invariants.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch updates the last-active timestamp and extends the expiry window.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
	s.ExpiresAt = s.LastActiveAt.Add(sessionTTL)
}

// IsExpired reports whether the session passed its inactivity deadline.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ResetDerivedState clears the translation cache, the word tally, the
// translation toggle and the concluded flag. Called whenever the transcript
// is rebuilt wholesale.
func (s *Session) ResetDerivedState() {
	s.showTranslation = false
	s.translatedPairs = nil
	s.tally = NewWordTally()
	s.Concluded = false
}

// ToggleTranslation flips the translated-view flag and returns the new state.
func (s *Session) ToggleTranslation() bool {
	s.showTranslation = !s.showTranslation
	return s.showTranslation
}

// ShowTranslation reports whether the translated view is active.
func (s *Session) ShowTranslation() bool {
	return s.showTranslation
}

// TranslatedPairs returns the cached translated view. The cache is
// append-only and positionally aligned with Transcript.Pairs.
func (s *Session) TranslatedPairs() []Pair {
	out := make([]Pair, len(s.translatedPairs))
	copy(out, s.translatedPairs)
	return out
}

// ExtendTranslationCache appends freshly translated pairs. Cached positions
// are never rewritten, so repeated toggles cost no collaborator calls for
// pairs already translated.
func (s *Session) ExtendTranslationCache(pairs ...Pair) {
	s.translatedPairs = append(s.translatedPairs, pairs...)
}

// Tally returns the running word-frequency tally.
func (s *Session) Tally() WordTally {
	return s.tally
}

// MergeTally folds newly classified lemmas into the running tally.
func (s *Session) MergeTally(nouns, verbs, adjectives []string) {
	s.tally.Merge(nouns, verbs, adjectives)
}
