package entities

// Pair is one completed exchange: a user utterance and the assistant reply
// that answered it.
type Pair struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Transcript is the ordered message log of one role-play conversation.
// The preamble holds the system messages establishing persona and scenario;
// they are never rendered as chat bubbles. Turns hold the visible
// conversation, alternating user/assistant starting with user.
type Transcript struct {
	preamble []Message
	turns    []Message
}

// NewTranscript creates a transcript with the given system preamble.
func NewTranscript(preamble ...Message) *Transcript {
	t := &Transcript{}
	t.Reset(preamble...)
	return t
}

// Reset clears the conversation wholesale and installs a new preamble.
// Element-wise deletion is intentionally not supported.
func (t *Transcript) Reset(preamble ...Message) {
	t.preamble = make([]Message, 0, len(preamble))
	for _, m := range preamble {
		t.preamble = append(t.preamble, Message{Role: RoleSystem, Content: m.Content})
	}
	t.turns = nil
}

// Preamble returns the hidden system messages.
func (t *Transcript) Preamble() []Message {
	out := make([]Message, len(t.preamble))
	copy(out, t.preamble)
	return out
}

// AppendUser appends a user utterance as the next turn. A user message
// still waiting for its reply is extended instead of appended, so turns
// stay strictly alternating and positional pairing stays valid.
func (t *Transcript) AppendUser(content string) {
	if n := len(t.turns); n%2 == 1 {
		t.turns[n-1].Content += "\n" + content
		return
	}
	t.turns = append(t.turns, Message{Role: RoleUser, Content: content})
}

// AppendAssistant appends an assistant reply, completing the pending pair.
func (t *Transcript) AppendAssistant(content string) {
	t.turns = append(t.turns, Message{Role: RoleAssistant, Content: content})
}

// Messages returns the full log, preamble first, in conversation order.
// This is the exact sequence sent to the chat-completion collaborator.
func (t *Transcript) Messages() []Message {
	out := make([]Message, 0, len(t.preamble)+len(t.turns))
	out = append(out, t.preamble...)
	out = append(out, t.turns...)
	return out
}

// Turns returns the visible conversation messages after the preamble.
func (t *Transcript) Turns() []Message {
	out := make([]Message, len(t.turns))
	copy(out, t.turns)
	return out
}

// Pairs returns the completed (user, assistant) exchanges. A trailing user
// message whose reply has not arrived yet is not part of any pair; it is
// reported by PendingUser instead of being dropped.
func (t *Transcript) Pairs() []Pair {
	var pairs []Pair
	for i := 0; i+1 < len(t.turns); i += 2 {
		pairs = append(pairs, Pair{
			User:      t.turns[i].Content,
			Assistant: t.turns[i+1].Content,
		})
	}
	return pairs
}

// PendingUser reports an unpaired trailing user message, if any.
func (t *Transcript) PendingUser() (string, bool) {
	if len(t.turns)%2 == 1 {
		return t.turns[len(t.turns)-1].Content, true
	}
	return "", false
}

// Len returns the total number of messages including the preamble.
func (t *Transcript) Len() int {
	return len(t.preamble) + len(t.turns)
}
