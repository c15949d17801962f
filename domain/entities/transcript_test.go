package entities

import "testing"

func TestTranscriptPreambleHidden(t *testing.T) {
	tr := NewTranscript(
		Message{Content: "You are playing Sabrina."},
		Message{Content: "Meet your friend in the city."},
	)

	if len(tr.Preamble()) != 2 {
		t.Errorf("Expected 2 preamble messages, got %d", len(tr.Preamble()))
	}

	if len(tr.Pairs()) != 0 {
		t.Errorf("Preamble must not appear as pairs, got %d", len(tr.Pairs()))
	}

	for _, m := range tr.Preamble() {
		if m.Role != RoleSystem {
			t.Errorf("Expected system role in preamble, got %s", m.Role)
		}
	}
}

func TestTranscriptPairing(t *testing.T) {
	tr := NewTranscript(Message{Content: "persona"})

	tr.AppendUser("Hej, hur mår du?")
	tr.AppendAssistant("Bra, tack! 😊")
	tr.AppendUser("Vad jobbar du med?")
	tr.AppendAssistant("Jag är sjuksköterska.")

	pairs := tr.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}

	if pairs[0].User != "Hej, hur mår du?" || pairs[0].Assistant != "Bra, tack! 😊" {
		t.Errorf("First pair mismatched: %+v", pairs[0])
	}

	if _, pending := tr.PendingUser(); pending {
		t.Error("No pending user message expected after completed pairs")
	}
}

func TestTranscriptPendingUserNotDropped(t *testing.T) {
	tr := NewTranscript(Message{Content: "persona"})

	tr.AppendUser("first")
	tr.AppendAssistant("reply")
	tr.AppendUser("unanswered")

	pairs := tr.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 completed pair, got %d", len(pairs))
	}

	pending, ok := tr.PendingUser()
	if !ok {
		t.Fatal("Expected a pending user message")
	}
	if pending != "unanswered" {
		t.Errorf("Expected pending message 'unanswered', got %q", pending)
	}

	// The late assistant reply completes the pair.
	tr.AppendAssistant("late reply")
	if len(tr.Pairs()) != 2 {
		t.Errorf("Expected 2 pairs after late reply, got %d", len(tr.Pairs()))
	}
	if _, ok := tr.PendingUser(); ok {
		t.Error("Pending message should be cleared after assistant reply")
	}
}

func TestTranscriptAppendUserExtendsPending(t *testing.T) {
	tr := NewTranscript(Message{Content: "persona"})

	tr.AppendUser("first question")
	tr.AppendUser("second question")

	if len(tr.Pairs()) != 0 {
		t.Fatalf("Expected no pairs while the reply is outstanding, got %d", len(tr.Pairs()))
	}

	pending, ok := tr.PendingUser()
	if !ok {
		t.Fatal("Expected a pending user message")
	}
	if pending != "first question\nsecond question" {
		t.Errorf("Expected both utterances in the pending message, got %q", pending)
	}

	tr.AppendAssistant("reply")
	pairs := tr.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Assistant != "reply" {
		t.Errorf("A user utterance leaked into the assistant half: %+v", pairs[0])
	}
}

func TestTranscriptMessagesOrder(t *testing.T) {
	tr := NewTranscript(Message{Content: "sys1"}, Message{Content: "sys2"})
	tr.AppendUser("u1")
	tr.AppendAssistant("a1")

	msgs := tr.Messages()
	if len(msgs) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(msgs))
	}

	wantRoles := []Role{RoleSystem, RoleSystem, RoleUser, RoleAssistant}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("Message %d: expected role %s, got %s", i, want, msgs[i].Role)
		}
	}
}

func TestTranscriptReset(t *testing.T) {
	tr := NewTranscript(Message{Content: "old persona"})
	tr.AppendUser("u1")
	tr.AppendAssistant("a1")

	tr.Reset(Message{Content: "new persona"})

	if len(tr.Pairs()) != 0 {
		t.Error("Reset must clear all turns")
	}
	if tr.Len() != 1 {
		t.Errorf("Expected only the new preamble, got %d messages", tr.Len())
	}
	if tr.Preamble()[0].Content != "new persona" {
		t.Errorf("Unexpected preamble content %q", tr.Preamble()[0].Content)
	}
}
