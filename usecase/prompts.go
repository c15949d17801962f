package usecase

import "fmt"

// Prompt text sent to the chat-completion collaborator. The conversation
// originated as speech, so the analysis prompts forbid feedback on
// punctuation and capitalization that the transcriber never produced.

const quickReplyPrompt = "You analyze a single assistant message and decide whether short quick-reply answers are helpful. " +
	`Return JSON only, with schema: {"answers": [string, ...]}. ` +
	"Rules: max 4 answers, each <= 30 chars, no duplicates, no punctuation-only entries. " +
	`If no clear short answers exist, return {"answers": []}.`

const wordClassPrompt = "You classify the words of a learner utterance by word class. " +
	"Return JSON only, with schema: " +
	`{"nouns": [string, ...], "verbs": [string, ...], "adjectives": [string, ...]}. ` +
	"Every word must be reduced to its base (lemma) form. " +
	"Skip names, numbers and filler words. Return only JSON."

const concludedPrompt = "Be the audit bot for the advisory conversation. " +
	"Answer TRUE only if the assistant already delivered a final outcome: " +
	"(A) 'Ja, wahrscheinlich Anspruch' plus intake hint, (B) 'Möglicherweise Anspruch' " +
	"plus intake hint, (C) 'Nein, das Einkommen ist zu hoch', or an allowed redirect such as " +
	"referring the user to another authority because they live outside the municipality or " +
	"seek another service. Reply FALSE whenever the conversation is still collecting data or " +
	"no clear outcome exists. Respond with exactly TRUE or FALSE and nothing else."

const summaryPrompt = "Du erstellst eine extrem kurze Sachübersicht für eine Behörde. " +
	"Arbeite ausschließlich mit klaren Fakten aus dem Gespräch. " +
	"Keine Erklärungen. Keine Höflichkeitsformeln. " +
	"Keine Interpretation. " +
	"Kein Bezug auf Gesprächsverlauf. " +
	"Maximal eine sehr kurze Aussage oder wenige Stichpunkte."

func analysisPrompt(targetLanguage, level string) string {
	return fmt.Sprintf(`You are a %[1]s language teacher working with a learner at level %[2]s.
Analyse only the learner's part of the following conversation.

The conversation was originally spoken and then transcribed using a speech-to-text model, which does not include punctuation.
Therefore, you MUST NOT comment on punctuation, capitalization, or missing sentence boundaries.
These issues must be completely ignored everywhere in your feedback.

Focus ONLY on:
- Grammar (verb forms, agreement, possessives, gender, etc.)
- Word choice (incorrect, unnatural, or contextually wrong vocabulary)
- Word order (sentence structure issues)
- Spelling

Do NOT invent mistakes. If a sentence is correct in grammar, word order, spelling, or word choice, you MUST mark it as correct and suggest no changes.
If the learner's messages contain no mistakes at all, write "No relevant mistakes found." and continue directly to the final sections.
Do NOT correct natural, regional, or stylistic variations.

For each real mistake use exactly this format:

Mistake: "..."
Correction: "..."
Reason: ... (only grammar, word choice, word order, or spelling)

Then add a section "Short Overall Observations" with a short summary of the learner's performance, taking the learner's level (%[2]s) into account: say so explicitly when mistakes are typical for this level, highlight performance above the expected level, and mention mistakes below their level.

Then add a section "Focus for Improving" with 1-3 clear improvement points adapted to the learner's level (%[2]s), covering only grammar, word choice, word order, or spelling.

Do NOT add any additional sections.`, targetLanguage, level)
}
