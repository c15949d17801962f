package entities

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation transcript. Messages are
// immutable once appended; translated copies live in the session's
// translation cache, never in the transcript itself.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Scenario pairs the narrated introduction text with the persona
// instructions the assistant plays during the role-play.
type Scenario struct {
	Context string `json:"context" yaml:"context"`
	Role    string `json:"role" yaml:"role"`
}
