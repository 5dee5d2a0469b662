package app

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem      Role = "system"
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	RoleObservation Role = "observation"
)

// Message is one entry in the conversation. The ordered message sequence is
// replayed to the model verbatim on every call; messages are append-only and
// never mutated or removed once added.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
