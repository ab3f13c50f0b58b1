package types

// Role is the author of a chat message
type Role string

// Chat roles used by the prompt builder
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ChatMessage is a single message sent to the chat-completion API
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RawModelOutput is the unprocessed text returned by the model
type RawModelOutput = string
