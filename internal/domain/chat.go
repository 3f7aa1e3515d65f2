package domain

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message in a persona chat session. An ordered sequence of
// turns forms the chat history, which is owned by the caller, passed in with
// each request and returned extended.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// UserSettings is immutable per-request configuration interpolated into the
// persona prompts.
type UserSettings struct {
	Name     string `json:"name"`
	Sex      string `json:"sex"`
	Language string `json:"language"`
}
