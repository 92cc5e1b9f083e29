package chatgpt

// ChatRole is the author of a chat message: "system", "user", or "assistant".
//
// https://platform.openai.com/docs/guides/text-generation/chat-completions-api
type ChatRole string

const (
	// ChatRoleSystem sets the behaviour of the assistant for the conversation.
	ChatRoleSystem ChatRole = "system"

	// ChatRoleUser is a message written by the end-user.
	ChatRoleUser ChatRole = "user"

	// ChatRoleAssistant is a message previously written by the model.
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single message of a chat conversation.
type ChatMessage struct {
	// Required.
	Role ChatRole `json:"role"`

	// Required.
	Content string `json:"content"`

	// An optional name for the participant.
	Name *string `json:"name"`
}

// NewSystemMessage returns a message with the system role.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleSystem, Content: content}
}

// NewUserMessage returns a message with the user role.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleUser, Content: content}
}

// NewAssistantMessage returns a message with the assistant role, used to
// replay earlier model output when continuing a conversation.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleAssistant, Content: content}
}
