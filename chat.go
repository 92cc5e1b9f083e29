package chatgpt

import "context"

// ChatCompletionRequest is sent to the API, which will return a chat response.
//
// The API is stateless: Messages must contain the whole context window of the
// conversation the caller wants the model to see, typically the previous
// messages followed by the new user message.
//
// https://platform.openai.com/docs/api-reference/chat/create
type ChatCompletionRequest struct {
	// Required.
	Model string `json:"model"`

	// Required.
	Messages []ChatMessage `json:"messages"`

	Temperature *float64 `json:"temperature"`
	TopP        *float64 `json:"top_p"`

	// The number of choices to generate, 1 if unset.
	N *int `json:"n"`

	// Up to 4 sequences where the API will stop generating further tokens.
	Stop []string `json:"stop"`

	// The maximum number of tokens to generate in the chat completion.
	MaxTokens *int `json:"max_tokens"`

	PresencePenalty  *float64           `json:"presence_penalty"`
	FrequencyPenalty *float64           `json:"frequency_penalty"`
	LogitBias        map[string]float64 `json:"logit_bias"`

	// A unique identifier representing your end-user.
	User *string `json:"user"`
}

// NewChatCompletionRequest returns a ChatCompletionRequest for the given
// conversation.
//
//	req := chatgpt.NewChatCompletionRequest(chatgpt.ModelGPT35Turbo, []chatgpt.ChatMessage{
//		chatgpt.NewSystemMessage("You are a Go expert."),
//		chatgpt.NewUserMessage("Write a README for my library."),
//	})
func NewChatCompletionRequest(model string, messages []ChatMessage) *ChatCompletionRequest {
	return &ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
}

// ToValue implements [Request].
func (req *ChatCompletionRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// ChatCompletionResponse is the response of [Client.CreateChatCompletion].
//
// https://platform.openai.com/docs/api-reference/chat/object
type ChatCompletionResponse struct {
	Response
}

// Contents returns the message content of every choice, in choice order.
func (r *ChatCompletionResponse) Contents() []string {
	return r.stringsAt("choices.#.message.content")
}

// Content returns the message content of the first choice.
func (r *ChatCompletionResponse) Content() string {
	return r.Get("choices.0.message.content").String()
}

// Message returns the message of the first choice, ready to be appended to
// the conversation for the next request.
func (r *ChatCompletionResponse) Message() ChatMessage {
	msg := r.Get("choices.0.message")

	role := ChatRole(msg.Get("role").String())
	if role == "" {
		role = ChatRoleAssistant
	}

	return ChatMessage{
		Role:    role,
		Content: msg.Get("content").String(),
	}
}

// FinishReason returns why the model stopped generating the first choice.
func (r *ChatCompletionResponse) FinishReason() string {
	return r.Get("choices.0.finish_reason").String()
}

// Usage returns the token usage of the request.
func (r *ChatCompletionResponse) Usage() Usage {
	return r.usage()
}

// CreateChatCompletion sends a chat request to the API to obtain a chat
// response, creating a completion for the included chat messages.
//
// https://platform.openai.com/docs/api-reference/chat/create
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/chat/completions", req)
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &ChatCompletionResponse{resp}, nil
}
