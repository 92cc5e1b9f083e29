package chatgpt

import "context"

// CompletionRequest contains information for a "completion" request to the
// API, which generates text following one or more prompts.
//
// Optional fields are pointers (or nil slices and maps) and are left out of
// the request when unset.
//
// https://platform.openai.com/docs/api-reference/completions/create
type CompletionRequest struct {
	// Required.
	Model string `json:"model"`

	// The prompt(s) to generate completions for.
	//
	// Required.
	Prompt []string `json:"prompt"`

	// The suffix that comes after a completion of inserted text.
	Suffix *string `json:"suffix"`

	// The maximum number of tokens to generate in the completion.
	MaxTokens *int `json:"max_tokens"`

	// Sampling temperature, between 0 and 2.
	Temperature *float64 `json:"temperature"`

	// Nucleus sampling probability mass.
	TopP *float64 `json:"top_p"`

	// How many completions to generate for each prompt.
	N *int `json:"n"`

	// Include the log probabilities on the most likely tokens.
	Logprobs *int `json:"logprobs"`

	// Echo back the prompt in addition to the completion.
	Echo *bool `json:"echo"`

	// Up to 4 sequences where the API will stop generating further tokens.
	Stop []string `json:"stop"`

	PresencePenalty  *float64 `json:"presence_penalty"`
	FrequencyPenalty *float64 `json:"frequency_penalty"`

	// Generates best_of completions server-side and returns the best one.
	BestOf *int `json:"best_of"`

	LogitBias map[string]float64 `json:"logit_bias"`

	// A unique identifier representing your end-user.
	User *string `json:"user"`
}

// NewCompletionRequest returns a CompletionRequest for a single prompt.
func NewCompletionRequest(model string, maxTokens int, prompt string) *CompletionRequest {
	return &CompletionRequest{
		Model:     model,
		Prompt:    []string{prompt},
		MaxTokens: &maxTokens,
	}
}

// ToValue implements [Request].
func (req *CompletionRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// CompletionResponse is the response of [Client.CreateCompletion].
//
// https://platform.openai.com/docs/api-reference/completions/object
type CompletionResponse struct {
	Response
}

// Texts returns the generated text of every choice, in choice order.
func (r *CompletionResponse) Texts() []string {
	return r.stringsAt("choices.#.text")
}

// Text returns the generated text of the first choice.
func (r *CompletionResponse) Text() string {
	return r.Get("choices.0.text").String()
}

// Usage returns the token usage of the request.
func (r *CompletionResponse) Usage() Usage {
	return r.usage()
}

// CreateCompletion performs a "completion" request using the API.
//
// # Example
//
//	resp, _ := client.CreateCompletion(ctx,
//		chatgpt.NewCompletionRequest(chatgpt.ModelGPT35TurboInstruct, 16, "Once upon a time"),
//	)
//
//	fmt.Println(resp.Text())
//
// https://platform.openai.com/docs/api-reference/completions/create
func (c *Client) CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/completions", req)
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &CompletionResponse{resp}, nil
}
