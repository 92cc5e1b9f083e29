package chatgpt

import "context"

// EditRequest asks the model to edit the input following an instruction.
//
// https://platform.openai.com/docs/api-reference/edits/create
type EditRequest struct {
	// Required.
	Model string `json:"model"`

	// The instruction that tells the model how to edit the input.
	//
	// Required.
	Instruction string `json:"instruction"`

	// The input text to use as a starting point for the edit.
	Input *string `json:"input"`

	N           *int     `json:"n"`
	Temperature *float64 `json:"temperature"`
	TopP        *float64 `json:"top_p"`
}

// NewEditRequest returns an EditRequest for the given instruction and input.
func NewEditRequest(model, instruction, input string) *EditRequest {
	return &EditRequest{
		Model:       model,
		Instruction: instruction,
		Input:       &input,
	}
}

// ToValue implements [Request].
func (req *EditRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// EditResponse is the response of [Client.CreateEdit].
type EditResponse struct {
	Response
}

// Texts returns the edited text of every choice, in choice order.
func (r *EditResponse) Texts() []string {
	return r.stringsAt("choices.#.text")
}

// Usage returns the token usage of the request.
func (r *EditResponse) Usage() Usage {
	return r.usage()
}

// CreateEdit performs an "edit" request using the API.
//
// # Example
//
//	resp, _ := client.CreateEdit(ctx, chatgpt.NewEditRequest(
//		chatgpt.ModelTextDavinciEdit001,
//		"Fix the spelling mistakes",
//		"What day of the wek is it?",
//	))
//
// https://platform.openai.com/docs/api-reference/edits/create
func (c *Client) CreateEdit(ctx context.Context, req *EditRequest) (*EditResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/edits", req)
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &EditResponse{resp}, nil
}
