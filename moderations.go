package chatgpt

import (
	"context"
	"strconv"

	"github.com/tidwall/gjson"
)

// ModerationRequest classifies whether text violates OpenAI's usage policies.
//
// https://platform.openai.com/docs/api-reference/moderations/create
type ModerationRequest struct {
	// Required.
	Input []string `json:"input"`

	// Defaults to "text-moderation-latest".
	Model *string `json:"model"`
}

// NewModerationRequest returns a request classifying the given texts.
func NewModerationRequest(input ...string) *ModerationRequest {
	return &ModerationRequest{Input: input}
}

// ToValue implements [Request].
func (req *ModerationRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// ModerationResponse is the response of [Client.CreateModeration].
type ModerationResponse struct {
	Response
}

// Flagged reports whether any of the inputs was flagged.
func (r *ModerationResponse) Flagged() bool {
	for _, flagged := range r.Get("results.#.flagged").Array() {
		if flagged.Bool() {
			return true
		}
	}
	return false
}

// Categories returns the names of the categories flagged for the input at
// index i, in the order the API listed them.
func (r *ModerationResponse) Categories(i int) []string {
	var names []string
	r.Get("results."+strconv.Itoa(i)+".categories").ForEach(func(key, value gjson.Result) bool {
		if value.Bool() {
			names = append(names, key.String())
		}
		return true
	})
	return names
}

// CreateModeration performs a "moderation" request using the API.
//
// https://platform.openai.com/docs/api-reference/moderations/create
func (c *Client) CreateModeration(ctx context.Context, req *ModerationRequest) (*ModerationResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/moderations", req)
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &ModerationResponse{resp}, nil
}
