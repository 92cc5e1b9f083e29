package chatgpt

import (
	"context"
	"slices"
)

// EmbeddingRequest creates embedding vectors representing the input text.
//
// https://platform.openai.com/docs/api-reference/embeddings/create
type EmbeddingRequest struct {
	// Required.
	Model string `json:"model"`

	// The texts to embed, one vector is returned per element.
	//
	// Required.
	Input []string `json:"input"`

	User *string `json:"user"`
}

// NewEmbeddingRequest returns a request embedding the given texts.
func NewEmbeddingRequest(model string, input ...string) *EmbeddingRequest {
	return &EmbeddingRequest{
		Model: model,
		Input: input,
	}
}

// ToValue implements [Request].
func (req *EmbeddingRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// EmbeddingResponse is the response of [Client.CreateEmbedding].
//
// https://platform.openai.com/docs/api-reference/embeddings/object
type EmbeddingResponse struct {
	Response
}

// Embeddings returns one vector per input, ordered by the index the API
// reports for each of them. An item whose index is unusable, or already
// taken, goes to its own position or else the first free slot.
func (r *EmbeddingResponse) Embeddings() [][]float64 {
	data := r.Get("data").Array()

	vectors := make([][]float64, len(data))
	used := make([]bool, len(data))
	for i, item := range data {
		index := i
		if idx := item.Get("index"); idx.Exists() && idx.Int() >= 0 && idx.Int() < int64(len(data)) && !used[idx.Int()] {
			index = int(idx.Int())
		}
		if used[index] {
			// Position i is taken by an earlier index; use the first free slot.
			index = slices.Index(used, false)
		}
		used[index] = true

		values := item.Get("embedding").Array()
		vector := make([]float64, len(values))
		for j, v := range values {
			vector[j] = v.Float()
		}
		vectors[index] = vector
	}

	return vectors
}

// Usage returns the token usage of the request.
func (r *EmbeddingResponse) Usage() Usage {
	return r.usage()
}

// CreateEmbedding performs an "embedding" request using the API.
//
// # Example
//
//	resp, _ := client.CreateEmbedding(ctx, chatgpt.NewEmbeddingRequest(
//		chatgpt.ModelTextEmbeddingAda002,
//		"The food was delicious and the waiter...",
//	))
//
// https://platform.openai.com/docs/api-reference/embeddings/create
func (c *Client) CreateEmbedding(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/embeddings", req)
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &EmbeddingResponse{resp}, nil
}
