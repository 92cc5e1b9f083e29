package chatgpt

import (
	"context"
	"net/url"
)

// Model is a model identifier understood by the API.
//
// Any string is accepted; the constants below are the identifiers this
// package's examples and CLI default to.
type Model = string

// https://platform.openai.com/docs/models
const (
	// ModelGPT35Turbo is the default model for chat completions.
	ModelGPT35Turbo Model = "gpt-3.5-turbo"

	// ModelGPT4o is a faster, multimodal GPT-4 class chat model.
	ModelGPT4o Model = "gpt-4o"

	// ModelGPT4oMini is a small, inexpensive GPT-4o variant.
	ModelGPT4oMini Model = "gpt-4o-mini"

	// ModelGPT35TurboInstruct is the replacement for the legacy completions models.
	ModelGPT35TurboInstruct Model = "gpt-3.5-turbo-instruct"

	// ModelTextDavinciEdit001 is used with the edits endpoint.
	//
	// Deprecated: the edits endpoint was shut down by OpenAI, but some
	// compatible servers still serve it.
	ModelTextDavinciEdit001 Model = "text-davinci-edit-001"

	// ModelTextEmbeddingAda002 is the second generation embedding model.
	ModelTextEmbeddingAda002 Model = "text-embedding-ada-002"

	// ModelTextEmbedding3Small is a small third generation embedding model.
	ModelTextEmbedding3Small Model = "text-embedding-3-small"

	// ModelWhisper1 is used for audio transcriptions and translations.
	ModelWhisper1 Model = "whisper-1"

	// ModelDallE2 supports image generations, edits and variations.
	ModelDallE2 Model = "dall-e-2"

	// ModelDallE3 supports image generations only.
	ModelDallE3 Model = "dall-e-3"
)

// ModelListResponse is the response of [Client.ListModels].
//
// https://platform.openai.com/docs/api-reference/models/list
type ModelListResponse struct {
	Response
}

// IDs returns the identifiers of every listed model, in response order.
func (r *ModelListResponse) IDs() []string {
	return r.stringsAt("data.#.id")
}

// ModelResponse is the response of [Client.RetrieveModel].
//
// https://platform.openai.com/docs/api-reference/models/retrieve
type ModelResponse struct {
	Response
}

// ID returns the model identifier.
func (r *ModelResponse) ID() string {
	return r.Get("id").String()
}

// OwnedBy returns the organization that owns the model.
func (r *ModelResponse) OwnedBy() string {
	return r.Get("owned_by").String()
}

// ListModels lists the models that can be used with the API.
//
// # Example
//
//	resp, _ := client.ListModels(ctx)
//
//	for _, id := range resp.IDs() {
//		fmt.Println(id)
//	}
//
// https://platform.openai.com/docs/api-reference/models/list
func (c *Client) ListModels(ctx context.Context) (*ModelListResponse, error) {
	body, err := c.get(ctx, "/v1/models")
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &ModelListResponse{resp}, nil
}

// RetrieveModel retrieves a single model by its identifier.
//
// https://platform.openai.com/docs/api-reference/models/retrieve
func (c *Client) RetrieveModel(ctx context.Context, model string) (*ModelResponse, error) {
	body, err := c.get(ctx, "/v1/models/"+url.PathEscape(model))
	if err != nil {
		return nil, err
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &ModelResponse{resp}, nil
}
