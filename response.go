package chatgpt

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Response is an opaque wrapper around the raw JSON document returned by the
// API. Endpoint-specific response types embed it and add typed accessors for
// the parts callers usually want; anything else can be reached with Get or
// Decode.
type Response struct {
	raw []byte
}

// newResponse wraps body, which must be a valid JSON document.
func newResponse(body []byte) (Response, error) {
	if !gjson.ValidBytes(body) {
		return Response{}, &JSONParseError{Body: body}
	}
	return Response{raw: body}, nil
}

// Raw returns the response body as received.
func (r *Response) Raw() json.RawMessage {
	return json.RawMessage(r.raw)
}

// Get returns the value at the given [gjson path].
//
//	resp.Get("choices.0.message.content").String()
//	resp.Get("data.#.url").Array()
//
// [gjson path]: https://github.com/tidwall/gjson/blob/master/SYNTAX.md
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return &JSONParseError{Body: r.raw, Err: err}
	}
	return nil
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.raw)
}

// stringsAt collects the string values found at a gjson path.
func (r *Response) stringsAt(path string) []string {
	results := r.Get(path).Array()
	values := make([]string, 0, len(results))
	for _, result := range results {
		values = append(values, result.String())
	}
	return values
}

// Usage reports the number of tokens consumed by a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// usage reads the "usage" member common to the text endpoints.
func (r *Response) usage() Usage {
	u := r.Get("usage")
	return Usage{
		PromptTokens:     int(u.Get("prompt_tokens").Int()),
		CompletionTokens: int(u.Get("completion_tokens").Int()),
		TotalTokens:      int(u.Get("total_tokens").Int()),
	}
}
