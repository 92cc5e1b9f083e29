package chatgpt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is implemented by every request wrapper in this package.
//
// ToValue returns the JSON object that will be sent to the API, with every
// null-valued field removed so unset optional fields are omitted entirely.
type Request interface {
	ToValue() (map[string]any, error)
}

// FormRequest is a Request that is sent as multipart/form-data.
//
// FileFields names the fields of the request's JSON value that hold
// filesystem paths; the contents of those files are uploaded as file parts.
type FormRequest interface {
	Request
	FileFields() []string
}

// Ptr returns a pointer to v, which is handy for setting optional
// request fields inline.
//
//	req.Temperature = chatgpt.Ptr(0.2)
func Ptr[T any](v T) *T {
	return &v
}

// TrimNulls returns v with every null-valued object member removed,
// recursively. Arrays are walked, but null elements are kept, since their
// position in the array is meaningful. Any other value is returned as is.
//
// TrimNulls works on the generic representation produced by decoding JSON
// into an any: map[string]any, []any and scalars.
func TrimNulls(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for key, member := range v {
			if member == nil {
				delete(v, key)
				continue
			}
			v[key] = TrimNulls(member)
		}
		return v
	case []any:
		for i, elem := range v {
			v[i] = TrimNulls(elem)
		}
		return v
	default:
		return v
	}
}

// ToValue converts any JSON-serializable value into its generic JSON object
// form, with null members trimmed. Numbers are kept as [encoding/json.Number]
// so integer and float formatting survive the round trip unchanged.
func ToValue(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var value map[string]any
	if err := dec.Decode(&value); err != nil {
		return nil, &JSONParseError{Body: b, Err: err}
	}

	if value == nil {
		return nil, &JSONParseError{Body: b, Err: fmt.Errorf("%T is not a JSON object", v)}
	}

	TrimNulls(value)

	return value, nil
}

// FromValue builds a request (or any other JSON-serializable type) from its
// generic JSON object form, the inverse of [ToValue].
//
// Unknown keys are ignored. A value whose members do not fit the fields of T
// results in a [*JSONParseError].
//
// # Example
//
//	req, err := chatgpt.FromValue[chatgpt.CompletionRequest](map[string]any{
//		"model":       "gpt-3.5-turbo-instruct",
//		"prompt":      []any{"Say this is a test"},
//		"max_tokens":  7,
//		"temperature": 0,
//	})
func FromValue[T any](value map[string]any) (*T, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, &JSONParseError{Body: b, Err: err}
	}

	return &v, nil
}
