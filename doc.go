// Package chatgpt is a small client for the OpenAI REST API, and for servers
// implementing the same API such as Ollama.
//
// Every endpoint is a single method on [Client] that takes a typed request
// and returns a typed wrapper around the JSON response. Requests keep their
// optional fields as pointers; unset fields are trimmed from the JSON sent to
// the server (see [TrimNulls]). Requests that upload files name the fields
// holding file paths, and are sent as multipart forms with those files
// streamed from disk (see [NewMultipartForm]).
//
// Responses are kept as raw JSON. Accessors cover the common cases, and
// [Response.Get] reaches anything else with a gjson path.
//
// Failures are reported as one of three error types: [*ConnectionError],
// [*StatusError] or [*JSONParseError]. Nothing is retried.
//
// https://platform.openai.com/docs/api-reference
package chatgpt
