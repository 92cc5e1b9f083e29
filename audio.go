package chatgpt

import "context"

// Audio response formats. The "text", "srt" and "vtt" formats are returned
// as plain text rather than JSON.
const (
	AudioResponseFormatJSON        = "json"
	AudioResponseFormatText        = "text"
	AudioResponseFormatSRT         = "srt"
	AudioResponseFormatVerboseJSON = "verbose_json"
	AudioResponseFormatVTT         = "vtt"
)

// TranscriptionRequest transcribes audio into the input language. File is
// the path of the audio file on disk, uploaded as a multipart file part.
//
// https://platform.openai.com/docs/api-reference/audio/createTranscription
type TranscriptionRequest struct {
	// Path of the audio file to transcribe.
	//
	// Required.
	File string `json:"file"`

	// Required.
	Model string `json:"model"`

	// Optional text to guide the model's style or continue a previous segment.
	Prompt *string `json:"prompt"`

	// One of json (default), text, srt, verbose_json, or vtt.
	ResponseFormat *string `json:"response_format"`

	Temperature *float64 `json:"temperature"`

	// The ISO-639-1 language of the input audio.
	Language *string `json:"language"`
}

// NewTranscriptionRequest returns a request transcribing the audio file at
// path file.
func NewTranscriptionRequest(model, file string) *TranscriptionRequest {
	return &TranscriptionRequest{
		Model: model,
		File:  file,
	}
}

// ToValue implements [Request].
func (req *TranscriptionRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// FileFields implements [FormRequest].
func (req *TranscriptionRequest) FileFields() []string {
	return []string{"file"}
}

// TranslationRequest translates audio into English. File is the path of the
// audio file on disk, uploaded as a multipart file part.
//
// https://platform.openai.com/docs/api-reference/audio/createTranslation
type TranslationRequest struct {
	// Path of the audio file to translate.
	//
	// Required.
	File string `json:"file"`

	// Required.
	Model string `json:"model"`

	Prompt         *string  `json:"prompt"`
	ResponseFormat *string  `json:"response_format"`
	Temperature    *float64 `json:"temperature"`
}

// NewTranslationRequest returns a request translating the audio file at path
// file.
func NewTranslationRequest(model, file string) *TranslationRequest {
	return &TranslationRequest{
		Model: model,
		File:  file,
	}
}

// ToValue implements [Request].
func (req *TranslationRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// FileFields implements [FormRequest].
func (req *TranslationRequest) FileFields() []string {
	return []string{"file"}
}

// AudioResponse is the response of the audio endpoints.
//
// For the JSON response formats it wraps the JSON document; for the plain
// text formats the body is kept verbatim and Get finds nothing.
type AudioResponse struct {
	Response

	plain bool
}

// Text returns the transcribed or translated text. For plain text response
// formats this is the whole body, subtitles included.
func (r *AudioResponse) Text() string {
	if r.plain {
		return r.String()
	}
	return r.Get("text").String()
}

// Plain reports whether the response is plain text (text, srt or vtt)
// rather than JSON.
func (r *AudioResponse) Plain() bool {
	return r.plain
}

// CreateTranscription transcribes audio into the input language.
//
// https://platform.openai.com/docs/api-reference/audio/createTranscription
func (c *Client) CreateTranscription(ctx context.Context, req *TranscriptionRequest) (*AudioResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.postForm(ctx, "/v1/audio/transcriptions", req)
	if err != nil {
		return nil, err
	}

	return newAudioResponse(body, req.ResponseFormat)
}

// CreateTranslation translates audio into English.
//
// https://platform.openai.com/docs/api-reference/audio/createTranslation
func (c *Client) CreateTranslation(ctx context.Context, req *TranslationRequest) (*AudioResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.postForm(ctx, "/v1/audio/translations", req)
	if err != nil {
		return nil, err
	}

	return newAudioResponse(body, req.ResponseFormat)
}

func newAudioResponse(body []byte, responseFormat *string) (*AudioResponse, error) {
	if responseFormat != nil {
		switch *responseFormat {
		case AudioResponseFormatText, AudioResponseFormatSRT, AudioResponseFormatVTT:
			return &AudioResponse{Response: Response{raw: body}, plain: true}, nil
		}
	}

	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}

	return &AudioResponse{Response: resp}, nil
}
