package chatgpt

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Image response formats.
const (
	ImageResponseFormatURL     = "url"
	ImageResponseFormatB64JSON = "b64_json"
)

// ImageGenerationRequest creates images from a text prompt.
//
// https://platform.openai.com/docs/api-reference/images/create
type ImageGenerationRequest struct {
	// Required.
	Prompt string `json:"prompt"`

	Model *string `json:"model"`

	// Number of images to generate, between 1 and 10.
	N *int `json:"n"`

	// One of 256x256, 512x512, or 1024x1024 (more for dall-e-3).
	Size *string `json:"size"`

	// Either "url" (default) or "b64_json".
	ResponseFormat *string `json:"response_format"`

	User *string `json:"user"`
}

// NewImageGenerationRequest returns a request generating n images for prompt.
func NewImageGenerationRequest(prompt string, n int) *ImageGenerationRequest {
	return &ImageGenerationRequest{
		Prompt: prompt,
		N:      &n,
	}
}

// ToValue implements [Request].
func (req *ImageGenerationRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// ImageEditRequest creates edited or extended images given an original image
// and a prompt. Image and Mask are paths to PNG files on disk, uploaded as
// multipart file parts.
//
// https://platform.openai.com/docs/api-reference/images/createEdit
type ImageEditRequest struct {
	// Path of the image to edit.
	//
	// Required.
	Image string `json:"image"`

	// Path of an additional image whose fully transparent areas indicate
	// where Image should be edited.
	Mask *string `json:"mask"`

	// Required.
	Prompt string `json:"prompt"`

	Model          *string `json:"model"`
	N              *int    `json:"n"`
	Size           *string `json:"size"`
	ResponseFormat *string `json:"response_format"`
	User           *string `json:"user"`
}

// NewImageEditRequest returns a request editing the image at path image.
func NewImageEditRequest(image, prompt string) *ImageEditRequest {
	return &ImageEditRequest{
		Image:  image,
		Prompt: prompt,
	}
}

// ToValue implements [Request].
func (req *ImageEditRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// FileFields implements [FormRequest].
func (req *ImageEditRequest) FileFields() []string {
	return []string{"image", "mask"}
}

// ImageVariationRequest creates variations of a given image, read from the
// path in Image.
//
// https://platform.openai.com/docs/api-reference/images/createVariation
type ImageVariationRequest struct {
	// Path of the image to use as the basis for the variations.
	//
	// Required.
	Image string `json:"image"`

	Model          *string `json:"model"`
	N              *int    `json:"n"`
	Size           *string `json:"size"`
	ResponseFormat *string `json:"response_format"`
	User           *string `json:"user"`
}

// NewImageVariationRequest returns a request for n variations of the image at
// path image.
func NewImageVariationRequest(image string, n int) *ImageVariationRequest {
	return &ImageVariationRequest{
		Image: image,
		N:     &n,
	}
}

// ToValue implements [Request].
func (req *ImageVariationRequest) ToValue() (map[string]any, error) {
	return ToValue(req)
}

// FileFields implements [FormRequest].
func (req *ImageVariationRequest) FileFields() []string {
	return []string{"image"}
}

// ImageResponse is the response of the image endpoints.
//
// https://platform.openai.com/docs/api-reference/images/object
type ImageResponse struct {
	Response
}

// URLs returns the URL of every generated image. It is empty when the
// request asked for the "b64_json" response format.
func (r *ImageResponse) URLs() []string {
	return r.stringsAt("data.#.url")
}

// B64JSONs returns the base64 payload of every generated image. It is empty
// unless the request asked for the "b64_json" response format.
func (r *ImageResponse) B64JSONs() []string {
	return r.stringsAt("data.#.b64_json")
}

// RevisedPrompts returns the prompts the model actually used, if it rewrote
// them (dall-e-3 only).
func (r *ImageResponse) RevisedPrompts() []string {
	return r.stringsAt("data.#.revised_prompt")
}

// Images decodes every base64 payload into raw image bytes.
func (r *ImageResponse) Images() ([][]byte, error) {
	payloads := r.B64JSONs()

	images := make([][]byte, 0, len(payloads))
	for i, payload := range payloads {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", i, err)
		}
		images = append(images, b)
	}

	return images, nil
}

// CreateImage performs an "image" request using the API.
//
// # Example
//
//	req := chatgpt.NewImageGenerationRequest("Japan Home. Wood Picture.", 1)
//	req.ResponseFormat = chatgpt.Ptr(chatgpt.ImageResponseFormatB64JSON)
//
//	resp, _ := client.CreateImage(ctx, req)
//	images, _ := resp.Images()
//
// https://platform.openai.com/docs/api-reference/images/create
func (c *Client) CreateImage(ctx context.Context, req *ImageGenerationRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.post(ctx, "/v1/images/generations", req)
	if err != nil {
		return nil, err
	}

	return newImageResponse(body)
}

// CreateImageEdit uploads an image (and optional mask) to be edited following
// the prompt.
//
// https://platform.openai.com/docs/api-reference/images/createEdit
func (c *Client) CreateImageEdit(ctx context.Context, req *ImageEditRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.postForm(ctx, "/v1/images/edits", req)
	if err != nil {
		return nil, err
	}

	return newImageResponse(body)
}

// CreateImageVariation uploads an image to create variations of.
//
// https://platform.openai.com/docs/api-reference/images/createVariation
func (c *Client) CreateImageVariation(ctx context.Context, req *ImageVariationRequest) (*ImageResponse, error) {
	if req == nil {
		return nil, errNilRequest
	}

	body, err := c.postForm(ctx, "/v1/images/variations", req)
	if err != nil {
		return nil, err
	}

	return newImageResponse(body)
}

func newImageResponse(body []byte) (*ImageResponse, error) {
	resp, err := newResponse(body)
	if err != nil {
		return nil, err
	}
	return &ImageResponse{resp}, nil
}
