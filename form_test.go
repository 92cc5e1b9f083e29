package chatgpt_test

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picatz/chatgpt"
	"github.com/shoenig/test/must"
)

// writeFile creates a file named name holding contents in a temporary
// directory and returns its path.
func writeFile(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	must.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

// formPart is a single decoded part of a multipart body.
type formPart struct {
	Name     string
	Filename string
	Data     string
}

// readParts reads every part of a multipart/form-data request, in order.
func readParts(t *testing.T, r *http.Request) []formPart {
	t.Helper()

	mr, err := r.MultipartReader()
	must.NoError(t, err)

	var parts []formPart
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		must.NoError(t, err)

		data, err := io.ReadAll(part)
		must.NoError(t, err)

		parts = append(parts, formPart{
			Name:     part.FormName(),
			Filename: part.FileName(),
			Data:     string(data),
		})
	}

	return parts
}

func TestClient_CreateImageEdit(t *testing.T) {
	image := writeFile(t, "otter.png", "png bytes")

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, http.MethodPost, r.Method)
		must.Eq(t, "/v1/images/edits", r.URL.Path)
		must.StrHasPrefix(t, "multipart/form-data; boundary=", r.Header.Get("Content-Type"))
		must.Eq(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Parts arrive sorted by name, and the unset mask is skipped.
		must.Eq(t, []formPart{
			{Name: "image", Filename: "otter.png", Data: "png bytes"},
			{Name: "n", Data: "2"},
			{Name: "prompt", Data: "A cute baby sea otter wearing a beret"},
		}, readParts(t, r))

		writeJSON(w, `{"created":1,"data":[{"url":"https://example.com/otter.png"}]}`)
	})

	req := chatgpt.NewImageEditRequest(image, "A cute baby sea otter wearing a beret")
	req.N = chatgpt.Ptr(2)

	resp, err := c.CreateImageEdit(t.Context(), req)
	must.NoError(t, err)
	must.Eq(t, []string{"https://example.com/otter.png"}, resp.URLs())
}

func TestClient_CreateImageEdit_mask(t *testing.T) {
	image := writeFile(t, "image.png", "image")
	mask := writeFile(t, "mask.png", "mask")

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		must.NoError(t, r.ParseMultipartForm(1<<20))

		must.MapLen(t, 2, r.MultipartForm.File)
		must.Eq(t, "mask.png", r.MultipartForm.File["mask"][0].Filename)
		must.Eq(t, []string{"edit"}, r.MultipartForm.Value["prompt"])

		writeJSON(w, `{"data":[]}`)
	})

	req := chatgpt.NewImageEditRequest(image, "edit")
	req.Mask = chatgpt.Ptr(mask)

	_, err := c.CreateImageEdit(t.Context(), req)
	must.NoError(t, err)
}

func TestClient_CreateImageVariation(t *testing.T) {
	image := writeFile(t, "corgi.png", "corgi")

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/images/variations", r.URL.Path)
		must.Eq(t, []formPart{
			{Name: "image", Filename: "corgi.png", Data: "corgi"},
			{Name: "n", Data: "1"},
			{Name: "size", Data: "256x256"},
		}, readParts(t, r))

		writeJSON(w, `{"data":[{"url":"https://example.com/corgi.png"}]}`)
	})

	req := chatgpt.NewImageVariationRequest(image, 1)
	req.Size = chatgpt.Ptr("256x256")

	resp, err := c.CreateImageVariation(t.Context(), req)
	must.NoError(t, err)
	must.Eq(t, []string{"https://example.com/corgi.png"}, resp.URLs())
}

func TestClient_CreateImageVariation_missingFile(t *testing.T) {
	var called bool

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	missing := filepath.Join(t.TempDir(), "missing.png")

	_, err := c.CreateImageVariation(t.Context(), chatgpt.NewImageVariationRequest(missing, 1))
	must.Error(t, err)
	must.ErrorIs(t, err, os.ErrNotExist)
	must.StrContains(t, err.Error(), `"image"`)

	must.False(t, called)
}

func TestClient_CreateImageVariation_directory(t *testing.T) {
	var called bool

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.CreateImageVariation(t.Context(), chatgpt.NewImageVariationRequest(t.TempDir(), 1))
	must.Error(t, err)
	must.StrContains(t, err.Error(), "not a regular file")

	var connErr *chatgpt.ConnectionError
	must.False(t, errors.As(err, &connErr))
	must.False(t, called)
}

func TestNewMultipartForm_repeatedFileField(t *testing.T) {
	path := writeFile(t, "a.txt", "contents")

	form, err := chatgpt.NewMultipartForm(map[string]any{"file": path}, "file", "file")
	must.NoError(t, err)
	defer form.Close()

	boundary := strings.TrimPrefix(form.ContentType(), "multipart/form-data; boundary=")
	mr := multipart.NewReader(form, boundary)

	var got []formPart
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		must.NoError(t, err)

		data, err := io.ReadAll(part)
		must.NoError(t, err)

		got = append(got, formPart{Name: part.FormName(), Filename: part.FileName(), Data: string(data)})
	}

	must.Eq(t, []formPart{{Name: "file", Filename: "a.txt", Data: "contents"}}, got)
}

func TestClient_CreateTranscription(t *testing.T) {
	audio := writeFile(t, "speech.mp3", "mp3 bytes")

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/audio/transcriptions", r.URL.Path)
		must.Eq(t, []formPart{
			{Name: "file", Filename: "speech.mp3", Data: "mp3 bytes"},
			{Name: "language", Data: "en"},
			{Name: "model", Data: "whisper-1"},
			{Name: "temperature", Data: "0.5"},
		}, readParts(t, r))

		writeJSON(w, `{"text":"Imagine the wildest idea that you've ever had."}`)
	})

	req := chatgpt.NewTranscriptionRequest(chatgpt.ModelWhisper1, audio)
	req.Language = chatgpt.Ptr("en")
	req.Temperature = chatgpt.Ptr(0.5)

	resp, err := c.CreateTranscription(t.Context(), req)
	must.NoError(t, err)
	must.Eq(t, "Imagine the wildest idea that you've ever had.", resp.Text())
}

func TestClient_CreateTranslation_plainText(t *testing.T) {
	audio := writeFile(t, "german.m4a", "m4a bytes")

	const srt = "1\n00:00:00,000 --> 00:00:02,000\nHello, my name is Wolfgang.\n"

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/v1/audio/translations", r.URL.Path)
		must.NoError(t, r.ParseMultipartForm(1<<20))
		must.Eq(t, []string{"srt"}, r.MultipartForm.Value["response_format"])

		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, srt)
	})

	req := chatgpt.NewTranslationRequest(chatgpt.ModelWhisper1, audio)
	req.ResponseFormat = chatgpt.Ptr(chatgpt.AudioResponseFormatSRT)

	resp, err := c.CreateTranslation(t.Context(), req)
	must.NoError(t, err)
	must.Eq(t, srt, resp.Text())
	must.True(t, resp.Plain())
}

func TestNewMultipartForm_fieldEncoding(t *testing.T) {
	form, err := chatgpt.NewMultipartForm(map[string]any{
		"stream":   false,
		"stop":     []any{"a", "b"},
		"metadata": map[string]any{"k": "v"},
		"mixed":    []any{"a", map[string]any{"k": "v"}},
	})
	must.NoError(t, err)
	defer form.Close()

	contentType := form.ContentType()
	boundary := strings.TrimPrefix(contentType, "multipart/form-data; boundary=")
	must.NotEq(t, contentType, boundary)

	mr := multipart.NewReader(form, boundary)

	var got []formPart
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		must.NoError(t, err)

		data, err := io.ReadAll(part)
		must.NoError(t, err)

		got = append(got, formPart{Name: part.FormName(), Data: string(data)})
	}

	must.Eq(t, []formPart{
		{Name: "metadata", Data: `{"k":"v"}`},
		{Name: "mixed", Data: `["a",{"k":"v"}]`},
		{Name: "stop", Data: "a"},
		{Name: "stop", Data: "b"},
		{Name: "stream", Data: "false"},
	}, got)
}

func TestMultipartForm_closeTwice(t *testing.T) {
	path := writeFile(t, "a.txt", "a")

	form, err := chatgpt.NewMultipartForm(map[string]any{"file": path}, "file")
	must.NoError(t, err)

	must.NoError(t, form.Close())
	must.NoError(t, form.Close())
}
