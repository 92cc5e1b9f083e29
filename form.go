package chatgpt

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// MultipartForm is a multipart/form-data request body built from a JSON
// object. It is an [io.ReadCloser]: parts are produced lazily as the body is
// read, so file contents are streamed from disk rather than buffered.
type MultipartForm struct {
	pr *io.PipeReader
	w  *multipart.Writer

	files     map[string]*os.File
	closeOnce sync.Once
	closeErr  error
}

// NewMultipartForm converts value into a multipart form.
//
// Members named in fileFields are treated as filesystem paths: the file is
// opened immediately, so a missing file is reported here rather than in the
// middle of a request, and its contents become a file part named after the
// member. Paths that are not regular files, such as directories, are rejected
// the same way. A file field that is absent from value, or not a string, is
// skipped.
//
// Every other member becomes a text part. Strings and numbers are written
// verbatim, booleans as "true" or "false", arrays of scalars as one part per
// element, and anything else as JSON. Parts are written in key order.
func NewMultipartForm(value map[string]any, fileFields ...string) (*MultipartForm, error) {
	files := make(map[string]*os.File, len(fileFields))

	fail := func(err error) error {
		var result *multierror.Error
		result = multierror.Append(result, err)
		for _, opened := range files {
			result = multierror.Append(result, opened.Close())
		}
		return result.ErrorOrNil()
	}

	for _, field := range fileFields {
		if _, seen := files[field]; seen {
			continue
		}

		path, ok := value[field].(string)
		if !ok {
			continue
		}

		fh, err := os.Open(path)
		if err != nil {
			return nil, fail(fmt.Errorf("failed to open file for field %q: %w", field, err))
		}

		info, err := fh.Stat()
		if err == nil && !info.Mode().IsRegular() {
			err = fmt.Errorf("%s is not a regular file", path)
		}
		if err != nil {
			fh.Close()
			return nil, fail(fmt.Errorf("failed to open file for field %q: %w", field, err))
		}

		files[field] = fh
	}

	pr, pw := io.Pipe()

	form := &MultipartForm{
		pr:    pr,
		w:     multipart.NewWriter(pw),
		files: files,
	}

	go func() {
		pw.CloseWithError(form.write(value))
	}()

	return form, nil
}

// ContentType returns the Content-Type header value, including the boundary.
func (f *MultipartForm) ContentType() string {
	return f.w.FormDataContentType()
}

// Read implements [io.Reader].
func (f *MultipartForm) Read(p []byte) (int, error) {
	return f.pr.Read(p)
}

// Close stops the form from being written and closes every opened file.
// It is safe to call more than once.
func (f *MultipartForm) Close() error {
	f.pr.Close()
	return f.closeFiles()
}

func (f *MultipartForm) closeFiles() error {
	f.closeOnce.Do(func() {
		var result *multierror.Error
		for field, fh := range f.files {
			if err := fh.Close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("failed to close file for field %q: %w", field, err))
			}
		}
		f.closeErr = result.ErrorOrNil()
	})
	return f.closeErr
}

// write streams every part of the form into the pipe.
func (f *MultipartForm) write(value map[string]any) error {
	defer f.closeFiles()

	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if fh, ok := f.files[key]; ok {
			part, err := f.w.CreateFormFile(key, filepath.Base(fh.Name()))
			if err != nil {
				return fmt.Errorf("failed to create file part %q: %w", key, err)
			}
			if _, err := io.Copy(part, fh); err != nil {
				return fmt.Errorf("failed to write file part %q: %w", key, err)
			}
			continue
		}

		if err := f.writeField(key, value[key]); err != nil {
			return err
		}
	}

	return f.w.Close()
}

func (f *MultipartForm) writeField(key string, v any) error {
	if elems, ok := v.([]any); ok && allScalars(elems) {
		for _, elem := range elems {
			if err := f.writeField(key, elem); err != nil {
				return err
			}
		}
		return nil
	}

	text, err := formText(v)
	if err != nil {
		return fmt.Errorf("failed to encode field %q: %w", key, err)
	}

	if err := f.w.WriteField(key, text); err != nil {
		return fmt.Errorf("failed to write field %q: %w", key, err)
	}

	return nil
}

// formText renders a single JSON value as the text of a form part.
func formText(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func allScalars(elems []any) bool {
	for _, elem := range elems {
		switch elem.(type) {
		case map[string]any, []any, nil:
			return false
		}
	}
	return true
}
