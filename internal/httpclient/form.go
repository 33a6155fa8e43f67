package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

// Form is a multipart/form-data body. Send it with Request.Multipart set.
type Form struct {
	fields [][2]string
	files  []formFile
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field appends a text field. Empty values are sent as empty fields.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// File appends a file part read from content.
func (f *Form) File(field, filename string, content io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

// Len returns the number of parts in the form.
func (f *Form) Len() int {
	return len(f.fields) + len(f.files)
}

// encode writes the form and returns the body together with the content type
// carrying the generated boundary.
func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", kv[0], err)
		}
	}

	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("failed to copy form file %q: %w", file.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
