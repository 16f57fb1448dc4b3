package post

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/posts"
)

// maxFormBytes leaves room for text fields on top of the largest accepted image
const maxFormBytes = blobs.MaxSize + 1<<20

var errRequestTooLarge = errors.New("request body too large")

// postForm is the parsed multipart body of create and edit
type postForm struct {
	Caption  *string
	Location *string
	Tags     []string
	File     *blobs.File
	HasTags  bool
}

// parsePostForm reads caption, location, tags (comma separated) and an optional file.
// Caption and Location are nil when the field is absent so edits keep the current value.
func parsePostForm(w http.ResponseWriter, r *http.Request) (*postForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errRequestTooLarge
		}
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	form := &postForm{}
	if values, ok := r.MultipartForm.Value["caption"]; ok && len(values) > 0 {
		caption := values[0]
		form.Caption = &caption
	}
	if values, ok := r.MultipartForm.Value["location"]; ok && len(values) > 0 {
		location := values[0]
		form.Location = &location
	}
	if values, ok := r.MultipartForm.Value["tags"]; ok && len(values) > 0 {
		form.HasTags = true
		form.Tags = posts.ParseTags(values[0])
	}

	file, err := readFile(r, "file")
	if err != nil {
		return nil, err
	}
	form.File = file
	return form, nil
}

func (f *postForm) caption() string {
	if f.Caption == nil {
		return ""
	}
	return *f.Caption
}

// readFile returns nil when the field is absent
func readFile(r *http.Request, field string) (*blobs.File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid file field: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, blobs.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return &blobs.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func writeFormError(w http.ResponseWriter, err error) {
	if errors.Is(err, errRequestTooLarge) {
		writeTooLarge(w)
		return
	}
	writeInvalid(w, err.Error())
}
