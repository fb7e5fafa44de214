package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ReadFormFile reads a single multipart file field. The whole request body is
// capped at maxBytes.
func ReadFormFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, tooBig.Limit)
		}
		return nil, "", fmt.Errorf("%w: multipart form: %v", ErrValidation, err)
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", FieldErrors{field: field + " is required"}
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", field, err)
	}
	return data, header.Filename, nil
}
