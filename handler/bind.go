package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodySize caps JSON request bodies.
const DefaultMaxBodySize = 1 << 20

// BindJSON decodes a JSON request body into v. Unknown fields are rejected.
// Malformed input yields a 400 HTTPError whose key names the problem.
func BindJSON() Bind {
	return func(r *http.Request, v any) error {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mt, _, err := mime.ParseMediaType(ct)
			if err != nil || mt != "application/json" {
				return ErrUnsupportedMedia
			}
		}

		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, DefaultMaxBodySize))
		dec.DisallowUnknownFields()

		if err := dec.Decode(v); err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxErr):
				return ErrRequestTooLarge
			case errors.Is(err, io.EOF):
				return NewHTTPError(http.StatusBadRequest, "empty_body")
			default:
				return fmt.Errorf("%w: %w", NewHTTPError(http.StatusBadRequest, "invalid_json"), err)
			}
		}
		return nil
	}
}
