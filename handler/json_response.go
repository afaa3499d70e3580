package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/snaketips/pkg/environment"
	"github.com/dmitrymomot/snaketips/pkg/validator"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error for API clients.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status  int
	headers http.Header
	body    any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for k, vs := range j.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// WithHeader adds a response header.
func WithHeader(key, value string) JSONOption {
	return func(r *jsonResponse) {
		if r.headers == nil {
			r.headers = make(http.Header)
		}
		r.headers.Add(key, value)
	}
}

// JSON encodes v as the response body with status 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err as an ErrorBody with a status derived from err.
func JSONError(err error, opts ...JSONOption) Response {
	return errorResponse{err: err, opts: opts}
}

// errorResponse defers classification to render time so the request context
// can decide how much detail to expose.
type errorResponse struct {
	err  error
	opts []JSONOption
}

func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	status, detail := Classify(e.err)
	if status >= http.StatusInternalServerError && environment.IsProduction(r.Context()) {
		detail.Message = http.StatusText(status)
	}

	resp := &jsonResponse{status: status, body: ErrorBody{Error: detail}}
	for _, opt := range e.opts {
		opt(resp)
	}
	return resp.Render(w, r)
}

// Classify maps an error to a status code and client-facing detail.
func Classify(err error) (int, ErrorDetail) {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "validation_error",
			Message: "one or more fields are invalid",
			Details: verrs.Map(),
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, ErrorDetail{
			Code:    httpErr.Key,
			Message: err.Error(),
		}
	}

	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return http.StatusInternalServerError, ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: msg,
	}
}
