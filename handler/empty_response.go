package handler

import "net/http"

type emptyResponse struct {
	status  int
	headers http.Header
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for k, vs := range e.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(e.status)
	return nil
}

// Empty creates a 204 No Content response.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// EmptyWithStatus creates a bodiless response with the given status.
func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}
