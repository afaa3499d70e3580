// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a bound request value and returns a
// Response that knows how to render itself. Wrap turns it into an
// http.HandlerFunc, running binders first and routing every failure through a
// single ErrorHandler:
//
//	type submit struct {
//		Name string `json:"name"`
//	}
//
//	h := handler.Wrap(func(ctx handler.Context, req submit) handler.Response {
//		if req.Name == "" {
//			return handler.JSONError(handler.ErrBadRequest)
//		}
//		return handler.JSON(req, handler.WithJSONStatus(http.StatusCreated))
//	}, handler.WithBinders[submit](handler.BindJSON()))
//
// # Responses
//
//	handler.JSON(v)          // 200 with v encoded as the body
//	handler.JSONError(err)   // {"error": {...}} with a status derived from err
//	handler.Empty()          // 204
//	handler.SSE(fn)          // event stream driven by fn
//
// Errors map to status codes by type: HTTPError carries its own code,
// validator.ValidationErrors become 422 with per-field details, anything
// else is 500. In production the message of a 500 is replaced by a generic one.
//
// # Server-Sent Events
//
// SSE hands fn a StreamContext backed by a datastar ServerSentEventGenerator.
// Send writes one event with an optional id; SendRetry writes the reconnect
// hint. fn should return when the request context is done.
package handler
