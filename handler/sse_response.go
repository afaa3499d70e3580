package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext is the Context handed to an SSE handler.
type StreamContext interface {
	Context

	// Send writes one event. An empty id omits the id field.
	// data is JSON encoded onto a single data line.
	Send(event, id string, data any) error

	// SendRetry writes the reconnect hint for event without any data.
	SendRetry(event string, retry time.Duration) error
}

// SSEHandler runs for the lifetime of an event stream.
type SSEHandler func(stream StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

// SSE creates a response that opens an event stream and runs h.
// The stream ends when h returns.
func SSE(h SSEHandler) Response {
	return sseResponse{handler: h}
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	stream := &streamContext{
		Context: NewContext(w, r),
		sse:     datastar.NewSSE(w, r),
	}
	return s.handler(stream)
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) Send(event, id string, data any) error {
	if c.Err() != nil {
		return ErrSSEClosed
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	lines := []string{string(payload)}
	if id == "" {
		return c.sse.Send(datastar.EventType(event), lines)
	}
	return c.sse.Send(datastar.EventType(event), lines, datastar.WithSSEEventId(id))
}

func (c *streamContext) SendRetry(event string, retry time.Duration) error {
	if c.Err() != nil {
		return ErrSSEClosed
	}
	return c.sse.Send(datastar.EventType(event), nil, datastar.WithSSERetryDuration(retry))
}
