package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/snaketips/handler"
	"github.com/dmitrymomot/snaketips/internal/leaderboard"
	"github.com/dmitrymomot/snaketips/internal/realtime"
	"github.com/dmitrymomot/snaketips/internal/tips"
	"github.com/dmitrymomot/snaketips/pkg/logger"
	"github.com/dmitrymomot/snaketips/pkg/stream"
)

// Leaderboard listing bounds for the top query parameter.
const (
	DefaultTop = 100
	MaxTop     = 1000
)

type handlers struct {
	log         *slog.Logger
	catalogue   *tips.Catalogue
	tips        *realtime.Channel[tips.Tip]
	leaderboard *realtime.Channel[leaderboard.ChangeEvent]
	store       *leaderboard.Store
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func list[T any](items []T) handler.Response {
	if items == nil {
		items = []T{}
	}
	return handler.JSON(listResponse[T]{Items: items})
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", handler.ErrBadRequest, err)
}

func (h *handlers) tipFilter(ctx handler.Context) (tips.Filter, error) {
	q := ctx.Request().URL.Query()
	f, err := tips.ParseFilter(q.Get("category"), q.Get("difficulty"))
	if err != nil {
		return tips.Filter{}, badRequest(err)
	}
	return f, nil
}

func (h *handlers) listTips(ctx handler.Context, _ struct{}) handler.Response {
	f, err := h.tipFilter(ctx)
	if err != nil {
		return handler.JSONError(err)
	}
	return list(h.catalogue.Find(f))
}

func (h *handlers) streamTips(ctx handler.Context, _ struct{}) handler.Response {
	f, err := h.tipFilter(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	var match func(tips.Tip) bool
	if !f.IsZero() {
		match = f.Match
	}
	return streamChannel(h.log, h.tips, TipEvent, lastEventID(ctx), match)
}

func (h *handlers) streamLeaderboard(ctx handler.Context, _ struct{}) handler.Response {
	return streamChannel(h.log, h.leaderboard, LeaderboardChangeEvent, lastEventID(ctx), nil)
}

func (h *handlers) listLeaderboard(ctx handler.Context, _ struct{}) handler.Response {
	top := DefaultTop
	if raw := ctx.Request().URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return handler.JSONError(badRequest(fmt.Errorf("top must be an integer, got %q", raw)))
		}
		top = min(max(n, 1), MaxTop)
	}
	return list(h.store.GetTopN(top))
}

func (h *handlers) playerEntries(ctx handler.Context, _ struct{}) handler.Response {
	name, err := url.PathUnescape(chi.URLParam(ctx.Request(), "playerName"))
	if err != nil {
		return handler.JSONError(badRequest(err))
	}

	entries := h.store.GetByPlayer(name)
	if len(entries) == 0 {
		return handler.JSONError(handler.ErrNotFound)
	}
	return list(entries)
}

func (h *handlers) getEntry(ctx handler.Context, _ struct{}) handler.Response {
	e, ok := h.store.Get(chi.URLParam(ctx.Request(), "entryId"))
	if !ok {
		return handler.JSONError(handler.ErrNotFound)
	}
	return handler.JSON(e)
}

func (h *handlers) submitEntry(_ handler.Context, req leaderboard.SubmitRequest) handler.Response {
	e, err := h.store.Submit(req)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(e,
		handler.WithJSONStatus(http.StatusCreated),
		handler.WithHeader("Location", Prefix+"/leaderboard/"+url.PathEscape(e.EntryID)),
	)
}

func (h *handlers) deleteEntry(ctx handler.Context, _ struct{}) handler.Response {
	if !h.store.Delete(chi.URLParam(ctx.Request(), "entryId")) {
		return handler.JSONError(handler.ErrNotFound)
	}
	return handler.Empty()
}

func lastEventID(ctx handler.Context) string {
	return ctx.Request().Header.Get("Last-Event-ID")
}

// streamChannel runs a session on ch for the lifetime of the request.
// Write failures mean the client went away and end the stream quietly.
func streamChannel[T any](log *slog.Logger, ch *realtime.Channel[T], event, lastID string, match func(T) bool) handler.Response {
	return handler.SSE(func(s handler.StreamContext) error {
		sess := ch.Open(lastID, match)

		err := sess.Run(s, func(rec stream.Record[T]) error {
			if rec.Control {
				return s.SendRetry(event, rec.Retry)
			}
			return s.Send(event, rec.ID, rec.Data)
		})
		if err != nil && s.Err() == nil && !errors.Is(err, handler.ErrSSEClosed) {
			log.Debug("stream write failed",
				logger.Stream(ch.Name()),
				logger.ConnectionID(sess.ID()),
				logger.Error(err),
			)
		}
		return nil
	})
}
