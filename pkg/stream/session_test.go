package stream_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/snaketips/pkg/broadcast"
	"github.com/dmitrymomot/snaketips/pkg/replay"
	"github.com/dmitrymomot/snaketips/pkg/stream"
)

func setup() (*broadcast.Registry[string], *replay.Buffer[string]) {
	return broadcast.New[string](broadcast.WithCapacity(10)), replay.New[string](10)
}

func TestSession_Sequence(t *testing.T) {
	t.Parallel()

	t.Run("control record first, then replay, then tail", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		hist.Add("a") // 0
		hist.Add("b") // 1
		hist.Add("c") // 2

		s := stream.Open(reg, hist, "0", nil, stream.WithRetry(3*time.Second))
		defer s.Close()
		assert.Equal(t, stream.Connecting, s.State())
		assert.Equal(t, 1, reg.SubscriberCount())
		assert.Len(t, s.ID(), 32)

		ctx := context.Background()

		rec, err := s.Next(ctx)
		require.NoError(t, err)
		assert.True(t, rec.Control)
		assert.Equal(t, 3*time.Second, rec.Retry)
		assert.Empty(t, rec.ID)
		assert.Equal(t, stream.Replaying, s.State())

		rec, err = s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1", rec.ID)
		assert.Equal(t, "b", rec.Data)

		rec, err = s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2", rec.ID)
		assert.Equal(t, "c", rec.Data)

		reg.Broadcast("live")
		rec, err = s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, stream.Tailing, s.State())
		assert.False(t, rec.Control)
		assert.Equal(t, "3", rec.ID)
		assert.Equal(t, "live", rec.Data)
		assert.Equal(t, int64(3), hist.CurrentID())
	})

	t.Run("no last id means no replay", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		hist.Add("old")

		s := stream.Open(reg, hist, "", nil)
		defer s.Close()

		rec, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.True(t, rec.Control)
		assert.Equal(t, stream.DefaultRetry, rec.Retry)

		reg.Broadcast("new")
		rec, err = s.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new", rec.Data)
		assert.Equal(t, "1", rec.ID)
	})

	t.Run("filter applies to replay and tail", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		hist.Add("keep-1")
		hist.Add("drop-1")
		hist.Add("keep-2")

		isKeep := func(s string) bool { return s[:4] == "keep" }
		s := stream.Open(reg, hist, "-1", isKeep)
		defer s.Close()

		ctx := context.Background()
		_, err := s.Next(ctx)
		require.NoError(t, err)

		var got []string
		for range 2 {
			rec, err := s.Next(ctx)
			require.NoError(t, err)
			got = append(got, rec.ID+":"+rec.Data)
		}
		assert.Equal(t, []string{"0:keep-1", "2:keep-2"}, got)

		reg.Broadcast("drop-2")
		reg.Broadcast("keep-3")
		rec, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "keep-3", rec.Data)
		assert.Equal(t, "3", rec.ID)
	})
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	t.Run("cancellation unsubscribes", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		s := stream.Open(reg, hist, "", nil)

		ctx, cancel := context.WithCancel(context.Background())
		_, err := s.Next(ctx)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := s.Next(ctx)
			done <- err
		}()

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, stream.ErrClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("Next did not return after cancel")
		}
		assert.Equal(t, stream.Closed, s.State())
		assert.Equal(t, 0, reg.SubscriberCount())
	})

	t.Run("mailbox closure ends the session", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		s := stream.Open(reg, hist, "", nil)

		reg.Close()

		ctx := context.Background()
		_, err := s.Next(ctx) // control
		require.NoError(t, err)
		_, err = s.Next(ctx)
		assert.ErrorIs(t, err, stream.ErrClosed)
		assert.Equal(t, stream.Closed, s.State())
	})

	t.Run("close from another goroutine during history load", func(t *testing.T) {
		t.Parallel()
		reg, buf := setup()
		buf.Add("a")
		buf.Add("b")
		hist := &hookedHistory{Buffer: buf}
		s := stream.Open(reg, hist, "0", nil)
		hist.onLoad = func() {
			closed := make(chan struct{})
			go func() {
				s.Close()
				close(closed)
			}()
			<-closed
		}

		done := make(chan error, 1)
		go func() {
			for range 10 {
				if _, err := s.Next(context.Background()); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, stream.ErrClosed)
		case <-time.After(2 * time.Second):
			t.Fatalf("Next did not return after Close, state=%s", s.State())
		}
		assert.Equal(t, stream.Closed, s.State())
		assert.Equal(t, 0, reg.SubscriberCount())
	})

	t.Run("close from another goroutine during replay", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		hist.Add("a")
		hist.Add("b")
		hist.Add("c")
		s := stream.Open(reg, hist, "0", nil)

		ctx := context.Background()
		_, err := s.Next(ctx) // control
		require.NoError(t, err)
		_, err = s.Next(ctx) // "b"
		require.NoError(t, err)

		closed := make(chan struct{})
		go func() {
			s.Close()
			close(closed)
		}()
		<-closed

		_, err = s.Next(ctx)
		assert.ErrorIs(t, err, stream.ErrClosed)
		assert.Equal(t, stream.Closed, s.State())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		other, _ := reg.Subscribe()
		s := stream.Open(reg, hist, "", nil)

		s.Close()
		s.Close()
		assert.Equal(t, 1, reg.SubscriberCount())

		_, err := s.Next(context.Background())
		assert.ErrorIs(t, err, stream.ErrClosed)
		reg.Unsubscribe(other)
	})
}

// hookedHistory runs onLoad before serving replay.
type hookedHistory struct {
	*replay.Buffer[string]
	onLoad func()
}

func (h *hookedHistory) GetEventsAfter(lastID string) []replay.Item[string] {
	if h.onLoad != nil {
		h.onLoad()
	}
	return h.Buffer.GetEventsAfter(lastID)
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	t.Run("ascending ids across replay and tail", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		for _, s := range []string{"a", "b", "c", "d"} {
			hist.Add(s)
		}

		s := stream.Open(reg, hist, "1", nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		var got []int64
		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx, func(rec stream.Record[string]) error {
				if rec.Control {
					return nil
				}
				id, ok := replay.ParseID(rec.ID)
				assert.True(t, ok)
				mu.Lock()
				got = append(got, id)
				n := len(got)
				mu.Unlock()
				if n == 2 {
					reg.Broadcast("e")
					reg.Broadcast("f")
				}
				if n == 4 {
					cancel()
				}
				return nil
			})
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not finish")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int64{2, 3, 4, 5}, got)
		assert.Equal(t, 0, reg.SubscriberCount())
	})

	t.Run("emit error is returned and session closed", func(t *testing.T) {
		t.Parallel()
		reg, hist := setup()
		s := stream.Open(reg, hist, "", nil)

		boom := errors.New("write failed")
		err := s.Run(context.Background(), func(stream.Record[string]) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, stream.Closed, s.State())
		assert.Equal(t, 0, reg.SubscriberCount())
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "connecting", stream.Connecting.String())
	assert.Equal(t, "replaying", stream.Replaying.String())
	assert.Equal(t, "tailing", stream.Tailing.String())
	assert.Equal(t, "closed", stream.Closed.String())
	assert.Equal(t, "unknown", stream.State(42).String())
}
