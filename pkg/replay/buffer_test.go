package replay_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/snaketips/pkg/replay"
)

func ids[T any](items []replay.Item[T]) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestBuffer_Add(t *testing.T) {
	t.Parallel()

	t.Run("ids start at zero and increase", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](10)
		assert.Equal(t, replay.NoEvents, b.CurrentID())

		a := b.Add("a")
		c := b.Add("b")
		assert.Equal(t, int64(0), a.ID)
		assert.Equal(t, int64(1), c.ID)
		assert.Equal(t, "1", c.EventID())
		assert.Equal(t, int64(1), b.CurrentID())
	})

	t.Run("eviction keeps the newest and never reuses ids", func(t *testing.T) {
		t.Parallel()
		b := replay.New[int](3)
		for i := range 10 {
			item := b.Add(i)
			assert.Equal(t, int64(i), item.ID)
			assert.LessOrEqual(t, b.Len(), 3)
		}

		all := b.After(replay.NoEvents)
		assert.Equal(t, []int64{7, 8, 9}, ids(all))
		assert.Equal(t, 7, all[0].Data)
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, replay.DefaultSize, replay.New[int](0).Size())
	})
}

func TestBuffer_GetEventsAfter(t *testing.T) {
	t.Parallel()

	t.Run("eviction and after-id combine", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](3)
		for _, s := range []string{"A", "B", "C", "D"} {
			b.Add(s)
		}

		all := b.After(replay.NoEvents)
		require.Len(t, all, 3)
		assert.Equal(t, "B", all[0].Data)
		assert.Equal(t, int64(1), all[0].ID)

		got := b.GetEventsAfter("1")
		require.Len(t, got, 2)
		assert.Equal(t, "C", got[0].Data)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, "D", got[1].Data)
		assert.Equal(t, int64(3), got[1].ID)
	})

	t.Run("evicted id yields everything retained", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](3)
		for _, s := range []string{"A", "B", "C", "D"} {
			b.Add(s)
		}
		assert.Equal(t, []int64{1, 2, 3}, ids(b.GetEventsAfter("0")))
		assert.Equal(t, []int64{1, 2, 3}, ids(b.GetEventsAfter("-5")))
	})

	t.Run("newest id yields nothing", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](3)
		b.Add("A")
		assert.Empty(t, b.GetEventsAfter("0"))
		assert.Empty(t, b.GetEventsAfter("99"))
	})

	t.Run("bad input yields nothing", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](3)
		b.Add("A")
		for _, in := range []string{"", "   ", "abc", "1.5", "0x1"} {
			assert.Empty(t, b.GetEventsAfter(in), "input %q", in)
		}
		assert.Len(t, b.GetEventsAfter(" -1 "), 1)
	})

	t.Run("result does not alias the buffer", func(t *testing.T) {
		t.Parallel()
		b := replay.New[string](2)
		b.Add("A")
		b.Add("B")
		got := b.GetEventsAfter("-1")
		b.Add("C")
		assert.Equal(t, "A", got[0].Data)
		assert.Equal(t, "B", got[1].Data)
	})
}

func TestBuffer_Concurrent(t *testing.T) {
	t.Parallel()

	b := replay.New[int](16)
	var wg sync.WaitGroup

	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 250 {
				b.Add(w*1000 + i)
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 250 {
				got := ids(b.GetEventsAfter(strconv.Itoa(i)))
				for j := 1; j < len(got); j++ {
					if got[j] <= got[j-1] {
						t.Errorf("ids not ascending: %v", got)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(999), b.CurrentID())
	assert.Equal(t, 16, b.Len())
}
