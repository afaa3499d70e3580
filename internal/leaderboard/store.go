package leaderboard

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/dmitrymomot/snaketips/pkg/logger"
)

// Publisher receives every change made to the store.
type Publisher interface {
	Publish(ev ChangeEvent) bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for PlayedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger supplies a logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store is a concurrency-safe in-memory leaderboard.
type Store struct {
	entries sync.Map // entry id -> Entry
	pub     Publisher
	now     func() time.Time
	log     *slog.Logger
}

// NewStore creates an empty store publishing to pub. pub may be nil.
func NewStore(pub Publisher, opts ...Option) *Store {
	s := &Store{
		pub: pub,
		now: time.Now,
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req and stores it. Invalid requests return
// validator.ValidationErrors and leave the store untouched.
func (s *Store) Submit(req SubmitRequest) (Entry, error) {
	if err := req.Validate(); err != nil {
		return Entry{}, err
	}
	return s.Add(strings.TrimSpace(req.PlayerName), req.Score, req.Level, req.SnakeLength), nil
}

// Add stores a new entry with a server-assigned id and timestamp and
// publishes EntryAdded.
func (s *Store) Add(playerName string, score, level, snakeLength int) Entry {
	e := Entry{
		EntryID:     newEntryID(),
		PlayerName:  playerName,
		Score:       score,
		Level:       level,
		SnakeLength: snakeLength,
		PlayedAt:    s.now().UTC(),
	}
	s.entries.Store(e.EntryID, e)

	s.log.Info("leaderboard entry added",
		slog.String("entry_id", e.EntryID),
		slog.String("player", e.PlayerName),
		slog.Int("score", e.Score),
	)
	s.publish(EntryAdded, e)
	return e
}

// Delete removes the entry and publishes EntryDeleted with its last snapshot.
// It reports false for unknown ids.
func (s *Store) Delete(entryID string) bool {
	v, ok := s.entries.LoadAndDelete(entryID)
	if !ok {
		return false
	}
	e := v.(Entry)

	s.log.Info("leaderboard entry deleted", slog.String("entry_id", e.EntryID))
	s.publish(EntryDeleted, e)
	return true
}

func (s *Store) publish(t ChangeType, e Entry) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ChangeEvent{ChangeType: t, Entry: e})
}

// Get returns the entry with the given id.
func (s *Store) Get(entryID string) (Entry, bool) {
	v, ok := s.entries.Load(entryID)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// GetAll returns every entry, best first.
func (s *Store) GetAll() []Entry {
	return s.collect(func(Entry) bool { return true })
}

// GetTopN returns at most n entries, best first.
func (s *Store) GetTopN(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	all := s.GetAll()
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// GetByPlayer returns the player's entries, best first.
// Names are compared with Unicode case folding.
func (s *Store) GetByPlayer(playerName string) []Entry {
	fold := cases.Fold()
	want := fold.String(playerName)
	return s.collect(func(e Entry) bool {
		return fold.String(e.PlayerName) == want
	})
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *Store) collect(keep func(Entry) bool) []Entry {
	out := []Entry{}
	s.entries.Range(func(_, v any) bool {
		if e := v.(Entry); keep(e) {
			out = append(out, e)
		}
		return true
	})
	slices.SortFunc(out, compareEntries)
	return out
}

// compareEntries orders by score desc, then newest first, then id for a
// deterministic result.
func compareEntries(a, b Entry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := b.PlayedAt.Compare(a.PlayedAt); c != 0 {
		return c
	}
	return strings.Compare(a.EntryID, b.EntryID)
}

func newEntryID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
