package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deckthumb-cache/core/cachestore"
	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"github.com/stretchr/testify/mock"
)

// mapCache is an in-memory substrate
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "key", ID: key}
	}
	return v, nil
}

func (m *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// upstream is a scripted fetch collaborator that records calls
type upstream struct {
	mu    sync.Mutex
	decks map[int]*domain.DeckDetail
	errs  map[int]error
	calls []int
}

func newUpstream(decks ...*domain.DeckDetail) *upstream {
	u := &upstream{decks: map[int]*domain.DeckDetail{}, errs: map[int]error{}}
	for _, d := range decks {
		u.decks[d.ID] = d
	}
	return u
}

func (u *upstream) FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, id)
	if err := u.errs[id]; err != nil {
		return nil, err
	}
	d, ok := u.decks[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	copied.Main = append([]domain.CardRef(nil), d.Main...)
	copied.Extra = append([]domain.CardRef(nil), d.Extra...)
	copied.Side = append([]domain.CardRef(nil), d.Side...)
	return &copied, nil
}

func (u *upstream) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

// renderer is a generator fake producing a deterministic artifact
type renderer struct {
	mu     sync.Mutex
	calls  []int
	hints  map[int][]int
	empty  map[int]bool
	errs   map[int]error
	panics map[int]bool
}

func newRenderer() *renderer {
	return &renderer{
		hints:  map[int][]int{},
		empty:  map[int]bool{},
		errs:   map[int]error{},
		panics: map[int]bool{},
	}
}

func (r *renderer) Generate(ctx context.Context, deck *domain.DeckDetail, placementHints []int) (*string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, deck.ID)
	r.hints[deck.ID] = placementHints
	shouldPanic := r.panics[deck.ID]
	err := r.errs[deck.ID]
	empty := r.empty[deck.ID]
	r.mu.Unlock()

	if shouldPanic {
		panic("renderer exploded")
	}
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}
	artifact := fmt.Sprintf("data:image/png;base64,deck-%d", deck.ID)
	return &artifact, nil
}

func (r *renderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// mockFetcher is a testify mock of the fetch collaborator
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*domain.DeckDetail)
	return detail, args.Error(1)
}

// sleepRecorder records jitter pauses without sleeping
type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses = append(s.pauses, d)
	return ctx.Err()
}

// countingYielder counts idle yields
type countingYielder struct {
	mu    sync.Mutex
	count int
}

func (y *countingYielder) Yield(ctx context.Context) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.count++
	return ctx.Err()
}

// harness wires a scheduler with fakes
type harness struct {
	cache     *mapCache
	store     *cachestore.Store
	upstream  *upstream
	renderer  *renderer
	clock     *fakeClock
	sleeps    *sleepRecorder
	yielder   *countingYielder
	scheduler *Scheduler
}

func newHarness(decks ...*domain.DeckDetail) *harness {
	h := &harness{
		cache:    newMapCache(),
		upstream: newUpstream(decks...),
		renderer: newRenderer(),
		clock:    &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		sleeps:   &sleepRecorder{},
		yielder:  &countingYielder{},
	}
	h.store = cachestore.NewStore(h.cache)
	h.scheduler = h.build()
	return h
}

func (h *harness) build(opts ...Option) *Scheduler {
	base := []Option{
		WithClock(h.clock.Now),
		WithSleeper(h.sleeps.Sleep),
		WithYielder(h.yielder),
	}
	return New(h.store, h.upstream, h.renderer, append(base, opts...)...)
}

func deck(id int, quantities ...int) *domain.DeckDetail {
	d := &domain.DeckDetail{ID: id, Name: fmt.Sprintf("Deck %d", id)}
	for i, q := range quantities {
		d.Main = append(d.Main, domain.CardRef{ID: id*100 + i, InstanceID: 1, Quantity: q})
	}
	return d
}

func summaries(ids ...int) []domain.DeckSummary {
	out := make([]domain.DeckSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.DeckSummary{ID: id, Name: fmt.Sprintf("Deck %d", id)})
	}
	return out
}
