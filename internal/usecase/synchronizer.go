package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/pkg/apperror"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/metrics"
)

// Phase is the request state of one mutation target.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

var (
	// ErrMutationInFlight rejects a second record-creating action on a target
	// that still has one pending.
	ErrMutationInFlight = apperror.Conflict("Another update for this item is still in progress")

	// ErrSuperseded is returned by a load or queued toggle whose result was
	// discarded because a newer request or a reset replaced it.
	ErrSuperseded = errors.New("request superseded")
)

// Outcome is the state of one target: present with Value, or absent.
type Outcome[T any] struct {
	Value   T
	Present bool
}

// RequestState is the observable state of one target.
// Previous is the target's confirmed value before the pending chain; nil means absent.
type RequestState[T any] struct {
	Phase    Phase
	Previous *T
	Err      error
}

// Fetcher loads one page, starting at 1.
type Fetcher[T any] func(ctx context.Context, page int) (*domain.Page[T], error)

// View is a read-only snapshot of a collection.
type View[T any] struct {
	Items      []T    `json:"items"`
	Loaded     bool   `json:"loaded"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	HasMore    bool   `json:"has_more"`
}

type CollectionOptions struct {
	Timeout  time.Duration
	Notifier domain.Notifier
	Metrics  *metrics.Metrics
	// OnAuthExpired is called, outside any lock, when the backend rejects the token.
	OnAuthExpired func(ctx context.Context, err error) bool
}

type intent[T any] struct {
	desired Outcome[T]
	call    func(ctx context.Context) (Outcome[T], error)
	ctx     context.Context
	done    chan error
}

// confirmedState is a result the backend confirmed while gen was the latest
// load generation. Loads issued at or before gen may predate it.
type confirmedState[T any] struct {
	outcome Outcome[T]
	front   bool
	gen     uint64
}

type targetState[T any] struct {
	phase    Phase
	previous *T
	index    int
	err      error
	inflight bool
	next     *intent[T]
}

// Collection keeps a locally rendered list consistent with the backend.
// Loads are latest-wins; membership toggles are optimistic with per-target
// rollback and are serialized per target; record-creating calls are
// pessimistic and rejected while one is pending for the same target.
type Collection[T any] struct {
	name          string
	keyOf         func(T) string
	timeout       time.Duration
	notifier      domain.Notifier
	metrics       *metrics.Metrics
	onAuthExpired func(ctx context.Context, err error) bool

	mu         sync.Mutex
	items      []T
	loaded     bool
	loading    bool
	err        error
	page       int
	totalPages int
	generation uint64
	epoch      uint64
	cancelLoad context.CancelFunc
	targets    map[string]*targetState[T]
	overlay    map[string]Outcome[T]
	confirmed  map[string]confirmedState[T]
}

func NewCollection[T any](name string, keyOf func(T) string, opts CollectionOptions) *Collection[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Collection[T]{
		name:          name,
		keyOf:         keyOf,
		timeout:       opts.Timeout,
		notifier:      opts.Notifier,
		metrics:       opts.Metrics,
		onAuthExpired: opts.OnAuthExpired,
		targets:       make(map[string]*targetState[T]),
		overlay:       make(map[string]Outcome[T]),
		confirmed:     make(map[string]confirmedState[T]),
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Load fetches the first page and replaces local state on success. On failure
// the last known good items stay and the error flag is set.
func (c *Collection[T]) Load(ctx context.Context, fetch Fetcher[T]) error {
	return c.load(ctx, fetch, false)
}

// LoadMore appends the next page. It is a no-op when the cursor reached the
// last page or another load is in flight.
func (c *Collection[T]) LoadMore(ctx context.Context, fetch Fetcher[T]) error {
	return c.load(ctx, fetch, true)
}

func (c *Collection[T]) load(ctx context.Context, fetch Fetcher[T], more bool) error {
	op := "load"
	if more {
		op = "load_more"
	}

	c.mu.Lock()
	if more && (c.loading || !c.hasMoreLocked()) {
		c.mu.Unlock()
		return nil
	}
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.generation++
	gen := c.generation
	loadCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.cancelLoad = cancel
	c.loading = true
	pageNo := 1
	if more {
		pageNo = c.page + 1
	}
	c.mu.Unlock()
	defer cancel()

	page, err := fetch(loadCtx, pageNo)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.metrics.SyncOp(c.name, op, "stale")
		return ErrSuperseded
	}
	c.loading = false
	c.cancelLoad = nil

	if err == nil && page == nil {
		err = apperror.Validation("Empty page from server", nil)
	}
	if err != nil {
		err = asFetchError(c.name, err)
		c.err = err
		c.mu.Unlock()
		return c.fail(ctx, op, err)
	}

	items := slices.Clone(page.Items)
	if more {
		items = c.appendNew(items)
	}
	c.items = c.applyOverlay(c.applyConfirmed(items, gen))
	c.loaded = true
	c.err = nil
	c.page = page.Page
	if c.page < 1 {
		c.page = pageNo
	}
	c.totalPages = max(page.TotalPages, c.page)
	size := len(c.items)
	c.mu.Unlock()

	c.metrics.SyncOp(c.name, op, "success")
	c.metrics.CollectionSize(c.name, size)
	return nil
}

// appendNew returns current items followed by the incoming ones not already held.
func (c *Collection[T]) appendNew(incoming []T) []T {
	seen := make(map[string]bool, len(c.items))
	out := slices.Clone(c.items)
	for _, it := range c.items {
		seen[c.keyOf(it)] = true
	}
	for _, it := range incoming {
		k := c.keyOf(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// applyConfirmed reapplies mutations confirmed while the load started at gen
// was in flight. Older ones are already part of its snapshot and are dropped.
func (c *Collection[T]) applyConfirmed(items []T, gen uint64) []T {
	for key, cs := range c.confirmed {
		if cs.gen < gen {
			delete(c.confirmed, key)
			continue
		}
		if cs.front && cs.outcome.Present {
			items = upsertFront(items, c.keyOf, cs.outcome.Value)
		} else {
			items = setTarget(items, c.keyOf, key, cs.outcome)
		}
	}
	return items
}

func (c *Collection[T]) applyOverlay(items []T) []T {
	for target, desired := range c.overlay {
		items = setTarget(items, c.keyOf, target, desired)
	}
	return items
}

// Optimistic applies desired to target immediately, then issues call. A
// failure rolls the target back; a success reconciles it with the outcome the
// backend reported. Calls on the same target run one at a time: an action
// issued while one is pending is queued, and a newer queued action replaces
// an older one, so the final state follows the last user intent.
func (c *Collection[T]) Optimistic(ctx context.Context, target string, desired Outcome[T], call func(ctx context.Context) (Outcome[T], error)) error {
	in := &intent[T]{
		desired: desired,
		call:    call,
		ctx:     context.WithoutCancel(ctx),
		done:    make(chan error, 1),
	}

	c.mu.Lock()
	st := c.targets[target]
	if st != nil && st.inflight {
		if st.next != nil {
			st.next.done <- nil
			c.metrics.SyncOp(c.name, "mutate", "coalesced")
		}
		st.next = in
		c.overlay[target] = desired
		c.items = setTarget(c.items, c.keyOf, target, desired)
		c.mu.Unlock()
	} else {
		st = &targetState[T]{
			phase:    PhasePending,
			previous: c.findLocked(target),
			index:    c.indexLocked(target),
			inflight: true,
		}
		c.targets[target] = st
		c.overlay[target] = desired
		c.items = setTarget(c.items, c.keyOf, target, desired)
		epoch := c.epoch
		c.mu.Unlock()

		go c.drive(target, st, in, epoch)
	}

	select {
	case err := <-in.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collection[T]) drive(target string, st *targetState[T], current *intent[T], epoch uint64) {
	for current != nil {
		callCtx, cancel := context.WithTimeout(current.ctx, c.timeout)
		res, err := current.call(callCtx)
		cancel()

		c.mu.Lock()
		if c.epoch != epoch {
			next := st.next
			st.next = nil
			c.mu.Unlock()
			current.done <- ErrSuperseded
			if next != nil {
				next.done <- ErrSuperseded
			}
			c.metrics.SyncOp(c.name, "mutate", "stale")
			return
		}

		next := st.next
		st.next = nil
		if err == nil {
			confirmed := res
			st.previous = valuePtr(confirmed)
			if next != nil && next.desired.Present == confirmed.Present {
				// the queued intent already holds on the server
				next.done <- nil
				next = nil
			}
			if next == nil {
				c.settle(target, st, confirmed, PhaseSucceeded, nil)
			}
		} else if next == nil {
			c.settle(target, st, outcomeOf(st.previous), PhaseFailed, err)
		}
		size := len(c.items)
		c.mu.Unlock()

		if err != nil {
			outcome := "error"
			if next == nil {
				outcome = "rollback"
			}
			c.metrics.SyncOp(c.name, "mutate", outcome)
			err = c.fail(current.ctx, "mutate", asMutationError(c.name, err))
		} else {
			c.metrics.SyncOp(c.name, "mutate", "success")
		}
		c.metrics.CollectionSize(c.name, size)
		current.done <- err
		current = next
	}
}

// settle ends a target's pending chain. Caller holds mu.
func (c *Collection[T]) settle(target string, st *targetState[T], final Outcome[T], phase Phase, err error) {
	delete(c.overlay, target)
	c.items = setTarget(c.items, c.keyOf, target, final)
	if final.Present && st.index >= 0 {
		c.items = moveTo(c.items, c.keyOf, target, st.index)
	}
	if phase == PhaseSucceeded {
		c.confirmed[target] = confirmedState[T]{outcome: final, gen: c.generation}
	}
	st.phase = phase
	st.err = err
	st.inflight = false
}

// PessimisticOptions narrow a pessimistic call.
type PessimisticOptions[T any] struct {
	// Check runs under the collection lock before the target is claimed. An
	// error refuses the call without reaching the backend.
	Check func(items []T) error
	// Admit reports whether a confirmed record belongs in the current view.
	// A record it rejects is not inserted, and a held copy is removed.
	Admit func(T) bool
}

// Pessimistic issues call and only changes local state from its confirmed
// result, inserted or replaced by key. A second call on the same target while
// one is pending is rejected with ErrMutationInFlight.
func (c *Collection[T]) Pessimistic(ctx context.Context, target string, call func(ctx context.Context) (T, error)) (T, error) {
	return c.PessimisticWith(ctx, target, PessimisticOptions[T]{}, call)
}

func (c *Collection[T]) PessimisticWith(ctx context.Context, target string, opts PessimisticOptions[T], call func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if st := c.targets[target]; st != nil && st.inflight {
		c.mu.Unlock()
		c.metrics.SyncOp(c.name, "mutate", "rejected")
		return zero, ErrMutationInFlight
	}
	if opts.Check != nil {
		if err := opts.Check(c.items); err != nil {
			c.mu.Unlock()
			c.metrics.SyncOp(c.name, "mutate", "rejected")
			return zero, err
		}
	}
	st := &targetState[T]{phase: PhasePending, inflight: true}
	c.targets[target] = st
	epoch := c.epoch
	c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	res, err := call(callCtx)

	c.mu.Lock()
	st.inflight = false
	if err != nil {
		st.phase = PhaseFailed
		st.err = err
		c.mu.Unlock()
		c.metrics.SyncOp(c.name, "mutate", "error")
		return zero, c.fail(ctx, "mutate", asMutationError(c.name, err))
	}
	st.phase = PhaseSucceeded
	if epoch == c.epoch {
		key := c.keyOf(res)
		if opts.Admit == nil || opts.Admit(res) {
			c.items = upsertFront(c.items, c.keyOf, res)
			c.confirmed[key] = confirmedState[T]{outcome: Outcome[T]{Value: res, Present: true}, front: true, gen: c.generation}
		} else {
			c.items = setTarget(c.items, c.keyOf, key, Outcome[T]{})
			c.confirmed[key] = confirmedState[T]{gen: c.generation}
		}
	}
	size := len(c.items)
	c.mu.Unlock()

	c.metrics.SyncOp(c.name, "mutate", "success")
	c.metrics.CollectionSize(c.name, size)
	return res, nil
}

// fail reports err through the notification channel, or expires the session
// when the token was rejected. Never called with mu held.
func (c *Collection[T]) fail(ctx context.Context, op string, err error) error {
	if apperror.IsAuthExpired(err) && c.onAuthExpired != nil {
		c.onAuthExpired(ctx, err)
		return err
	}
	logger.Log.Warn("collection sync failed", "collection", c.name, "op", op, "error", err)
	msg := err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	notify.Error(c.notifier, c.name, msg)
	return err
}

// Abandon drops interest in any in-flight load; its result will not apply.
func (c *Collection[T]) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
}

func (c *Collection[T]) abandonLocked() {
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.generation++
	c.loading = false
}

// Reset abandons loads and pending mutation results and clears all state.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	c.abandonLocked()
	c.epoch++
	c.items = nil
	c.loaded = false
	c.err = nil
	c.page = 0
	c.totalPages = 0
	c.targets = make(map[string]*targetState[T])
	c.overlay = make(map[string]Outcome[T])
	c.confirmed = make(map[string]confirmedState[T])
	c.mu.Unlock()
	c.metrics.CollectionSize(c.name, 0)
}

func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Find(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.findLocked(key); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// FindFunc returns the first item matching fn.
func (c *Collection[T]) FindFunc(fn func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.IndexFunc(c.items, fn); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) findLocked(key string) *T {
	for i := range c.items {
		if c.keyOf(c.items[i]) == key {
			v := c.items[i]
			return &v
		}
	}
	return nil
}

func (c *Collection[T]) indexLocked(key string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return c.keyOf(it) == key })
}

func (c *Collection[T]) State(target string) RequestState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.targets[target]
	if st == nil {
		return RequestState[T]{Phase: PhaseIdle}
	}
	return RequestState[T]{Phase: st.phase, Previous: st.previous, Err: st.err}
}

func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Collection[T]) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMoreLocked()
}

func (c *Collection[T]) hasMoreLocked() bool {
	return c.loaded && c.page < c.totalPages
}

func (c *Collection[T]) Snapshot() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View[T]{
		Items:      slices.Clone(c.items),
		Loaded:     c.loaded,
		Loading:    c.loading,
		Page:       c.page,
		TotalPages: c.totalPages,
		HasMore:    c.hasMoreLocked(),
	}
	if v.Items == nil {
		v.Items = []T{}
	}
	if c.err != nil {
		v.Error = c.err.Error()
	}
	return v
}

func setTarget[T any](items []T, keyOf func(T) string, target string, o Outcome[T]) []T {
	i := slices.IndexFunc(items, func(it T) bool { return keyOf(it) == target })
	switch {
	case o.Present && i >= 0:
		items[i] = o.Value
	case o.Present:
		items = append(items, o.Value)
	case i >= 0:
		items = slices.Delete(items, i, i+1)
	}
	return items
}

// moveTo puts the target back at index i, or last when i is out of range.
func moveTo[T any](items []T, keyOf func(T) string, target string, i int) []T {
	j := slices.IndexFunc(items, func(it T) bool { return keyOf(it) == target })
	if j < 0 || j == i {
		return items
	}
	v := items[j]
	items = slices.Delete(items, j, j+1)
	return slices.Insert(items, min(i, len(items)), v)
}

func upsertFront[T any](items []T, keyOf func(T) string, v T) []T {
	key := keyOf(v)
	if i := slices.IndexFunc(items, func(it T) bool { return keyOf(it) == key }); i >= 0 {
		items[i] = v
		return items
	}
	return slices.Insert(items, 0, v)
}

func valuePtr[T any](o Outcome[T]) *T {
	if !o.Present {
		return nil
	}
	v := o.Value
	return &v
}

func outcomeOf[T any](p *T) Outcome[T] {
	if p == nil {
		return Outcome[T]{}
	}
	return Outcome[T]{Value: *p, Present: true}
}

func asFetchError(name string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindFetch, apperror.KindAuthExpired, apperror.KindNoSession:
		return err
	case apperror.KindValidation:
		return apperror.Fetch("Received malformed "+name+" data", err)
	default:
		return apperror.Fetch("Could not load "+name, err)
	}
}

func asMutationError(name string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindMutation, apperror.KindAuthExpired, apperror.KindNoSession, apperror.KindRequest:
		return err
	default:
		return apperror.Mutation("Could not update "+name, err)
	}
}
