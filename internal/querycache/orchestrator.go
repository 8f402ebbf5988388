// Package querycache owns the process-wide cache of backend responses.
//
// Each key moves through Idle -> Loading -> {Success, Error} and can always
// re-enter Loading after an invalidation. At most one request per key is in
// flight at any time; concurrent callers share it. All store mutations
// happen under one mutex and never span network I/O.
package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of one cache key.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// FetchFunc performs the network call for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Result is the read-only view a consumer gets for a key.
type Result struct {
	Data      any
	Err       error
	Status    Status
	FetchedAt time.Time
	// Superseded is set when a Subscription moved to another fetch
	// before this one resolved; the result was not delivered.
	Superseded bool
}

func (r Result) IsLoading() bool { return r.Status == StatusLoading }

type entry struct {
	key         Key
	data        any
	err         error
	status      Status
	fetchedAt   time.Time
	invalidated bool
	// gen is bumped by every invalidation so flights issued earlier
	// cannot write their result back.
	gen        uint64
	flights    int
	lastAccess time.Time
}

// settledStatus is the status an entry holds with no request in flight.
func (e *entry) settledStatus() Status {
	switch {
	case e.err != nil:
		return StatusError
	case !e.fetchedAt.IsZero():
		return StatusSuccess
	default:
		return StatusIdle
	}
}

func (e *entry) result() Result {
	return Result{Data: e.data, Err: e.err, Status: e.status, FetchedAt: e.fetchedAt}
}

// Options configures an Orchestrator.
type Options struct {
	// StaleTime is how long a successful entry is served without a
	// refetch. Zero keeps entries fresh until they are invalidated.
	StaleTime time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// Orchestrator de-duplicates fetches per key and owns the cache store.
type Orchestrator struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[*Subscription]struct{}
	group   singleflight.Group

	staleTime time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		entries:   make(map[string]*entry),
		subs:      make(map[*Subscription]struct{}),
		staleTime: opts.StaleTime,
		now:       opts.Now,
		log:       opts.Logger,
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}

// Fetch returns the cached result for key when it is fresh, otherwise it
// joins or starts the single in-flight request for key. Cancelling ctx
// stops this caller from waiting; it does not abort the shared request.
func (o *Orchestrator) Fetch(ctx context.Context, key Key, fn FetchFunc) Result {
	k := key.String()

	o.mu.Lock()
	e := o.entryLocked(key, k)
	e.lastAccess = o.now()
	if o.freshLocked(e) {
		res := e.result()
		o.mu.Unlock()
		return res
	}
	o.mu.Unlock()

	flightCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(k, func() (any, error) {
		return o.run(flightCtx, key, k, fn), nil
	})

	select {
	case <-ctx.Done():
		return Result{Err: ctx.Err(), Status: StatusError}
	case res := <-ch:
		return res.Val.(Result)
	}
}

func (o *Orchestrator) run(ctx context.Context, key Key, k string, fn FetchFunc) Result {
	o.mu.Lock()
	e := o.entryLocked(key, k)
	gen := e.gen
	e.status = StatusLoading
	e.flights++
	o.mu.Unlock()

	data, err := fn(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	e.flights--

	res := Result{Data: data, Err: err, Status: StatusSuccess, FetchedAt: o.now()}
	if err != nil {
		res.Status = StatusError
		res.Data = nil
	}

	if cur, ok := o.entries[k]; !ok || cur != e || cur.gen != gen {
		o.log.Debug("discarding result of invalidated fetch", "key", k)
		// The entry stays invalidated; it only stops reporting Loading
		// once no newer request is running for it.
		if cur == e && e.flights == 0 && e.status == StatusLoading {
			e.status = e.settledStatus()
		}
		return res
	}

	e.status = res.Status
	e.err = err
	e.invalidated = false
	if err == nil {
		e.data = data
		e.fetchedAt = res.FetchedAt
	}
	return res
}

func (o *Orchestrator) entryLocked(key Key, k string) *entry {
	e, ok := o.entries[k]
	if !ok {
		e = &entry{key: key}
		o.entries[k] = e
	}
	return e
}

func (o *Orchestrator) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.invalidated {
		return false
	}
	if o.staleTime <= 0 {
		return true
	}
	return o.now().Sub(e.fetchedAt) < o.staleTime
}

// Peek returns the current state of key without fetching.
func (o *Orchestrator) Peek(key Key) (Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[key.String()]
	if !ok {
		return Result{Status: StatusIdle}, false
	}
	return e.result(), true
}

// Invalidate marks key as no longer authoritative. Active subscriptions on
// key refetch.
func (o *Orchestrator) Invalidate(key Key) {
	k := key.String()
	o.mu.Lock()
	if e, ok := o.entries[k]; ok {
		o.invalidateLocked(k, e)
	}
	subs := o.watchersLocked(func(w Key) bool { return w == key })
	o.mu.Unlock()

	o.refresh(subs)
}

// InvalidateKind invalidates every key of kind regardless of params.
func (o *Orchestrator) InvalidateKind(kind Kind) {
	o.mu.Lock()
	n := 0
	for k, e := range o.entries {
		if e.key.Kind == kind {
			o.invalidateLocked(k, e)
			n++
		}
	}
	subs := o.watchersLocked(func(w Key) bool { return w.Kind == kind })
	o.mu.Unlock()

	o.log.Debug("invalidated cache kind", "kind", kind, "entries", n)
	o.refresh(subs)
}

func (o *Orchestrator) invalidateLocked(k string, e *entry) {
	e.invalidated = true
	e.gen++
	o.group.Forget(k)
}

// Remove drops key from the cache outright, so the next fetch cannot see
// any previously cached data.
func (o *Orchestrator) Remove(key Key) {
	k := key.String()
	o.mu.Lock()
	if e, ok := o.entries[k]; ok {
		e.gen++
		delete(o.entries, k)
	}
	o.group.Forget(k)
	o.mu.Unlock()
}

// Clear drops every entry.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	for k, e := range o.entries {
		e.gen++
		o.group.Forget(k)
	}
	o.entries = make(map[string]*entry)
	o.mu.Unlock()
}

// Collect drops entries that no subscription watches and that were not
// accessed for maxIdle. It returns the number of entries dropped.
func (o *Orchestrator) Collect(maxIdle time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	watched := make(map[string]bool, len(o.subs))
	for s := range o.subs {
		if k, ok := s.currentKey(); ok {
			watched[k.String()] = true
		}
	}

	cutoff := o.now().Add(-maxIdle)
	n := 0
	for k, e := range o.entries {
		if watched[k] || e.status == StatusLoading || e.lastAccess.After(cutoff) {
			continue
		}
		delete(o.entries, k)
		n++
	}
	return n
}

// Len reports the number of cached keys.
func (o *Orchestrator) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

func (o *Orchestrator) watchersLocked(match func(Key) bool) []*Subscription {
	var out []*Subscription
	for s := range o.subs {
		if k, ok := s.currentKey(); ok && match(k) {
			out = append(out, s)
		}
	}
	return out
}

func (o *Orchestrator) refresh(subs []*Subscription) {
	for _, s := range subs {
		go s.refetch()
	}
}

// Query is the typed form of Fetch.
func Query[T any](ctx context.Context, o *Orchestrator, key Key, fn func(context.Context) (T, error)) (T, error) {
	res := o.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	return As[T](res)
}

// As extracts typed data from a Result.
func As[T any](res Result) (T, error) {
	var zero T
	if res.Err != nil {
		return zero, res.Err
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: cached value is %T, want %T", res.Data, zero)
	}
	return v, nil
}
