package querycache

import (
	"context"
	"sync"
)

// Subscription is one consumer's view onto the cache, the equivalent of a
// mounted component. It tracks the key the consumer currently cares about;
// results for any earlier fetch are suppressed instead of delivered.
type Subscription struct {
	o        *Orchestrator
	onResult func(Result)

	mu     sync.Mutex
	key    Key
	fn     FetchFunc
	seq    uint64
	active bool
	closed bool
}

// Subscribe registers a consumer. onResult is called with every result
// that is still current when it resolves; it may be nil.
func (o *Orchestrator) Subscribe(onResult func(Result)) *Subscription {
	s := &Subscription{o: o, onResult: onResult}
	o.mu.Lock()
	o.subs[s] = struct{}{}
	o.mu.Unlock()
	return s
}

// Fetch points the subscription at key and fetches it. The returned result
// has Superseded set when another Fetch or Watch was issued on this
// subscription before this one resolved, in which case onResult is not
// called.
func (s *Subscription) Fetch(ctx context.Context, key Key, fn FetchFunc) Result {
	seq, ok := s.point(key, fn)
	if !ok {
		return Result{Superseded: true}
	}
	return s.resolve(ctx, key, fn, seq)
}

// Watch is Fetch without waiting for the result. The subscription points at
// key as soon as Watch returns, so of two Watch calls the later one wins.
func (s *Subscription) Watch(ctx context.Context, key Key, fn FetchFunc) {
	seq, ok := s.point(key, fn)
	if !ok {
		return
	}
	go s.resolve(ctx, key, fn, seq)
}

func (s *Subscription) point(key Key, fn FetchFunc) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.key, s.fn, s.active = key, fn, true
	s.seq++
	return s.seq, true
}

func (s *Subscription) resolve(ctx context.Context, key Key, fn FetchFunc, seq uint64) Result {
	res := s.o.Fetch(ctx, key, fn)

	s.mu.Lock()
	current := !s.closed && s.seq == seq && s.key == key
	s.mu.Unlock()
	if !current {
		res.Superseded = true
		return res
	}
	if s.onResult != nil {
		s.onResult(res)
	}
	return res
}

// Close unregisters the subscription. Pending results are dropped.
func (s *Subscription) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.o.mu.Lock()
	delete(s.o.subs, s)
	s.o.mu.Unlock()
}

func (s *Subscription) currentKey() (Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, s.active && !s.closed
}

func (s *Subscription) refetch() {
	s.mu.Lock()
	key, fn, ok := s.key, s.fn, s.active && !s.closed
	s.mu.Unlock()
	if !ok {
		return
	}
	s.Fetch(context.Background(), key, fn)
}
