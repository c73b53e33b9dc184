// Package observe fans state updates out to subscribed listeners.
package observe

import (
	"slices"
	"sync"
)

// Hub holds the listeners of one kind of update. The zero value is ready to use.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (h *Hub[T]) Subscribe(fn func(T)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish calls every listener with v in subscription order. Listeners run on
// the caller's goroutine, outside the hub's lock, so they may subscribe or
// cancel.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the number of active listeners.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
