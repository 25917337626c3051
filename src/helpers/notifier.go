package helpers

import "sync"

// -----------------------------------------------------------------------------

// Notifier fans a change event out to subscribers. The zero value is ready
// to use. Callers must invoke Notify after releasing their own locks.
type Notifier[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function removing it
func (n *Notifier[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription[T]{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, s := range n.subs {
				if s.id == id {
					n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Notify calls every subscriber in registration order
func (n *Notifier[T]) Notify(v T) {
	n.mu.Lock()
	subs := make([]subscription[T], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
