// Package events carries typed notifications between client components.
package events

import (
	"sync"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// SessionChanged is published whenever the authentication state changes.
type SessionChanged struct {
	User       *domain.SessionUser
	IsLoggedIn bool
}

// Bus is a synchronous publish/subscribe channel for one event type.
// Handlers run on the publisher's goroutine, in subscription order.
type Bus[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
	order    []int
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{handlers: make(map[int]func(T))}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.handlers[id]; !ok {
			return
		}
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers evt to every current subscriber.
func (b *Bus[T]) Publish(evt T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.handlers[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
