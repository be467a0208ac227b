// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/bus/bus.go
// Summary: Typed message bus between viewers. Messages queue per concrete
// type and are drained once per UI tick by their consumers.

package bus

import (
	"reflect"
	"sync"
)

// Bus holds one FIFO per message type.
type Bus struct {
	mu     sync.Mutex
	queues map[reflect.Type][]any
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{queues: make(map[reflect.Type][]any)}
}

// Push queues msg under its dynamic type. Nil messages are dropped.
func (b *Bus) Push(msg any) {
	if msg == nil {
		return
	}
	t := reflect.TypeOf(msg)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[t] = append(b.queues[t], msg)
}

// Pending reports how many messages of any type are queued.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, q := range b.queues {
		n += len(q)
	}
	return n
}

// Drain removes and returns every queued message of type T in push order.
func Drain[T any](b *Bus) []T {
	t := reflect.TypeFor[T]()
	b.mu.Lock()
	q := b.queues[t]
	delete(b.queues, t)
	b.mu.Unlock()
	if len(q) == 0 {
		return nil
	}
	out := make([]T, len(q))
	for i, m := range q {
		out[i] = m.(T)
	}
	return out
}
