package service

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

type action func(ctx context.Context)

// A mailbox is an unbounded FIFO of actions.
//
// Push never blocks, so callers on a UI loop can't deadlock with a session
// goroutine that is busy rendering into that same loop.
type mailbox struct {
	mu     sync.Mutex
	queue  *deque.Deque[action]
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		queue:  deque.New[action](),
		signal: make(chan struct{}, 1),
	}
}

// push drops a after close.
func (m *mailbox) push(a action) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue.PushBack(a)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (action, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.queue.Len() == 0 {
		return nil, false
	}
	return m.queue.PopFront(), true
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for m.queue.Len() != 0 {
		m.queue.PopFront()
	}
}
