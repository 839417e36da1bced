package loop

import (
	"context"
	"sync"
)

// Loop runs posted funcs one at a time. Engines post every callback they
// deliver so visits only ever see one event at a time.
type Loop struct {
	lock  sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New event loop
func New() *Loop {
	return &Loop{
		queue: make([]func(), 0),
		wake:  make(chan struct{}, 1),
	}
}

// Post fn to run after everything already queued. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.lock.Lock()
	l.queue = append(l.queue, fn)
	l.lock.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len of the queue
func (l *Loop) Len() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.queue)
}

func (l *Loop) next() (func(), bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Drain runs queued funcs, including ones they post, until the queue is empty.
// Returns how many ran.
func (l *Loop) Drain() int {
	ran := 0
	for {
		fn, ok := l.next()
		if !ok {
			return ran
		}
		fn()
		ran++
	}
}

// Run drains the loop whenever something is posted until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
