package loop_test

import (
	"context"
	"testing"
	"time"

	"gitlab.com/visitkit/engine/loop"
)

func TestDrainRunsInOrder(t *testing.T) {
	l := loop.New()
	order := make([]int, 0)
	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 3) })
	})
	l.Post(func() { order = append(order, 2) })

	if ran := l.Drain(); ran != 3 {
		t.Fatalf("expected 3 funcs to run got %d\n", ran)
	}
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("expected in order execution got %v\n", order)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty queue\n")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- l.Run(ctx)
	}()

	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second * 5):
		t.Fatalf("posted func never ran\n")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context canceled got %v\n", err)
		}
	case <-time.After(time.Second * 5):
		t.Fatalf("run did not stop\n")
	}
}
