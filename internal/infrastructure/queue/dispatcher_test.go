package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startDispatcher(t *testing.T, workers int) *Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d := NewDispatcher(workers, zerolog.Nop())
	d.Start(ctx)
	return d
}

func TestDispatcher_Do_ReturnsResult(t *testing.T) {
	d := startDispatcher(t, 2)
	want := errors.New("boom")

	if err := d.Do(context.Background(), "u1", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := d.Do(context.Background(), "u1", func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestDispatcher_Do_SerializesSameKey(t *testing.T) {
	d := startDispatcher(t, 4)

	var (
		wg      sync.WaitGroup
		running int32
		overlap int32
		total   int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Do(context.Background(), "same-user", func(context.Context) error {
				if atomic.AddInt32(&running, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				atomic.AddInt32(&total, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	if overlap != 0 {
		t.Error("jobs with the same key ran concurrently")
	}
	if total != 50 {
		t.Errorf("expected 50 jobs, got %d", total)
	}
}

func TestDispatcher_ShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())

	for _, key := range []string{"a", "user-42", "3f1c"} {
		first := d.shardIndex(key)
		if first < 0 || first >= 8 {
			t.Fatalf("index out of range: %d", first)
		}
		for i := 0; i < 5; i++ {
			if d.shardIndex(key) != first {
				t.Fatalf("shard index for %q changed", key)
			}
		}
	}
}

func TestDispatcher_Do_CancelledContext(t *testing.T) {
	d := startDispatcher(t, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = d.Do(context.Background(), "k", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	defer close(release)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Do(ctx, "k", func(context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDispatcher_Do_AfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(ctx)
	cancel()

	deadline := time.After(time.Second)
	for {
		err := d.Do(context.Background(), "k", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		})
		if errors.Is(err, ErrStopped) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected ErrStopped, last error %v", err)
		default:
		}
	}
}

func TestDispatcher_Do_RecoversPanic(t *testing.T) {
	d := startDispatcher(t, 1)

	err := d.Do(context.Background(), "k", func(context.Context) error { panic("bad") })
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if err := d.Do(context.Background(), "k", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("worker must survive a panic, got %v", err)
	}
}
