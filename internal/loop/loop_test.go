package loop

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(16, slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, cancel
}

func TestDo_RunsInOrder(t *testing.T) {
	l, _ := startLoop(t)
	var seen []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { seen = append(seen, i) })
	}
	var got []int
	if err := l.Do(context.Background(), func() error {
		got = append(got, seen...)
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %v", got)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("order = %v", got)
			break
		}
	}
}

func TestDo_ReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
}

func TestDo_RecoversPanic(t *testing.T) {
	l, _ := startLoop(t)
	err := l.Do(context.Background(), func() error { panic("oops") })
	if err == nil {
		t.Fatal("expected error from panicking task")
	}
	// Loop survives.
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("loop dead after panic: %v", err)
	}
}

func TestConcurrentDoIsSerialized(t *testing.T) {
	l, _ := startLoop(t)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	var got int
	_ = l.Do(context.Background(), func() error { got = counter; return nil })
	if got != 50 {
		t.Errorf("counter = %d, want 50", got)
	}
}

func TestAfterFunc_PostsToLoop(t *testing.T) {
	l, _ := startLoop(t)
	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer task never ran")
	}
}

func TestAfterFunc_Stop(t *testing.T) {
	l, _ := startLoop(t)
	fired := make(chan struct{}, 1)
	tm := l.AfterFunc(30*time.Millisecond, func() { fired <- struct{}{} })
	if !tm.Stop() {
		t.Fatal("Stop should report true before firing")
	}
	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestStoppedLoopRejectsWork(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !l.Post(func() {}) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("err = %v, want ErrStopped", err)
	}
}

func TestPostFromTaskBeyondCapacity(t *testing.T) {
	l, _ := startLoop(t)
	const n = 16*4 + 1
	ran := 0
	err := l.Do(context.Background(), func() error {
		for i := 0; i < n; i++ {
			if !l.Post(func() { ran++ }) {
				return errors.New("post rejected")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	var got int
	if err := l.Do(context.Background(), func() error { got = ran; return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != n {
		t.Errorf("ran = %d, want %d", got, n)
	}
}

func TestPostDoesNotBlockWhileTaskRuns(t *testing.T) {
	l, _ := startLoop(t)
	release := make(chan struct{})
	l.Post(func() { <-release })

	posted := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			l.Post(func() {})
		}
		close(posted)
	}()
	select {
	case <-posted:
	case <-time.After(time.Second):
		t.Fatal("Post blocked behind a running task")
	}
	close(release)
}

func TestRunDrainsQueuedTasksOnStop(t *testing.T) {
	l := New(4, slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	ran := 0
	for i := 0; i < 10; i++ {
		l.Post(func() { ran++ })
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if ran != 10 {
		t.Errorf("ran = %d, want 10", ran)
	}
	if l.Post(func() {}) {
		t.Error("post accepted after stop")
	}
}
