package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	first, err := l.Obtain(ctx, "bill-token:a", time.Second, 0)
	if err != nil {
		t.Fatalf("first obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, "bill-token:a", time.Second, 0); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
	// other keys are independent
	other, err := l.Obtain(ctx, "bill-token:b", time.Second, 0)
	if err != nil {
		t.Fatalf("other key: %v", err)
	}
	_ = other.Release(ctx)

	_ = first.Release(ctx)
	again, err := l.Obtain(ctx, "bill-token:a", time.Second, 0)
	if err != nil {
		t.Fatalf("obtain after release: %v", err)
	}
	_ = again.Release(ctx)
}

func TestLocalLockerWaits(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	held, err := l.Obtain(ctx, "k", time.Second, 0)
	if err != nil {
		t.Fatalf("obtain: %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = held.Release(ctx)
	}()

	lk, err := l.Obtain(ctx, "k", time.Second, time.Second)
	if err != nil {
		t.Fatalf("expected waiter to obtain lock, got %v", err)
	}
	_ = lk.Release(ctx)
}

func TestLocalLockerSerializes(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lk, err := l.Obtain(ctx, "k", time.Second, 5*time.Second)
			if err != nil {
				t.Errorf("obtain: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			_ = lk.Release(ctx)
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
}

func TestLocalLockerReleaseTwice(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	lk, _ := l.Obtain(ctx, "k", time.Second, 0)
	_ = lk.Release(ctx)
	_ = lk.Release(ctx)

	lk2, err := l.Obtain(ctx, "k", time.Second, 0)
	if err != nil {
		t.Fatalf("obtain after double release: %v", err)
	}
	_ = lk2.Release(ctx)
}
