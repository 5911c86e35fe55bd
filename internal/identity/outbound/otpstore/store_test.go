package otpstore

import (
	"sync"
	"testing"
	"time"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*Memory, *stubClock) {
	clk := &stubClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	return NewMemory(Config{TTL: time.Hour, MaxAttempts: 3, Clock: clk}), clk
}

func TestPutGetRoundtrip(t *testing.T) {
	// Arrange
	store, clk := newTestStore()
	defer store.Close()

	// Act
	store.Put("a@x.com", "123456")
	rec, ok := store.Get("a@x.com")

	// Assert
	if !ok {
		t.Fatalf("expected record after put")
	}
	if rec.Code != "123456" {
		t.Fatalf("expected code %q, got %q", "123456", rec.Code)
	}
	if rec.Attempts != 0 {
		t.Fatalf("expected zero attempts, got %d", rec.Attempts)
	}
	if !rec.IssuedAt.Equal(clk.Now()) {
		t.Fatalf("expected issuedAt %v, got %v", clk.Now(), rec.IssuedAt)
	}
}

func TestGetAbsent(t *testing.T) {
	store, _ := newTestStore()
	defer store.Close()

	if _, ok := store.Get("nobody@x.com"); ok {
		t.Fatalf("expected absent record")
	}
}

func TestPutSupersedesAndResetsAttempts(t *testing.T) {
	// Arrange
	store, _ := newTestStore()
	defer store.Close()
	store.Put("a@x.com", "111111")
	store.RecordFailedAttempt("a@x.com")

	// Act
	store.Put("a@x.com", "222222")

	// Assert
	rec, ok := store.Get("a@x.com")
	if !ok {
		t.Fatalf("expected record after re-issue")
	}
	if rec.Code != "222222" {
		t.Fatalf("expected superseding code, got %q", rec.Code)
	}
	if rec.Attempts != 0 {
		t.Fatalf("expected attempts reset to zero, got %d", rec.Attempts)
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one live record, got %d", store.Len())
	}
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore()
	defer store.Close()
	store.Put("a@x.com", "123456")

	store.Remove("a@x.com")
	store.Remove("a@x.com") // no-op when absent

	if _, ok := store.Get("a@x.com"); ok {
		t.Fatalf("expected record removed")
	}
}

func TestRecordFailedAttemptPurgesAtCeiling(t *testing.T) {
	// Arrange
	store, _ := newTestStore()
	defer store.Close()
	store.Put("a@x.com", "123456")

	// Act & Assert
	for want := 1; want < 3; want++ {
		count, ok := store.RecordFailedAttempt("a@x.com")
		if !ok || count != want {
			t.Fatalf("attempt %d: got count=%d ok=%v", want, count, ok)
		}
		if _, ok := store.Get("a@x.com"); !ok {
			t.Fatalf("record should survive attempt %d", want)
		}
	}

	count, ok := store.RecordFailedAttempt("a@x.com")
	if !ok || count != 3 {
		t.Fatalf("final attempt: got count=%d ok=%v", count, ok)
	}
	if _, ok := store.Get("a@x.com"); ok {
		t.Fatalf("record should be purged at the attempt ceiling")
	}

	if _, ok := store.RecordFailedAttempt("a@x.com"); ok {
		t.Fatalf("expected no-op on absent record")
	}
}

func TestRecordFailedAttemptConcurrentCeiling(t *testing.T) {
	// Arrange
	store, _ := newTestStore()
	defer store.Close()
	store.Put("a@x.com", "123456")
	store.RecordFailedAttempt("a@x.com")
	store.RecordFailedAttempt("a@x.com") // counter now at maxAttempts-1

	// Act
	results := make(chan int, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, ok := store.RecordFailedAttempt("a@x.com")
			if !ok {
				count = -1
			}
			results <- count
		}()
	}
	wg.Wait()
	close(results)

	// Assert
	atCeiling := 0
	for count := range results {
		if count > 3 {
			t.Fatalf("counter passed the ceiling: %d", count)
		}
		if count == 3 {
			atCeiling++
		}
	}
	if atCeiling != 1 {
		t.Fatalf("expected exactly one caller to hit the ceiling, got %d", atCeiling)
	}
	if _, ok := store.Get("a@x.com"); ok {
		t.Fatalf("record should be purged exactly once")
	}
}

func TestExpiryTimerRemovesRecord(t *testing.T) {
	// Arrange
	store := NewMemory(Config{TTL: 20 * time.Millisecond, MaxAttempts: 3})
	defer store.Close()

	// Act
	store.Put("a@x.com", "123456")
	time.Sleep(80 * time.Millisecond)

	// Assert
	if _, ok := store.Get("a@x.com"); ok {
		t.Fatalf("expected record evicted by expiry timer")
	}
}

func TestStaleTimerCannotDeleteNewerCode(t *testing.T) {
	// Arrange
	store := NewMemory(Config{TTL: 40 * time.Millisecond, MaxAttempts: 3})
	defer store.Close()
	store.Put("a@x.com", "111111")

	// Act: re-issue just before the first timer would have fired.
	time.Sleep(20 * time.Millisecond)
	store.Put("a@x.com", "222222")
	time.Sleep(30 * time.Millisecond)

	// Assert
	rec, ok := store.Get("a@x.com")
	if !ok {
		t.Fatalf("newer code was deleted by a stale timer")
	}
	if rec.Code != "222222" {
		t.Fatalf("expected newer code, got %q", rec.Code)
	}
}

func TestSnapshotCopies(t *testing.T) {
	store, _ := newTestStore()
	defer store.Close()
	store.Put("a@x.com", "111111")
	store.Put("b@x.com", "222222")

	snap := store.Snapshot()

	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}
	snap[0].Code = "mutated"
	rec, _ := store.Get(snap[0].Identity)
	if rec.Code == "mutated" {
		t.Fatalf("snapshot must not alias store state")
	}
}

func TestCloseDiscardsRecords(t *testing.T) {
	store, _ := newTestStore()
	store.Put("a@x.com", "123456")

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if store.Len() != 0 {
		t.Fatalf("expected no records after close")
	}
	store.Put("b@x.com", "654321")
	if store.Len() != 0 {
		t.Fatalf("expected put to be a no-op after close")
	}
}
