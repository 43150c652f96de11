package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, maxBackoff, maxBackoff}
	for attempt, w := range want {
		if got := exponentialBackoff(attempt); got != w {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, w)
		}
	}
	if got := exponentialBackoff(40); got != maxBackoff {
		t.Errorf("exponentialBackoff(40) = %v, want cap", got)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("write: broken pipe"), true},
		{fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{errors.New("Exception (504) Reason: \"channel/connection is not open\""), true},
		{errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	c := &Client{}
	if c.isCircuitOpen() {
		t.Fatal("new client should start closed")
	}

	for i := 1; i < maxFailures; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures", maxFailures-1)
	}
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatalf("circuit still closed after %d failures", maxFailures)
	}

	// Once the open timeout has elapsed a single probe is allowed.
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() {
		t.Fatal("circuit should be half-open after the timeout")
	}
	if s := atomic.LoadInt32(&c.state); s != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", s)
	}

	c.recordFailure()
	if s := atomic.LoadInt32(&c.state); s != StateOpen {
		t.Fatalf("failed probe should reopen, state = %d", s)
	}

	c.recordSuccess()
	if c.isCircuitOpen() || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset the count")
	}
}

func TestPublishEntrySyncShortCircuits(t *testing.T) {
	msg := NewEntrySyncMessage(7, 1, "u1", "2025-06-30")

	t.Run("open circuit", func(t *testing.T) {
		c := &Client{state: StateOpen, lastFailure: time.Now()}
		err := c.PublishEntrySync(context.Background(), msg)
		if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := (&Client{}).PublishEntrySync(ctx, msg); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestEntrySyncMessageJSON(t *testing.T) {
	msg := NewEntrySyncMessage(12345, 2, "user-1", "2025-06-30")
	if time.Since(msg.Timestamp) > time.Second {
		t.Errorf("timestamp %v is not recent", msg.Timestamp)
	}
	msg.Timestamp = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	b, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, field := range []string{`"id":12345`, `"version":2`, `"user_id":"user-1"`, `"day":"2025-06-30"`} {
		if !strings.Contains(string(b), field) {
			t.Errorf("ToJSON() = %s, missing %s", b, field)
		}
	}

	back, err := EntrySyncMessageFromJSON(b)
	if err != nil {
		t.Fatalf("EntrySyncMessageFromJSON: %v", err)
	}
	if back.ID != msg.ID || back.Version != msg.Version || back.UserID != msg.UserID ||
		back.Day != msg.Day || !back.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("round trip = %+v, want %+v", back, msg)
	}

	if _, err := EntrySyncMessageFromJSON([]byte(`{"id":"seven"}`)); err == nil {
		t.Fatal("expected error for a string id")
	}
}
