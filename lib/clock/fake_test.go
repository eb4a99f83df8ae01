// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNow(t *testing.T) {
	c := Fake(testEpoch)
	if got := c.Now(); !got.Equal(testEpoch) {
		t.Fatalf("Now() = %v, want %v", got, testEpoch)
	}
	c.Advance(time.Minute)
	if got := c.Now(); !got.Equal(testEpoch.Add(time.Minute)) {
		t.Fatalf("Now() after Advance = %v, want %v", got, testEpoch.Add(time.Minute))
	}
}

func TestFakeAfterFunc(t *testing.T) {
	t.Run("fires at deadline", func(t *testing.T) {
		c := Fake(testEpoch)
		var fired atomic.Bool
		c.AfterFunc(5*time.Minute, func() { fired.Store(true) })

		c.Advance(4 * time.Minute)
		if fired.Load() {
			t.Fatal("timer fired before deadline")
		}
		c.Advance(time.Minute)
		if !fired.Load() {
			t.Fatal("timer did not fire at deadline")
		}
	})

	t.Run("stop prevents firing", func(t *testing.T) {
		c := Fake(testEpoch)
		var fired atomic.Bool
		timer := c.AfterFunc(time.Minute, func() { fired.Store(true) })

		if !timer.Stop() {
			t.Fatal("Stop returned false for a pending timer")
		}
		c.Advance(2 * time.Minute)
		if fired.Load() {
			t.Fatal("stopped timer fired")
		}
		if timer.Stop() {
			t.Fatal("second Stop returned true")
		}
	})

	t.Run("stop after fire returns false", func(t *testing.T) {
		c := Fake(testEpoch)
		timer := c.AfterFunc(time.Minute, func() {})
		c.Advance(time.Minute)
		if timer.Stop() {
			t.Fatal("Stop returned true for an already-fired timer")
		}
	})

	t.Run("zero duration fires synchronously", func(t *testing.T) {
		c := Fake(testEpoch)
		fired := false
		c.AfterFunc(0, func() { fired = true })
		if !fired {
			t.Fatal("zero-duration AfterFunc did not fire synchronously")
		}
	})

	t.Run("fires in deadline order", func(t *testing.T) {
		c := Fake(testEpoch)
		var order []int
		c.AfterFunc(3*time.Minute, func() { order = append(order, 3) })
		c.AfterFunc(time.Minute, func() { order = append(order, 1) })
		c.AfterFunc(2*time.Minute, func() { order = append(order, 2) })

		c.Advance(5 * time.Minute)
		if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
			t.Fatalf("fire order = %v, want [1 2 3]", order)
		}
	})
}

func TestFakeAfter(t *testing.T) {
	c := Fake(testEpoch)
	ch := c.After(time.Minute)
	select {
	case <-ch:
		t.Fatal("channel received before Advance")
	default:
	}
	c.Advance(time.Minute)
	select {
	case firedAt := <-ch:
		if !firedAt.Equal(testEpoch.Add(time.Minute)) {
			t.Fatalf("fire time = %v, want %v", firedAt, testEpoch.Add(time.Minute))
		}
	default:
		t.Fatal("channel did not receive after Advance")
	}
}

func TestFakePendingCount(t *testing.T) {
	c := Fake(testEpoch)
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount = %d, want 0", got)
	}
	timer := c.AfterFunc(time.Minute, func() {})
	c.AfterFunc(2*time.Minute, func() {})
	if got := c.PendingCount(); got != 2 {
		t.Fatalf("PendingCount = %d, want 2", got)
	}
	timer.Stop()
	if got := c.PendingCount(); got != 1 {
		t.Fatalf("PendingCount after Stop = %d, want 1", got)
	}
	c.Advance(2 * time.Minute)
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount after Advance = %d, want 0", got)
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(testEpoch)
	done := make(chan struct{})
	go func() {
		c.Sleep(time.Minute)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep goroutine did not wake after Advance")
	}
}
