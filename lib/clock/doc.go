// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now,
// time.After, time.AfterFunc, or time.Sleep directly. In production,
// Real() provides the standard library behavior. In tests, Fake()
// provides a deterministic clock that advances only when Advance is
// called.
//
// The game controller schedules exactly two kinds of timers through this
// package: the per-room round timeout and the per-player departure grace
// period. Both are one-shot AfterFunc timers that the owning session
// cancels when the condition they guard resolves first.
//
// # Wiring Pattern
//
// Add a Clock field to structs that schedule timers:
//
//	type Session struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	s := &Session{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	s := &Session{clock: c}
//	c.Advance(15 * time.Minute) // fire the round timer deterministically
//
// FakeClock fires AfterFunc callbacks synchronously during Advance, in
// deadline order. WaitForTimers blocks until a given number of timers
// are registered, eliminating the race between a goroutine scheduling a
// timer and the test advancing time.
package clock
