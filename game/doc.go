// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package game implements the room session controller: the per-room
// state machine that runs the two-player collaborative wordle game.
//
// A [Session] owns everything about one room — the two players, the
// remaining round items, the in-flight guess pair, the guess history,
// the accumulated score, and the round/departure timers. The
// [Registry] owns the room→session mapping and is the only shared
// state between rooms; sessions for different rooms never interact.
// The [Dispatcher] classifies inbound platform events and routes them
// to the right session, silently dropping events for rooms without an
// active game (the normal situation for the platform's lobby).
//
// # Concurrency
//
// Three kinds of entry points race against a session: platform events
// delivered by the dispatcher, the round-timeout timer, and per-player
// departure timers. A per-session mutex serializes all of them; timer
// callbacks additionally carry a generation number that is re-checked
// under the lock before acting, so a timer that lost the race against
// a resolution (or against session destruction) is a no-op rather
// than a corruption.
//
// Outgoing effects — messages, attribute patches, membership changes —
// are fire-and-forget through the [Effector]: sessions enqueue them
// while holding their lock and never block on delivery. A failed
// delivery is the effect layer's problem; game state never rolls back
// because a send failed.
package game
