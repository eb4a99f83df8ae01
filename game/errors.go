// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import "errors"

// Registry lifecycle errors.
var (
	// ErrDuplicateSession is returned by Registry.Create when a
	// session already exists for the room. A room must be destroyed
	// before it can host a new game.
	ErrDuplicateSession = errors.New("game: session already exists for room")

	// ErrNoSession is returned by Registry.Get for rooms without an
	// active game. The dispatcher treats it as "not my room", never
	// as a failure.
	ErrNoSession = errors.New("game: no session for room")

	// ErrRoster is returned by Registry.Create when the player list
	// does not hold exactly two players.
	ErrRoster = errors.New("game: a session needs exactly two players")

	// ErrNoItems is returned by Registry.Create when the item
	// sequence is empty. A game with zero rounds cannot start.
	ErrNoItems = errors.New("game: a session needs at least one round item")
)

// Guess rejection errors. All are user input errors: the offending
// player has already been told what was wrong by the time SubmitGuess
// returns, and no session state changed.
var (
	// ErrEmptyGuess: the submitted word was blank.
	ErrEmptyGuess = errors.New("game: empty guess")

	// ErrWordNotInList: the submitted word is not in the dictionary.
	ErrWordNotInList = errors.New("game: word not in word list")

	// ErrWrongLength: the submitted word's length differs from the
	// secret word's.
	ErrWrongLength = errors.New("game: guess length does not match secret word")

	// ErrGuessPending: the player already has a submission pending
	// for the current round.
	ErrGuessPending = errors.New("game: player already has a pending guess")
)

// ErrSessionClosed is returned by session operations that arrive after
// the session was destroyed. Late events and in-flight timers hit this
// path; it is never an invariant violation.
var ErrSessionClosed = errors.New("game: session is closed")

// ErrUnknownPlayer is returned when an event's subject is not one of
// the session's two players. Such events are not meaningful for the
// game and are ignored.
var ErrUnknownPlayer = errors.New("game: user is not a player of this session")
