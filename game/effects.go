// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import "github.com/clp-research/slurdle/messaging"

// Effector is the session's outbound surface: everything a session
// does to the outside world goes through it. Implementations must not
// block — sessions call these methods while holding their lock — and
// must deliver effects for one room in call order. messaging.Effects
// is the production implementation; tests substitute a recorder.
//
// A zero receiver broadcasts to the whole room.
type Effector interface {
	SendText(roomID messaging.RoomID, message string, receiver messaging.UserID, html bool)
	SendCommand(roomID messaging.RoomID, command any, receiver messaging.UserID)
	PatchAttribute(roomID messaging.RoomID, elementID, attribute, value string, receiver messaging.UserID)
	SetText(roomID messaging.RoomID, elementID, text string)
	JoinRoom(userID messaging.UserID, roomID messaging.RoomID)
	RemoveUser(userID messaging.UserID, roomID messaging.RoomID)
	AppendLog(roomID messaging.RoomID, event string, data map[string]any, receiver messaging.UserID)
}

// Compile-time check: the messaging effect queue satisfies Effector.
var _ Effector = (*messaging.Effects)(nil)

// Room layout element IDs the session manipulates.
const (
	elementImage     = "current-image"
	elementText      = "text"
	elementInstrTitle = "instr_title"
)

// initCommand tells the client-side task layout to (re)build a fresh
// game board.
type initCommand struct {
	Command string `json:"command"`
}

// newInitCommand returns the board reset command.
func newInitCommand() initCommand {
	return initCommand{Command: "wordle_init"}
}

// guessCommand carries a resolved joint guess to the client layout,
// which renders the letter feedback against the true secret word.
type guessCommand struct {
	Command     string `json:"command"`
	Guess       string `json:"guess"`
	CorrectWord string `json:"correct_word"`
}

// newGuessCommand returns the reveal command for one resolved guess.
func newGuessCommand(guess, secret string) guessCommand {
	return guessCommand{Command: "wordle_guess", Guess: guess, CorrectWord: secret}
}
