// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"crypto/rand"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clp-research/slurdle/lib/clock"
	"github.com/clp-research/slurdle/lib/itemdata"
	"github.com/clp-research/slurdle/messaging"
)

// WordValidator is the dictionary membership test for submitted
// guesses. lib/wordlist provides the production implementation.
type WordValidator interface {
	Contains(word string) bool
}

// Config holds the game parameters shared by all sessions.
type Config struct {
	// RoundTimeout bounds how long the players may work on a single
	// word before the round is forfeited.
	RoundTimeout time.Duration

	// DepartureGrace is how long a departed player may stay away
	// before the game is abandoned.
	DepartureGrace time.Duration

	// ServerURL is the public play URL quoted in the final share
	// message.
	ServerURL string

	// Greeting lines are sent into a room when the bot joins it.
	Greeting []string
}

// PlayerStatus tracks where a player is in the game flow. Players
// start as joined and become ready when a round begins in earnest;
// chat messages only count toward the engagement metric while ready.
type PlayerStatus string

const (
	StatusJoined PlayerStatus = "joined"
	StatusReady  PlayerStatus = "ready"
)

// Player is one of a session's two participants. Owned exclusively by
// the session; mutated only under the session lock.
type Player struct {
	ID           messaging.UserID
	Name         string
	Status       PlayerStatus
	MessageCount int
}

// Session is the state machine for exactly one room. All entry points
// — dispatcher calls and timer callbacks — serialize on mu; different
// rooms' sessions share nothing and run fully concurrently.
type Session struct {
	mu sync.Mutex

	roomID messaging.RoomID

	// players is sorted by user ID. Whenever both players must be
	// addressed deterministically (image targeting, rejoin resync,
	// share messages) this order is used.
	players [2]*Player

	// items is the remaining round sequence; the head is the current
	// round. It only shrinks, and the game ends exactly when it
	// becomes empty.
	items       []itemdata.Item
	totalRounds int

	// guesses holds the in-flight submissions for the current round,
	// at most one per player. Reaching two triggers immediate
	// resolution; every resolution or round advance clears it.
	guesses map[messaging.UserID]string

	// history records the resolved joint guesses of the current
	// round, in submission order, for replay on rejoin.
	history []string

	score  int
	closed bool

	// roundGeneration identifies the round the live round timer
	// belongs to. The timer callback re-checks it under mu, so a
	// timer invalidated by a resolution that won the race is a no-op.
	roundGeneration int
	roundTimer      *clock.Timer

	// Departure timers are keyed per absent player, with the same
	// generation guard against stale firings.
	departureTimers map[messaging.UserID]*clock.Timer
	departureGens   map[messaging.UserID]int

	config  Config
	effects Effector
	words   WordValidator
	clock   clock.Clock
	logger  *slog.Logger

	// onClose evicts this session from its registry. Called at most
	// once, under mu, as the last step of closing.
	onClose func(messaging.RoomID)
}

// newSession builds a session for a fresh room. The caller (Registry)
// has validated the roster and item sequence.
func newSession(roomID messaging.RoomID, users []messaging.User, items []itemdata.Item, config Config,
	effects Effector, words WordValidator, clk clock.Clock, logger *slog.Logger, onClose func(messaging.RoomID)) *Session {

	sorted := make([]messaging.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	session := &Session{
		roomID:          roomID,
		items:           items,
		totalRounds:     len(items),
		guesses:         make(map[messaging.UserID]string, 2),
		departureTimers: make(map[messaging.UserID]*clock.Timer),
		departureGens:   make(map[messaging.UserID]int),
		config:          config,
		effects:         effects,
		words:           words,
		clock:           clk,
		logger:          logger,
		onClose:         onClose,
	}
	for i, user := range sorted {
		session.players[i] = &Player{ID: user.ID, Name: user.Name, Status: StatusJoined}
	}
	return session
}

// RoomID returns the room this session runs in.
func (s *Session) RoomID() messaging.RoomID { return s.roomID }

// Score returns the accumulated room score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// RemainingRounds returns how many round items are left, including the
// current one.
func (s *Session) RemainingRounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Closed reports whether the session has been destroyed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Begin starts the first round: board init, first image, round timer.
// Called once by the dispatcher after the bot's room join is queued.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, player := range s.players {
		player.Status = StatusReady
	}
	s.effects.SendCommand(s.roomID, newInitCommand(), 0)
	s.showItemLocked()
	s.scheduleRoundTimerLocked()
	s.logger.Info("game started",
		"room_id", s.roomID,
		"rounds", s.totalRounds,
		"player_a", s.players[0].ID,
		"player_b", s.players[1].ID,
	)
}

// Greet sends the task greeting and instruction title. Called when the
// bot's own membership in the room becomes effective.
func (s *Session) Greet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, line := range s.config.Greeting {
		s.effects.SendText(s.roomID, colorize(standardColor, line), 0, true)
	}
	s.effects.SendText(s.roomID, colorize(standardColor, msgFirstImage(s.totalRounds)), 0, true)
	s.effects.SetText(s.roomID, elementInstrTitle, taskTitle)
}

// SubmitGuess runs the guess submission protocol for one player. The
// returned error classifies rejections; by the time it returns the
// offending player has already been messaged, and rejected submissions
// change no state.
func (s *Session) SubmitGuess(userID messaging.UserID, word string, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	current, partner, ok := s.rosterLocked(userID)
	if !ok {
		return ErrUnknownPlayer
	}
	secret := s.items[0].Word

	if strings.TrimSpace(word) == "" {
		s.effects.SendText(s.roomID, colorize(warningColor, msgEmptyGuess), current.ID, true)
		return ErrEmptyGuess
	}
	if !s.words.Contains(word) {
		s.effects.SendText(s.roomID, colorize(warningColor, msgInvalidWord), current.ID, true)
		return ErrWordNotInList
	}
	if len(word) != len(secret) {
		s.effects.SendText(s.roomID, colorize(standardColor, msgWrongLength(len(secret))), current.ID, true)
		return ErrWrongLength
	}
	if previous, pending := s.guesses[current.ID]; pending {
		s.effects.SendText(s.roomID, colorize(warningColor, msgDuplicateGuess(previous)), current.ID, true)
		return ErrGuessPending
	}

	s.guesses[current.ID] = word

	if len(s.guesses) == 1 {
		// First of two: the submitter waits, the partner is nudged.
		s.effects.SendText(s.roomID, colorize(standardColor, msgWaitForPartner), current.ID, true)
		s.effects.SendText(s.roomID, colorize(standardColor, msgPartnerBelieves), partner.ID, true)
		return nil
	}

	// Second of two: the pair resolves now, and the submission map is
	// cleared in every branch before anything else can happen.
	otherWord := s.guesses[partner.ID]
	s.guesses = make(map[messaging.UserID]string, 2)

	if word != otherWord {
		s.effects.SendText(s.roomID, colorize(standardColor, msgGuessesDiffer), 0, true)
		return nil
	}

	// The agreed word is the round's official guess.
	s.history = append(s.history, word)
	s.effects.SendCommand(s.roomID, newGuessCommand(word, secret), 0)

	if word == secret || remaining == 1 {
		s.resolveRoundLocked(word == secret, remaining)
	}
	return nil
}

// resolveRoundLocked finishes the current round with a win or loss,
// awards points, and advances.
func (s *Session) resolveRoundLocked(won bool, remaining int) {
	result := "LOST"
	points := 0
	if won {
		result = "WON"
		points = Points(remaining)
	}
	s.score += points
	s.logger.Info("round resolved",
		"room_id", s.roomID,
		"result", result,
		"points", points,
		"score", s.score,
	)
	s.effects.SendText(s.roomID, colorize(standardColor, msgRoundResult(result, points, s.score)), 0, true)
	s.advanceRoundLocked()
}

// advanceRoundLocked consumes the current round item and starts the
// next round, or completes the game when none remain. The live round
// timer is invalidated atomically with clearing the submissions.
func (s *Session) advanceRoundLocked() {
	s.roundGeneration++
	if s.roundTimer != nil {
		s.roundTimer.Stop()
		s.roundTimer = nil
	}
	s.items = s.items[1:]
	s.guesses = make(map[messaging.UserID]string, 2)
	s.history = nil

	if len(s.items) == 0 {
		s.completeLocked()
		return
	}

	s.effects.SendText(s.roomID, colorize(standardColor, msgNextImage(len(s.items))), 0, true)
	for _, player := range s.players {
		player.Status = StatusReady
		player.MessageCount = 0
	}
	s.effects.SendCommand(s.roomID, newInitCommand(), 0)
	s.showItemLocked()
	s.scheduleRoundTimerLocked()
}

// completeLocked ends a fully played game: final messaging,
// confirmation tokens, then the common close path.
func (s *Session) completeLocked() {
	s.effects.SendText(s.roomID, colorize(standardColor, msgGameOver), 0, true)
	for i, player := range s.players {
		partner := s.players[1-i]
		share := msgShareScore(partner.Name, s.score, s.totalRounds, s.config.ServerURL)
		s.effects.SendText(s.roomID, colorize(standardColor, share), player.ID, true)
	}
	s.issueTokensLocked()
	s.closeLocked("completed")
}

// issueTokensLocked hands each player their confirmation token: logged
// for the experimenters, messaged to the player.
func (s *Session) issueTokensLocked() {
	for _, player := range s.players {
		token := confirmationToken()
		s.effects.AppendLog(s.roomID, "confirmation_log", map[string]any{
			"status_txt":         "success",
			"confirmation_token": token,
		}, player.ID)
		s.effects.SendText(s.roomID, colorize(standardColor, msgTokenInstructions), player.ID, true)
		s.effects.SendText(s.roomID, colorize(standardColor, msgToken(token)), player.ID, true)
	}
}

// closeLocked is the single exit path for a live room: closing notice,
// read-only input, membership removal, timer teardown, registry
// eviction. Safe to call once; later entry points see closed and
// return ErrSessionClosed.
func (s *Session) closeLocked(reason string) {
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimersLocked()

	s.effects.SendText(s.roomID, colorize(standardColor, msgRoomClosing), 0, true)
	s.effects.PatchAttribute(s.roomID, elementText, "readonly", "True", 0)
	s.effects.PatchAttribute(s.roomID, elementText, "placeholder", msgReadOnlyPlaceholder, 0)
	for _, player := range s.players {
		s.effects.RemoveUser(player.ID, s.roomID)
	}

	if s.onClose != nil {
		s.onClose(s.roomID)
	}
	s.logger.Info("session closed",
		"room_id", s.roomID,
		"reason", reason,
		"score", s.score,
		"rounds_left", len(s.items),
	)
}

// terminate tears the session down without any room messaging. Used by
// administrative destruction; the registry has already evicted the
// session. Idempotent.
func (s *Session) terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimersLocked()
	s.logger.Info("session terminated", "room_id", s.roomID, "score", s.score)
}

// cancelTimersLocked stops the round timer and every departure timer
// and bumps their generations, so in-flight callbacks that already
// left the clock become no-ops.
func (s *Session) cancelTimersLocked() {
	s.roundGeneration++
	if s.roundTimer != nil {
		s.roundTimer.Stop()
		s.roundTimer = nil
	}
	for userID, timer := range s.departureTimers {
		timer.Stop()
		s.departureGens[userID]++
		delete(s.departureTimers, userID)
	}
}

// HandleLeave starts (or restarts) the departed player's grace timer
// and tells the remaining player to hold on.
func (s *Session) HandleLeave(user messaging.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	departed, partner, ok := s.rosterLocked(user.ID)
	if !ok {
		return ErrUnknownPlayer
	}

	s.effects.SendText(s.roomID, colorize(standardColor, msgPlayerLeft(departed.Name)), partner.ID, true)

	if timer := s.departureTimers[departed.ID]; timer != nil {
		timer.Stop()
	}
	s.departureGens[departed.ID]++
	generation := s.departureGens[departed.ID]
	s.departureTimers[departed.ID] = s.clock.AfterFunc(s.config.DepartureGrace, func() {
		s.fireDeparture(departed.ID, generation)
	})

	s.logger.Info("player left, grace timer running",
		"room_id", s.roomID,
		"user_id", departed.ID,
		"grace", s.config.DepartureGrace,
	)
	return nil
}

// HandleJoin reconciles a rejoining player: cancel their grace timer,
// then rebuild their client view — init signal, current image, full
// guess history in original submission order — and tell the partner.
func (s *Session) HandleJoin(user messaging.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	joined, partner, ok := s.rosterLocked(user.ID)
	if !ok {
		return ErrUnknownPlayer
	}

	if timer := s.departureTimers[joined.ID]; timer != nil {
		timer.Stop()
		delete(s.departureTimers, joined.ID)
	}
	s.departureGens[joined.ID]++

	s.effects.SendCommand(s.roomID, newInitCommand(), joined.ID)
	s.showItemLocked()
	secret := s.items[0].Word
	for _, guess := range s.history {
		s.effects.SendCommand(s.roomID, newGuessCommand(guess, secret), joined.ID)
	}
	s.effects.SendText(s.roomID, colorize(standardColor, msgPlayerJoined(joined.Name)), partner.ID, true)

	s.logger.Info("player rejoined",
		"room_id", s.roomID,
		"user_id", joined.ID,
		"replayed_guesses", len(s.history),
	)
	return nil
}

// CountMessage credits a plain chat message to the sending player's
// engagement counter. Only counted while the player is ready.
func (s *Session) CountMessage(userID messaging.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	sender, _, ok := s.rosterLocked(userID)
	if !ok {
		return ErrUnknownPlayer
	}
	if sender.Status == StatusReady {
		sender.MessageCount++
	}
	return nil
}

// fireRoundTimeout is the round timer callback. A firing whose
// generation no longer matches lost a race against a resolution or
// close and does nothing.
func (s *Session) fireRoundTimeout(generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || generation != s.roundGeneration {
		s.logger.Debug("ignoring stale round timer",
			"room_id", s.roomID,
			"timer_generation", generation,
			"round_generation", s.roundGeneration,
		)
		return
	}
	s.logger.Info("round timed out", "room_id", s.roomID, "rounds_left", len(s.items))
	s.effects.SendText(s.roomID, colorize(warningColor, msgRoundTimeout), 0, true)
	s.advanceRoundLocked()
}

// fireDeparture is the grace timer callback: the player never came
// back, so the game is abandoned. Generation-guarded like the round
// timer.
func (s *Session) fireDeparture(userID messaging.UserID, generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.departureGens[userID] != generation {
		return
	}
	delete(s.departureTimers, userID)
	s.logger.Info("departure grace expired, abandoning game",
		"room_id", s.roomID,
		"user_id", userID,
	)
	s.closeLocked("abandoned")
}

// scheduleRoundTimerLocked arms the round timer for the current round
// generation. At most one round timer is live at any instant.
func (s *Session) scheduleRoundTimerLocked() {
	generation := s.roundGeneration
	s.roundTimer = s.clock.AfterFunc(s.config.RoundTimeout, func() {
		s.fireRoundTimeout(generation)
	})
}

// showItemLocked pushes the current round's image to each player (in
// stable sorted order, so rejoin resync is deterministic) and resets
// the instruction title.
func (s *Session) showItemLocked() {
	if len(s.items) == 0 {
		return
	}
	item := s.items[0]
	for i, player := range s.players {
		s.effects.PatchAttribute(s.roomID, elementImage, "src", item.Images[i], player.ID)
	}
	s.effects.SetText(s.roomID, elementInstrTitle, taskTitle)
}

// rosterLocked resolves an event subject against the fixed two-player
// roster. Returns the matching player, the other player, and whether
// the subject is known at all.
func (s *Session) rosterLocked(userID messaging.UserID) (current, other *Player, ok bool) {
	switch userID {
	case s.players[0].ID:
		return s.players[0], s.players[1], true
	case s.players[1].ID:
		return s.players[1], s.players[0], true
	default:
		return nil, nil, false
	}
}

// tokenAlphabet is the character set for confirmation tokens.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// confirmationToken returns a random 6-character token for the
// experiment's payment flow.
func confirmationToken() string {
	buffer := make([]byte, 6)
	if _, err := rand.Read(buffer); err != nil {
		// crypto/rand failing means the platform is broken beyond
		// this token's concerns; fall back to a fixed marker rather
		// than aborting the game close.
		return "XXXXXX"
	}
	for i, b := range buffer {
		buffer[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buffer)
}
