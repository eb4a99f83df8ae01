// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/clp-research/slurdle/lib/clock"
	"github.com/clp-research/slurdle/lib/itemdata"
	"github.com/clp-research/slurdle/messaging"
)

// Registry owns the room-to-session map. Its lock covers only the map
// itself; it is never held while a session's own lock is taken, so
// sessions closing themselves can evict without deadlocking.
type Registry struct {
	config  Config
	effects Effector
	words   WordValidator
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[messaging.RoomID]*Session
}

// NewRegistry builds an empty registry. The given dependencies are
// shared by every session it creates.
func NewRegistry(config Config, effects Effector, words WordValidator, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		config:   config,
		effects:  effects,
		words:    words,
		clock:    clk,
		logger:   logger,
		sessions: make(map[messaging.RoomID]*Session),
	}
}

// Create validates the roster and item sequence, builds the session,
// and registers it. The session is returned not yet begun; the caller
// sequences the bot's room join before Begin.
func (r *Registry) Create(roomID messaging.RoomID, users []messaging.User, items []itemdata.Item) (*Session, error) {
	if len(users) != 2 {
		return nil, fmt.Errorf("room %s has %d users: %w", roomID, len(users), ErrRoster)
	}
	if users[0].ID == users[1].ID {
		return nil, fmt.Errorf("room %s lists user %s twice: %w", roomID, users[0].ID, ErrRoster)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNoItems)
	}

	session := newSession(roomID, users, items, r.config, r.effects, r.words, r.clock, r.logger, r.evict)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[roomID]; exists {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrDuplicateSession)
	}
	r.sessions[roomID] = session
	return session, nil
}

// Get returns the live session for a room, or ErrNoSession.
func (r *Registry) Get(roomID messaging.RoomID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNoSession)
	}
	return session, nil
}

// Destroy administratively removes a room's session, cancelling its
// timers without any room messaging. Destroying an absent room is a
// no-op.
func (r *Registry) Destroy(roomID messaging.RoomID) {
	r.mu.Lock()
	session, ok := r.sessions[roomID]
	delete(r.sessions, roomID)
	r.mu.Unlock()
	if ok {
		session.terminate()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evict drops a session that closed itself. The session is already
// finished; only the map entry remains.
func (r *Registry) evict(roomID messaging.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, roomID)
}
