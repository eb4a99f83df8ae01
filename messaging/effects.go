// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"log/slog"
)

// Effects is an ordered, asynchronous delivery queue over the REST
// client and the event stream. Game sessions call its methods while
// holding their own locks, so every method enqueues and returns
// immediately; a single worker goroutine (Run) delivers in FIFO order.
//
// Delivery is best-effort. A failed effect is logged and dropped —
// presentation state may transiently diverge from game state, but game
// state never rolls back because a send failed. If the queue is full
// the effect is dropped with an error log rather than blocking the
// caller.
type Effects struct {
	api    *Client
	stream *Stream
	logger *slog.Logger
	queue  chan effect
}

// effect is one queued delivery: a description for failure logs plus
// the delivery function.
type effect struct {
	name    string
	roomID  RoomID
	deliver func(ctx context.Context) error
}

// effectQueueSize bounds the delivery backlog. Two players per room
// generate at most a handful of effects per event, so a sustained
// backlog this deep means the platform is unreachable and dropping is
// the right failure mode.
const effectQueueSize = 1024

// NewEffects creates the effect queue. Call Run to start delivery.
func NewEffects(api *Client, stream *Stream, logger *slog.Logger) *Effects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Effects{
		api:    api,
		stream: stream,
		logger: logger,
		queue:  make(chan effect, effectQueueSize),
	}
}

// Run delivers queued effects until ctx is cancelled. Blocks; run it
// in its own goroutine.
func (e *Effects) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case queued := <-e.queue:
			if err := queued.deliver(ctx); err != nil {
				e.logger.Error("effect delivery failed",
					"effect", queued.name,
					"room_id", queued.roomID,
					"error", err,
				)
			}
		}
	}
}

// enqueue appends an effect, dropping it with an error log when the
// queue is full. Callers are never blocked.
func (e *Effects) enqueue(name string, roomID RoomID, deliver func(ctx context.Context) error) {
	select {
	case e.queue <- effect{name: name, roomID: roomID, deliver: deliver}:
	default:
		e.logger.Error("effect queue full, dropping effect",
			"effect", name,
			"room_id", roomID,
		)
	}
}

// SendText queues a chat message. Zero receiver broadcasts.
func (e *Effects) SendText(roomID RoomID, message string, receiver UserID, html bool) {
	e.enqueue("send_text", roomID, func(ctx context.Context) error {
		return e.stream.EmitText(roomID, message, receiver, html)
	})
}

// SendCommand queues a structured command emission. Zero receiver
// broadcasts.
func (e *Effects) SendCommand(roomID RoomID, command any, receiver UserID) {
	e.enqueue("send_command", roomID, func(ctx context.Context) error {
		return e.stream.EmitCommand(roomID, command, receiver)
	})
}

// PatchAttribute queues a room layout attribute update.
func (e *Effects) PatchAttribute(roomID RoomID, elementID, attribute, value string, receiver UserID) {
	e.enqueue("patch_attribute", roomID, func(ctx context.Context) error {
		return e.api.PatchAttribute(ctx, roomID, elementID, attribute, value, receiver)
	})
}

// SetText queues a room layout text replacement.
func (e *Effects) SetText(roomID RoomID, elementID, text string) {
	e.enqueue("set_text", roomID, func(ctx context.Context) error {
		return e.api.SetText(ctx, roomID, elementID, text)
	})
}

// JoinRoom queues adding a user to a room.
func (e *Effects) JoinRoom(userID UserID, roomID RoomID) {
	e.enqueue("join_room", roomID, func(ctx context.Context) error {
		return e.api.JoinRoom(ctx, userID, roomID)
	})
}

// RemoveUser queues removing a user's room membership.
func (e *Effects) RemoveUser(userID UserID, roomID RoomID) {
	e.enqueue("remove_user", roomID, func(ctx context.Context) error {
		return e.api.RemoveUser(ctx, userID, roomID)
	})
}

// AppendLog queues a persisted log entry.
func (e *Effects) AppendLog(roomID RoomID, event string, data map[string]any, receiver UserID) {
	e.enqueue("append_log", roomID, func(ctx context.Context) error {
		return e.api.AppendLog(ctx, roomID, event, data, receiver)
	})
}
