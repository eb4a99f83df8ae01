// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/clp-research/slurdle/lib/itemdata"
	"github.com/clp-research/slurdle/messaging"
)

// ItemSupplier provides round items for newly created rooms.
// *itemdata.Source is the production implementation.
type ItemSupplier interface {
	Draw(n int) ([]itemdata.Item, error)
}

// TaskLookup checks which task a user is assigned to. *messaging.Client
// is the production implementation; nil disables the check.
type TaskLookup interface {
	UserTask(ctx context.Context, userID messaging.UserID) (messaging.TaskID, bool, error)
}

// DispatcherConfig identifies the bot and its task in the platform.
type DispatcherConfig struct {
	// BotID is the bot's own user ID; its own messages and status
	// changes are never dispatched.
	BotID messaging.UserID

	// TaskID is the task this bot serves. Rooms created for other
	// tasks are ignored.
	TaskID messaging.TaskID

	// WaitingRoom is the lobby users sit in before being matched.
	// Status traffic there is noise.
	WaitingRoom messaging.RoomID

	// Rounds is how many items each new room is dealt.
	Rounds int
}

// Dispatcher routes platform events to the session that owns the room.
// It is the only component that touches the registry; sessions never
// see raw events.
type Dispatcher struct {
	config   DispatcherConfig
	registry *Registry
	supplier ItemSupplier
	effects  Effector
	tasks    TaskLookup
	logger   *slog.Logger
}

// NewDispatcher wires the event router. tasks may be nil, in which
// case status changes are attributed to session players by roster
// alone.
func NewDispatcher(config DispatcherConfig, registry *Registry, supplier ItemSupplier, effects Effector, tasks TaskLookup, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		config:   config,
		registry: registry,
		supplier: supplier,
		effects:  effects,
		tasks:    tasks,
		logger:   logger,
	}
}

// Run consumes the event stream until the context is cancelled or the
// stream closes. A closed stream is a normal shutdown.
func (d *Dispatcher) Run(ctx context.Context, events <-chan messaging.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			d.Dispatch(ctx, event)
		}
	}
}

// Dispatch routes a single event. Unroutable events are logged and
// dropped; a bad event never takes the dispatcher down.
func (d *Dispatcher) Dispatch(ctx context.Context, event messaging.Event) {
	switch event := event.(type) {
	case messaging.RoomCreated:
		d.handleRoomCreated(event)
	case messaging.BotJoined:
		d.handleBotJoined(event)
	case messaging.StatusChange:
		d.handleStatusChange(ctx, event)
	case messaging.TextMessage:
		d.handleTextMessage(event)
	case messaging.CommandMessage:
		d.handleCommandMessage(event)
	default:
		d.logger.Debug("unhandled event", "event", event)
	}
}

// handleRoomCreated sets up a session for a new task room: draw items,
// register, join the bot, start the game. The bot join is queued before
// Begin so the board init lands in a room the bot is a member of.
func (d *Dispatcher) handleRoomCreated(event messaging.RoomCreated) {
	if event.Task != d.config.TaskID {
		d.logger.Debug("ignoring room for foreign task",
			"room_id", event.RoomID,
			"task_id", event.Task,
		)
		return
	}

	items, err := d.supplier.Draw(d.config.Rounds)
	if err != nil {
		d.logger.Error("cannot deal items for new room",
			"room_id", event.RoomID,
			"error", err,
		)
		return
	}

	session, err := d.registry.Create(event.RoomID, event.Users, items)
	if err != nil {
		d.logger.Error("cannot create session",
			"room_id", event.RoomID,
			"error", err,
		)
		return
	}

	d.effects.JoinRoom(d.config.BotID, event.RoomID)
	session.Begin()
}

// handleBotJoined greets the room once the bot's membership is live.
func (d *Dispatcher) handleBotJoined(event messaging.BotJoined) {
	session, err := d.registry.Get(event.RoomID)
	if err != nil {
		d.logger.Debug("bot joined room without session", "room_id", event.RoomID)
		return
	}
	session.Greet()
}

// handleStatusChange feeds player join and leave transitions into the
// room's session. Waiting-room churn and rooms without sessions are
// expected traffic, not errors.
func (d *Dispatcher) handleStatusChange(ctx context.Context, event messaging.StatusChange) {
	if event.RoomID == d.config.WaitingRoom {
		d.logger.Debug("ignoring waiting room status", "user_id", event.User.ID)
		return
	}
	session, err := d.registry.Get(event.RoomID)
	if err != nil {
		return
	}
	if event.User.ID == d.config.BotID {
		return
	}

	// Best effort: the task lookup filters out observers wandering
	// through the room, but the platform can refuse the lookup, and
	// the roster check below still protects the session.
	if d.tasks != nil {
		task, assigned, err := d.tasks.UserTask(ctx, event.User.ID)
		if err != nil {
			d.logger.Warn("task lookup failed, trusting roster",
				"user_id", event.User.ID,
				"error", err,
			)
		} else if !assigned || task != d.config.TaskID {
			d.logger.Debug("ignoring status of user outside task",
				"room_id", event.RoomID,
				"user_id", event.User.ID,
			)
			return
		}
	}

	switch event.Type {
	case messaging.StatusJoin:
		err = session.HandleJoin(event.User)
	case messaging.StatusLeave:
		err = session.HandleLeave(event.User)
	default:
		d.logger.Debug("ignoring status type",
			"room_id", event.RoomID,
			"type", event.Type,
		)
		return
	}
	if err != nil {
		d.logger.Debug("status change not applied",
			"room_id", event.RoomID,
			"user_id", event.User.ID,
			"type", event.Type,
			"error", err,
		)
	}
}

// handleTextMessage counts plain chat toward the sender's engagement
// metric.
func (d *Dispatcher) handleTextMessage(event messaging.TextMessage) {
	if event.User.ID == d.config.BotID {
		return
	}
	session, err := d.registry.Get(event.RoomID)
	if err != nil {
		return
	}
	if err := session.CountMessage(event.User.ID); err != nil {
		d.logger.Debug("message not counted",
			"room_id", event.RoomID,
			"user_id", event.User.ID,
			"error", err,
		)
	}
}

// guessPayload is the only structured command the bot understands.
type guessPayload struct {
	Guess     *string `json:"guess"`
	Remaining *int    `json:"remaining"`
}

// handleCommandMessage parses a frontend command. Anything that is not
// a well-formed guess object earns the sender a polite rejection.
func (d *Dispatcher) handleCommandMessage(event messaging.CommandMessage) {
	if event.User.ID == d.config.BotID {
		return
	}
	session, err := d.registry.Get(event.RoomID)
	if err != nil {
		return
	}

	var payload guessPayload
	if err := json.Unmarshal(event.Command, &payload); err != nil || payload.Guess == nil || payload.Remaining == nil {
		d.effects.SendText(event.RoomID, colorize(standardColor, msgNotUnderstood), event.User.ID, true)
		return
	}

	if err := session.SubmitGuess(event.User.ID, *payload.Guess, *payload.Remaining); err != nil {
		if errors.Is(err, ErrSessionClosed) || errors.Is(err, ErrUnknownPlayer) {
			d.logger.Debug("guess not accepted",
				"room_id", event.RoomID,
				"user_id", event.User.ID,
				"error", err,
			)
			return
		}
		// Validation rejections already messaged the player.
		d.logger.Debug("guess rejected",
			"room_id", event.RoomID,
			"user_id", event.User.ID,
			"error", err,
		)
	}
}
