// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"strconv"
)

// RoomID identifies a platform room. Room IDs are integers on the
// wire; the game core treats them as opaque keys.
type RoomID int64

func (id RoomID) String() string { return strconv.FormatInt(int64(id), 10) }

// UserID identifies a platform user. The zero value means "no user"
// and, as a receiver, "broadcast to the whole room".
type UserID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// TaskID identifies a platform task. The bot only manages rooms whose
// task matches its configured task ID.
type TaskID int64

func (id TaskID) String() string { return strconv.FormatInt(int64(id), 10) }

// User is a platform user as delivered in events: an opaque id plus a
// display name.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// StatusType distinguishes the two directions of a status event.
type StatusType string

const (
	StatusJoin  StatusType = "join"
	StatusLeave StatusType = "leave"
)

// Event is an inbound platform event. The concrete types are
// [RoomCreated], [BotJoined], [StatusChange], [TextMessage], and
// [CommandMessage]; consumers switch on the dynamic type.
type Event interface {
	// Room returns the room the event belongs to.
	Room() RoomID
}

// RoomCreated announces a freshly created task room with its initial
// member list. Emitted by the platform's lobby once enough users for a
// task have gathered.
type RoomCreated struct {
	RoomID RoomID `json:"room"`
	Task   TaskID `json:"task"`
	Users  []User `json:"users"`
}

func (e RoomCreated) Room() RoomID { return e.RoomID }

// BotJoined signals that this bot's own membership in a room became
// effective.
type BotJoined struct {
	RoomID RoomID `json:"room"`
}

func (e BotJoined) Room() RoomID { return e.RoomID }

// StatusChange signals a user joining or leaving a room.
type StatusChange struct {
	RoomID RoomID     `json:"room"`
	Type   StatusType `json:"type"`
	User   User       `json:"user"`
}

func (e StatusChange) Room() RoomID { return e.RoomID }

// TextMessage is a plain chat message (no leading command marker).
type TextMessage struct {
	RoomID RoomID `json:"room"`
	User   User   `json:"user"`
	Text   string `json:"message"`
}

func (e TextMessage) Room() RoomID { return e.RoomID }

// CommandMessage is a command event. Command holds the raw payload:
// structured commands arrive as JSON objects, free-text commands as
// JSON strings. The consumer decides which shapes it understands.
type CommandMessage struct {
	RoomID  RoomID          `json:"room"`
	User    User            `json:"user"`
	Command json.RawMessage `json:"command"`
}

func (e CommandMessage) Room() RoomID { return e.RoomID }

// Wire event names used by the platform's socket protocol. Inbound
// and outbound text events have different names: the server delivers
// "text_message" but accepts "text".
const (
	eventRoomCreated = "new_task_room"
	eventBotJoined   = "joined_room"
	eventStatus      = "status"
	eventText        = "text_message"
	eventCommand     = "command"

	emitText    = "text"
	emitCommand = "message_command"
)

// frame is the envelope every socket message travels in, both inbound
// and outbound.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// decodeEvent turns an inbound frame into a typed Event. Unknown event
// names return (nil, nil): the platform emits more event kinds than the
// bot consumes, and skipping them is the normal case, not an error.
func decodeEvent(name string, data json.RawMessage) (Event, error) {
	switch name {
	case eventRoomCreated:
		var event RoomCreated
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case eventBotJoined:
		var event BotJoined
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case eventStatus:
		var event StatusChange
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case eventText:
		var event TextMessage
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case eventCommand:
		var event CommandMessage
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return nil, nil
	}
}

// textEmission is the payload of an outbound "text" emission.
type textEmission struct {
	Message    string `json:"message"`
	Room       RoomID `json:"room"`
	ReceiverID UserID `json:"receiver_id,omitempty"`
	HTML       bool   `json:"html,omitempty"`
}

// commandEmission is the payload of an outbound "message_command"
// emission. Command is an arbitrary structured payload rendered by the
// room's client-side task layout.
type commandEmission struct {
	Command    any    `json:"command"`
	Room       RoomID `json:"room"`
	ReceiverID UserID `json:"receiver_id,omitempty"`
}
