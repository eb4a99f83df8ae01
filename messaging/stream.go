// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// StreamConfig holds configuration for dialing the event channel.
type StreamConfig struct {
	// ServerURL is the base URL of the platform server. http/https
	// schemes are rewritten to ws/wss for the dial.
	ServerURL string
	// Token is the Bearer token authenticating this bot.
	Token string
	// UserID is the bot's own platform user ID, sent in the handshake.
	UserID UserID
	// Dialer is used for the websocket handshake. If nil,
	// websocket.DefaultDialer is used.
	Dialer *websocket.Dialer
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Stream is the bot's persistent event channel. Inbound platform
// events arrive on Events; outbound emissions go through EmitText and
// EmitCommand.
//
// One goroutine owns the read side (started by Dial). Writes are
// serialized with a mutex: the websocket transport permits at most one
// concurrent writer.
type Stream struct {
	conn   *websocket.Conn
	events chan Event
	logger *slog.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects the event channel and starts the read loop. The
// returned Stream's Events channel closes when the connection ends,
// whether by Close or by a read failure.
func Dial(ctx context.Context, config StreamConfig) (*Stream, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("messaging: ServerURL is required")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("messaging: Token is required")
	}

	endpoint, err := streamEndpoint(config.ServerURL)
	if err != nil {
		return nil, err
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+config.Token)
	header.Set("X-User", config.UserID.String())

	conn, response, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("messaging: event channel dial failed (status %d): %w", response.StatusCode, err)
		}
		return nil, fmt.Errorf("messaging: event channel dial failed: %w", err)
	}

	stream := &Stream{
		conn:   conn,
		events: make(chan Event, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
	go stream.readLoop()

	logger.Info("event channel connected", "endpoint", endpoint, "user_id", config.UserID)
	return stream, nil
}

// streamEndpoint derives the websocket endpoint from the server base
// URL.
func streamEndpoint(serverURL string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("messaging: invalid ServerURL %q: %w", serverURL, err)
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("messaging: unsupported ServerURL scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/events"
	return parsed.String(), nil
}

// Events returns the inbound event channel. The channel closes when
// the connection ends; a closed channel is the consumer's signal to
// shut down.
func (s *Stream) Events() <-chan Event { return s.events }

// readLoop reads frames until the connection fails, decoding each into
// a typed event. Malformed frames and unknown event kinds are logged
// and skipped: a single bad frame must not take down the channel.
func (s *Stream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Close was requested; the read error is the normal
				// teardown path.
			default:
				s.logger.Error("event channel read failed", "error", err)
			}
			return
		}

		var envelope frame
		if err := json.Unmarshal(data, &envelope); err != nil {
			s.logger.Warn("dropping malformed event frame", "error", err)
			continue
		}

		event, err := decodeEvent(envelope.Event, envelope.Data)
		if err != nil {
			s.logger.Warn("dropping undecodable event",
				"event", envelope.Event,
				"error", err,
			)
			continue
		}
		if event == nil {
			s.logger.Debug("ignoring unhandled event kind", "event", envelope.Event)
			continue
		}
		s.events <- event
	}
}

// EmitText sends a chat message into a room. A non-zero receiver
// delivers it privately to that user; zero broadcasts to the room.
// Set html when the message carries markup the client should render.
func (s *Stream) EmitText(roomID RoomID, message string, receiver UserID, html bool) error {
	return s.emit(emitText, textEmission{
		Message:    message,
		Room:       roomID,
		ReceiverID: receiver,
		HTML:       html,
	})
}

// EmitCommand sends a structured command into a room, rendered by the
// room's client-side task layout. A non-zero receiver scopes it to one
// user.
func (s *Stream) EmitCommand(roomID RoomID, command any, receiver UserID) error {
	return s.emit(emitCommand, commandEmission{
		Command:    command,
		Room:       roomID,
		ReceiverID: receiver,
	})
}

// emit marshals and writes one outbound frame under the write lock.
func (s *Stream) emit(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("messaging: failed to encode %q emission: %w", event, err)
	}
	envelope, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("messaging: failed to encode %q frame: %w", event, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
		return fmt.Errorf("messaging: failed to emit %q: %w", event, err)
	}
	return nil
}

// Close tears down the connection. Idempotent. The Events channel
// closes once the read loop observes the closed connection.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		// Best-effort close handshake; the subsequent Close tears the
		// connection down regardless.
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
