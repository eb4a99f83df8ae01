// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// JoinRoom adds a user (typically the bot itself) to a room.
func (c *Client) JoinRoom(ctx context.Context, userID UserID, roomID RoomID) error {
	path := fmt.Sprintf("/users/%s/rooms/%s", userID, roomID)
	if _, _, err := c.doRequest(ctx, http.MethodPost, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("messaging: joining user %s to room %s: %w", userID, roomID, err)
	}
	c.logger.Debug("user joined room", "user_id", userID, "room_id", roomID)
	return nil
}

// RemoveUser deletes a user's membership in a room. The platform
// guards membership deletes with optimistic concurrency: the current
// user resource is fetched first and its ETag travels in If-Match.
func (c *Client) RemoveUser(ctx context.Context, userID UserID, roomID RoomID) error {
	_, header, err := c.doRequest(ctx, http.MethodGet, "/users/"+userID.String(), nil, nil)
	if err != nil {
		return fmt.Errorf("messaging: fetching user %s before removal: %w", userID, err)
	}
	etag := header.Get("ETag")

	path := fmt.Sprintf("/users/%s/rooms/%s", userID, roomID)
	requestHeader := http.Header{}
	if etag != "" {
		requestHeader.Set("If-Match", etag)
	}
	if _, _, err := c.doRequest(ctx, http.MethodDelete, path, nil, requestHeader); err != nil {
		return fmt.Errorf("messaging: removing user %s from room %s: %w", userID, roomID, err)
	}
	c.logger.Debug("user removed from room", "user_id", userID, "room_id", roomID)
	return nil
}

// attributePatch is the body of an element attribute update.
type attributePatch struct {
	Attribute  string `json:"attribute"`
	Value      string `json:"value"`
	ReceiverID UserID `json:"receiver_id,omitempty"`
}

// PatchAttribute updates one attribute of a room layout element,
// addressed by element ID. A non-zero receiver scopes the change to a
// single user's view; zero applies it room-wide.
func (c *Client) PatchAttribute(ctx context.Context, roomID RoomID, elementID, attribute, value string, receiver UserID) error {
	path := fmt.Sprintf("/rooms/%s/attribute/id/%s", roomID, elementID)
	body := attributePatch{Attribute: attribute, Value: value, ReceiverID: receiver}
	if _, _, err := c.doRequest(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("messaging: patching %s.%s in room %s: %w", elementID, attribute, roomID, err)
	}
	return nil
}

// SetText replaces the text content of a room layout element.
func (c *Client) SetText(ctx context.Context, roomID RoomID, elementID, text string) error {
	path := fmt.Sprintf("/rooms/%s/text/%s", roomID, elementID)
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	if _, _, err := c.doRequest(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("messaging: setting text of %s in room %s: %w", elementID, roomID, err)
	}
	return nil
}

// logEntry is the body of an appended log record.
type logEntry struct {
	Event      string         `json:"event"`
	RoomID     RoomID         `json:"room_id"`
	Data       map[string]any `json:"data,omitempty"`
	ReceiverID UserID         `json:"receiver_id,omitempty"`
}

// AppendLog appends a structured entry to the platform's persisted
// room log.
func (c *Client) AppendLog(ctx context.Context, roomID RoomID, event string, data map[string]any, receiver UserID) error {
	body := logEntry{Event: event, RoomID: roomID, Data: data, ReceiverID: receiver}
	if _, _, err := c.doRequest(ctx, http.MethodPost, "/logs", body, nil); err != nil {
		return fmt.Errorf("messaging: appending %q log entry for room %s: %w", event, roomID, err)
	}
	return nil
}

// UserTask returns the task a user is assigned to. The second return
// is false when the user has no task assignment.
func (c *Client) UserTask(ctx context.Context, userID UserID) (TaskID, bool, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "/users/"+userID.String()+"/task", nil, nil)
	if err != nil {
		return 0, false, fmt.Errorf("messaging: fetching task of user %s: %w", userID, err)
	}
	// The endpoint returns JSON null for users without a task.
	var task *struct {
		ID TaskID `json:"id"`
	}
	if err := json.Unmarshal(body, &task); err != nil {
		return 0, false, fmt.Errorf("messaging: failed to parse task response for user %s: %w", userID, err)
	}
	if task == nil {
		return 0, false, nil
	}
	return task.ID, true, nil
}
