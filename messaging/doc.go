// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the slurk chat platform's client API for the
// game bot's communication needs.
//
// The platform exposes two surfaces and this package mirrors them. The
// REST API (under /slurk/api) carries request/response state changes:
// moving the bot into a room, patching displayed room attributes,
// removing users from rooms with ETag-guarded deletes, and appending
// persisted log entries. [Client] wraps it with Bearer-token
// authentication; all API errors are returned as [*APIError] with the
// HTTP status code and the server's message.
//
// The event channel is a persistent websocket delivering room lifecycle
// events (room created, user joined/left), text messages, and
// structured commands as JSON frames. [Stream] dials it, decodes frames
// into the typed [Event] values in this package, and carries outgoing
// "text" and "message_command" emissions over the same connection. The
// websocket write side is serialized through a mutex per gorilla's
// single-writer contract; the read side runs in one goroutine feeding
// the Events channel.
//
// [Effects] layers an ordered, asynchronous delivery queue over both
// surfaces. Game sessions must never block on network I/O, so every
// effect method enqueues and returns immediately; a single worker
// goroutine delivers in FIFO order and logs failures without ever
// propagating them back into game state.
//
// Request URLs are built by string concatenation rather than url.URL to
// avoid double-encoding of path segments.
package messaging
