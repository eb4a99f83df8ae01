// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clp-research/slurdle/lib/clock"
	"github.com/clp-research/slurdle/lib/itemdata"
	"github.com/clp-research/slurdle/messaging"
)

const (
	botID       = messaging.UserID(1)
	testTask    = messaging.TaskID(3)
	waitingRoom = messaging.RoomID(100)
)

// fixedSupplier deals the same item sequence to every room, or fails.
type fixedSupplier struct {
	items []itemdata.Item
	err   error
}

func (s *fixedSupplier) Draw(n int) ([]itemdata.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.items) {
		n = len(s.items)
	}
	items := make([]itemdata.Item, n)
	copy(items, s.items[:n])
	return items, nil
}

// fixedTasks maps users to task assignments for the eligibility check.
type fixedTasks struct {
	assignments map[messaging.UserID]messaging.TaskID
	err         error
}

func (f *fixedTasks) UserTask(ctx context.Context, userID messaging.UserID) (messaging.TaskID, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	task, ok := f.assignments[userID]
	return task, ok, nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	registry   *Registry
	recorder   *effectRecorder
	clock      *clock.FakeClock
	supplier   *fixedSupplier
	tasks      *fixedTasks
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	recorder := &effectRecorder{}
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	registry := NewRegistry(testConfig, recorder, testWords, fakeClock, discardLogger())
	supplier := &fixedSupplier{items: testItems("apple", "tiger", "piano")}
	tasks := &fixedTasks{assignments: map[messaging.UserID]messaging.TaskID{
		alice: testTask,
		bob:   testTask,
	}}
	config := DispatcherConfig{
		BotID:       botID,
		TaskID:      testTask,
		WaitingRoom: waitingRoom,
		Rounds:      3,
	}
	dispatcher := NewDispatcher(config, registry, supplier, recorder, tasks, discardLogger())
	return &dispatcherFixture{
		dispatcher: dispatcher,
		registry:   registry,
		recorder:   recorder,
		clock:      fakeClock,
		supplier:   supplier,
		tasks:      tasks,
	}
}

func (f *dispatcherFixture) roomCreated(t *testing.T) {
	t.Helper()
	f.dispatcher.Dispatch(context.Background(), messaging.RoomCreated{
		RoomID: testRoom,
		Task:   testTask,
		Users:  testUsers(),
	})
	if f.registry.Len() != 1 {
		t.Fatal("room creation did not register a session")
	}
}

func guessEvent(user messaging.User, guess string, remaining int) messaging.CommandMessage {
	payload := fmt.Sprintf(`{"command":"submit","guess":%q,"remaining":%d}`, guess, remaining)
	return messaging.CommandMessage{RoomID: testRoom, User: user, Command: json.RawMessage(payload)}
}

func TestDispatchRoomCreated(t *testing.T) {
	t.Run("starts a game in a matching task room", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)

		calls := f.recorder.all()
		if len(calls) == 0 {
			t.Fatal("no effects produced")
		}
		// The bot's membership is queued before any game traffic.
		if calls[0].kind != "join" || calls[0].user != botID || calls[0].room != testRoom {
			t.Errorf("first effect = %+v, want bot join", calls[0])
		}
		session, err := f.registry.Get(testRoom)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if session.RemainingRounds() != 3 {
			t.Errorf("RemainingRounds = %d, want 3", session.RemainingRounds())
		}
	})

	t.Run("ignores foreign task rooms", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.dispatcher.Dispatch(context.Background(), messaging.RoomCreated{
			RoomID: testRoom,
			Task:   testTask + 1,
			Users:  testUsers(),
		})
		if f.registry.Len() != 0 {
			t.Error("foreign task room got a session")
		}
		if len(f.recorder.all()) != 0 {
			t.Errorf("foreign task room produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("supplier failure leaves no session behind", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.supplier.err = errors.New("item files exhausted")
		f.dispatcher.Dispatch(context.Background(), messaging.RoomCreated{
			RoomID: testRoom,
			Task:   testTask,
			Users:  testUsers(),
		})
		if f.registry.Len() != 0 {
			t.Error("session registered despite supplier failure")
		}
	})

	t.Run("bad roster leaves no session behind", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.dispatcher.Dispatch(context.Background(), messaging.RoomCreated{
			RoomID: testRoom,
			Task:   testTask,
			Users:  testUsers()[:1],
		})
		if f.registry.Len() != 0 {
			t.Error("session registered despite bad roster")
		}
	})
}

func TestDispatchBotJoined(t *testing.T) {
	f := newDispatcherFixture(t)
	f.roomCreated(t)
	f.recorder.reset()

	f.dispatcher.Dispatch(context.Background(), messaging.BotJoined{RoomID: testRoom})

	if !f.recorder.containsText(broadcast, "Welcome to the game!") {
		t.Error("greeting not sent on bot join")
	}

	// A joined_room for a room without a session is noise.
	f.recorder.reset()
	f.dispatcher.Dispatch(context.Background(), messaging.BotJoined{RoomID: 999})
	if len(f.recorder.all()) != 0 {
		t.Errorf("sessionless bot join produced effects: %+v", f.recorder.all())
	}
}

func TestDispatchStatusChange(t *testing.T) {
	t.Run("routes leave and join to the session", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusLeave,
			User:   messaging.User{ID: alice, Name: "Alice"},
		})
		if !f.recorder.containsText(bob, "Alice has left the game") {
			t.Error("leave not routed to the session")
		}

		f.recorder.reset()
		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusJoin,
			User:   messaging.User{ID: alice, Name: "Alice"},
		})
		if !f.recorder.containsText(bob, "Alice has joined the game") {
			t.Error("join not routed to the session")
		}
	})

	t.Run("ignores waiting room churn", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: waitingRoom,
			Type:   messaging.StatusJoin,
			User:   messaging.User{ID: alice, Name: "Alice"},
		})
		if len(f.recorder.all()) != 0 {
			t.Errorf("waiting room status produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("ignores the bot's own status", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusJoin,
			User:   messaging.User{ID: botID, Name: "Slurdle"},
		})
		if len(f.recorder.all()) != 0 {
			t.Errorf("bot status produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("ignores users outside the task", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusLeave,
			User:   messaging.User{ID: 555, Name: "Observer"},
		})
		if len(f.recorder.all()) != 0 {
			t.Errorf("foreign user status produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("failed task lookup falls back to the roster", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.tasks.err = errors.New("platform unavailable")
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusLeave,
			User:   messaging.User{ID: alice, Name: "Alice"},
		})
		if !f.recorder.containsText(bob, "Alice has left the game") {
			t.Error("roster player ignored when lookup failed")
		}

		// Non-roster users still bounce off the session itself.
		f.recorder.reset()
		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: testRoom,
			Type:   messaging.StatusLeave,
			User:   messaging.User{ID: 555, Name: "Observer"},
		})
		if len(f.recorder.all()) != 0 {
			t.Errorf("non-roster user produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("ignores rooms without sessions", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.dispatcher.Dispatch(context.Background(), messaging.StatusChange{
			RoomID: 999,
			Type:   messaging.StatusLeave,
			User:   messaging.User{ID: alice, Name: "Alice"},
		})
		if len(f.recorder.all()) != 0 {
			t.Errorf("sessionless status produced effects: %+v", f.recorder.all())
		}
	})
}

func TestDispatchCommand(t *testing.T) {
	t.Run("well-formed guess reaches the session", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), guessEvent(messaging.User{ID: alice, Name: "Alice"}, "tiger", 6))
		if !f.recorder.containsText(alice, "wait for your partner") {
			t.Errorf("guess not processed: %v", f.recorder.textsTo(alice))
		}
	})

	t.Run("both guesses resolve the round", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), guessEvent(messaging.User{ID: alice, Name: "Alice"}, "apple", 6))
		f.dispatcher.Dispatch(context.Background(), guessEvent(messaging.User{ID: bob, Name: "Bob"}, "apple", 6))

		session, err := f.registry.Get(testRoom)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if session.Score() != 100 {
			t.Errorf("Score = %d, want 100", session.Score())
		}
	})

	t.Run("malformed commands earn a rejection notice", func(t *testing.T) {
		malformed := []struct {
			name    string
			payload string
		}{
			{"free text", `"hello bot"`},
			{"number", `42`},
			{"object without guess", `{"command":"restart"}`},
			{"object without remaining", `{"guess":"apple"}`},
			{"array", `["guess","apple"]`},
		}
		for _, tt := range malformed {
			t.Run(tt.name, func(t *testing.T) {
				f := newDispatcherFixture(t)
				f.roomCreated(t)
				f.recorder.reset()

				f.dispatcher.Dispatch(context.Background(), messaging.CommandMessage{
					RoomID:  testRoom,
					User:    messaging.User{ID: alice, Name: "Alice"},
					Command: json.RawMessage(tt.payload),
				})
				if !f.recorder.containsText(alice, "I do not understand this command") {
					t.Errorf("no rejection notice for %s: %v", tt.name, f.recorder.textsTo(alice))
				}
			})
		}
	})

	t.Run("ignores the bot's own commands", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.roomCreated(t)
		f.recorder.reset()

		f.dispatcher.Dispatch(context.Background(), guessEvent(messaging.User{ID: botID, Name: "Slurdle"}, "apple", 6))
		if len(f.recorder.all()) != 0 {
			t.Errorf("bot command produced effects: %+v", f.recorder.all())
		}
	})

	t.Run("ignores rooms without sessions", func(t *testing.T) {
		f := newDispatcherFixture(t)
		event := guessEvent(messaging.User{ID: alice, Name: "Alice"}, "apple", 6)
		event.RoomID = 999
		f.dispatcher.Dispatch(context.Background(), event)
		if len(f.recorder.all()) != 0 {
			t.Errorf("sessionless command produced effects: %+v", f.recorder.all())
		}
	})
}

func TestDispatchTextMessage(t *testing.T) {
	f := newDispatcherFixture(t)
	f.roomCreated(t)
	session, err := f.registry.Get(testRoom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	f.dispatcher.Dispatch(context.Background(), messaging.TextMessage{
		RoomID: testRoom,
		User:   messaging.User{ID: alice, Name: "Alice"},
		Text:   "maybe it is a fruit?",
	})
	f.dispatcher.Dispatch(context.Background(), messaging.TextMessage{
		RoomID: testRoom,
		User:   messaging.User{ID: botID, Name: "Slurdle"},
		Text:   "Welcome!",
	})

	session.mu.Lock()
	var counted int
	for _, player := range session.players {
		counted += player.MessageCount
	}
	session.mu.Unlock()
	if counted != 1 {
		t.Errorf("counted messages = %d, want 1", counted)
	}
}

func TestDispatcherRun(t *testing.T) {
	t.Run("stops when the stream closes", func(t *testing.T) {
		f := newDispatcherFixture(t)
		events := make(chan messaging.Event, 1)
		events <- messaging.RoomCreated{RoomID: testRoom, Task: testTask, Users: testUsers()}
		close(events)

		if err := f.dispatcher.Run(context.Background(), events); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if f.registry.Len() != 1 {
			t.Error("queued event not dispatched before shutdown")
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		f := newDispatcherFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		events := make(chan messaging.Event)

		if err := f.dispatcher.Run(ctx, events); !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	})
}
