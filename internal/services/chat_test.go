package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"dogwalk-backend/internal/models"
)

type fakeConn struct {
	frames     [][]byte
	closed     bool
	failWrites bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if c.failWrites {
		return errors.New("connection gone")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []ChatEvent {
	t.Helper()
	out := make([]ChatEvent, 0, len(c.frames))
	for _, frame := range c.frames {
		var event ChatEvent
		if err := json.Unmarshal(frame, &event); err != nil {
			t.Fatalf("failed to decode pushed frame: %v", err)
		}
		out = append(out, event)
	}
	return out
}

type chatFixture struct {
	*walkFixture
	chats *memChats
	hub   *ChatHub
	chat  *ChatService
}

// newMatchedChat builds a request already matched between "owner" and
// "walker", with "rival" rejected.
func newMatchedChat(t *testing.T) (*chatFixture, string) {
	t.Helper()
	ctx := context.Background()

	wf := newWalkFixture()
	wf.addUser("owner", models.RoleOwner)
	wf.addUser("walker", models.RoleWalker)
	wf.addUser("rival", models.RoleWalker)
	wf.addDog("dog", "owner")

	req, err := wf.walk.CreateRequest(ctx, "owner", "dog", futureTime(), 60, 15000, "강남구")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	app, err := wf.walk.Apply(ctx, "walker", req.ID)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := wf.walk.Apply(ctx, "rival", req.ID); err != nil {
		t.Fatalf("Apply(rival) failed: %v", err)
	}
	if err := wf.walk.Accept(ctx, "owner", app.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	chats := newMemChats()
	hub := NewChatHub()
	chat := NewChatService(wf.profiles, wf.requests, wf.apps, chats, hub)
	return &chatFixture{walkFixture: wf, chats: chats, hub: hub, chat: chat}, req.ID
}

func TestChatAuthorize(t *testing.T) {
	ctx := context.Background()
	f, requestID := newMatchedChat(t)

	if err := f.chat.Authorize(ctx, "owner", requestID); err != nil {
		t.Errorf("owner should be authorized: %v", err)
	}
	if err := f.chat.Authorize(ctx, "walker", requestID); err != nil {
		t.Errorf("matched walker should be authorized: %v", err)
	}
	if err := f.chat.Authorize(ctx, "rival", requestID); !errors.Is(err, ErrForbidden) {
		t.Errorf("rejected rival should be forbidden, got %v", err)
	}
	if err := f.chat.Authorize(ctx, "owner", "no-such-request"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Chat does not exist for a request that is still OPEN.
	open, err := f.walk.CreateRequest(ctx, "owner", "dog", futureTime(), 30, 9000, "강남구")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if err := f.chat.Authorize(ctx, "owner", open.ID); !errors.Is(err, ErrRequestNotMatched) {
		t.Errorf("expected ErrRequestNotMatched for OPEN request, got %v", err)
	}
}

func TestChatSendValidation(t *testing.T) {
	ctx := context.Background()
	f, requestID := newMatchedChat(t)

	if _, err := f.chat.Send(ctx, "owner", requestID, "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for blank content, got %v", err)
	}
	if _, err := f.chat.Send(ctx, "rival", requestID, "hello"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-participant, got %v", err)
	}
}

func TestChatOrdering(t *testing.T) {
	ctx := context.Background()
	f, requestID := newMatchedChat(t)

	// The walker subscribes before the conversation starts.
	conn := &fakeConn{}
	f.hub.Join(requestID, "walker", conn)

	contents := []string{"안녕하세요!", "내일 10시 괜찮으세요?", "네 좋습니다"}
	senders := []string{"owner", "walker", "owner"}
	for i := range contents {
		if _, err := f.chat.Send(ctx, senders[i], requestID, contents[i]); err != nil {
			t.Fatalf("Send(%d) failed: %v", i, err)
		}
	}

	// History is one strictly creation-ordered sequence.
	history, err := f.chat.History(ctx, "owner", requestID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(history))
	}
	for i, msg := range history {
		if msg.Content != contents[i] {
			t.Errorf("history[%d] = %q, want %q", i, msg.Content, contents[i])
		}
		if i > 0 && history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Errorf("history not ordered by creation time at index %d", i)
		}
	}

	// The live stream carries the same sequence with no duplicates or drops.
	events := conn.events(t)
	if len(events) != len(contents) {
		t.Fatalf("expected %d pushed events, got %d", len(contents), len(events))
	}
	seen := map[string]bool{}
	for i, event := range events {
		if event.Type != "message" || event.Message == nil {
			t.Fatalf("unexpected event at index %d: %+v", i, event)
		}
		if event.Message.Content != contents[i] {
			t.Errorf("stream[%d] = %q, want %q", i, event.Message.Content, contents[i])
		}
		if seen[event.Message.ID] {
			t.Errorf("duplicate message id %s in stream", event.Message.ID)
		}
		seen[event.Message.ID] = true
		if event.Message.ID != history[i].ID {
			t.Errorf("stream and history diverge at index %d", i)
		}
	}
}

func TestChatClosedAfterCompletion(t *testing.T) {
	ctx := context.Background()
	f, requestID := newMatchedChat(t)

	if _, err := f.chat.Send(ctx, "walker", requestID, "다녀왔습니다!"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := f.walk.Complete(ctx, "walker", requestID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// History stays readable, sending is closed.
	history, err := f.chat.History(ctx, "owner", requestID)
	if err != nil {
		t.Fatalf("History after completion failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("expected 1 message in history, got %d", len(history))
	}
	if _, err := f.chat.Send(ctx, "owner", requestID, "one more"); !errors.Is(err, ErrRequestNotMatched) {
		t.Errorf("expected ErrRequestNotMatched after completion, got %v", err)
	}
}

func TestHubJoinLeaveBroadcast(t *testing.T) {
	hub := NewChatHub()

	a := &fakeConn{}
	b := &fakeConn{}
	hub.Join("req", "a", a)
	hub.Join("req", "b", b)

	if !hub.IsSubscribed("req", "a") || !hub.IsSubscribed("req", "b") {
		t.Fatal("expected both users subscribed")
	}

	hub.Broadcast("req", ChatEvent{Type: "message"})
	if len(a.frames) != 1 || len(b.frames) != 1 {
		t.Errorf("expected one frame each, got %d and %d", len(a.frames), len(b.frames))
	}

	// A replacement connection closes the old one.
	a2 := &fakeConn{}
	hub.Join("req", "a", a2)
	if !a.closed {
		t.Error("expected replaced connection to be closed")
	}

	// A failing connection is dropped on broadcast.
	a2.failWrites = true
	hub.Broadcast("req", ChatEvent{Type: "message"})
	if hub.IsSubscribed("req", "a") {
		t.Error("expected failing connection to be dropped")
	}
	if !a2.closed {
		t.Error("expected dropped connection to be closed")
	}
	if len(b.frames) != 2 {
		t.Errorf("expected healthy subscriber to keep receiving, got %d frames", len(b.frames))
	}

	hub.Leave("req", "b", b)
	if hub.IsSubscribed("req", "b") {
		t.Error("expected user to be unsubscribed after Leave")
	}
	if !b.closed {
		t.Error("expected connection to be closed on Leave")
	}

	// Leave on an empty room is a no-op.
	hub.Leave("req", "b", b)
	hub.Leave("ghost-room", "nobody", b)
}

// A reconnect replaces the old connection, and the old handler's deferred
// teardown must not tear down the replacement.
func TestHubReconnectSurvivesStaleLeave(t *testing.T) {
	hub := NewChatHub()

	c1 := &fakeConn{}
	c2 := &fakeConn{}
	hub.Join("req", "a", c1)
	hub.Join("req", "a", c2)
	if !c1.closed {
		t.Fatal("expected old connection to be closed on reconnect")
	}

	// The first handler unwinds after its connection was replaced.
	hub.Leave("req", "a", c1)

	if c2.closed {
		t.Error("replacement connection was closed by the stale teardown")
	}
	if !hub.IsSubscribed("req", "a") {
		t.Fatal("user lost their subscription after reconnect")
	}
	hub.Broadcast("req", ChatEvent{Type: "message"})
	if len(c2.frames) != 1 {
		t.Errorf("expected reconnected user to receive the broadcast, got %d frames", len(c2.frames))
	}

	// The replacement's own teardown still works.
	hub.Leave("req", "a", c2)
	if hub.IsSubscribed("req", "a") {
		t.Error("expected user unsubscribed after their own Leave")
	}
	if !c2.closed {
		t.Error("expected connection closed by its own Leave")
	}
}

func TestHubSendToUser(t *testing.T) {
	hub := NewChatHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Join("req", "a", a)
	hub.Join("req", "b", b)

	hub.SendToUser("req", "a", ChatEvent{Type: "error", Error: "just for a"})
	if len(a.frames) != 1 {
		t.Errorf("expected targeted frame, got %d", len(a.frames))
	}
	if len(b.frames) != 0 {
		t.Errorf("expected no frame for other subscriber, got %d", len(b.frames))
	}

	// Sending to someone not in the room is a no-op.
	hub.SendToUser("req", "c", ChatEvent{Type: "error"})
	hub.SendToUser("ghost", "a", ChatEvent{Type: "error"})
}

// Guards the sender lookup used to fill the denormalized nickname.
func TestChatSenderNickname(t *testing.T) {
	ctx := context.Background()
	f, requestID := newMatchedChat(t)

	msg, err := f.chat.Send(ctx, "walker", requestID, "출발했어요")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := fmt.Sprintf("user-%s", "walker")
	if msg.SenderNickname != want {
		t.Errorf("expected sender nickname %q, got %q", want, msg.SenderNickname)
	}
}
