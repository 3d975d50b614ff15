package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/learnage/portal/internal/model"
)

type fakeSender struct {
	mu      sync.Mutex
	calls   []*model.SendMessageRequest
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSender) SendMessage(_ context.Context, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err, block, entered := f.err, f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &model.ChatMessage{ID: "new", ClassID: req.ClassID, Message: req.Message}, nil
}

type countingSub struct {
	mu        sync.Mutex
	refreshes int
}

func (c *countingSub) Refresh() {
	c.mu.Lock()
	c.refreshes++
	c.mu.Unlock()
}

func (c *countingSub) Close() error { return nil }

func (c *countingSub) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes
}

func student() *model.Principal {
	return &model.Principal{UID: "S1", Name: "Asha", Email: "asha@example.com", Role: model.RoleStudent, ClassID: "10A"}
}

func TestRoomSendSuccessRefreshesOnce(t *testing.T) {
	sender := &fakeSender{}
	sub := &countingSub{}
	room := NewRoom(student(), sender)
	room.Attach(sub)

	if err := room.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("refreshes = %d, want 1", sub.count())
	}
	if room.Draft() != "" {
		t.Fatalf("draft = %q, want cleared", room.Draft())
	}

	req := sender.calls[0]
	want := model.SendMessageRequest{ClassID: "10A", SenderID: "S1", SenderName: "Asha", SenderRole: model.RoleStudent, Message: "hello"}
	if *req != want {
		t.Fatalf("request = %+v, want %+v", *req, want)
	}
}

func TestRoomSendBlank(t *testing.T) {
	sender := &fakeSender{}
	sub := &countingSub{}
	room := NewRoom(student(), sender)
	room.Attach(sub)

	for _, body := range []string{"", "   ", "\n\t"} {
		if err := room.Send(context.Background(), body); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Send(%q) error = %v, want ErrEmptyMessage", body, err)
		}
	}
	if len(sender.calls) != 0 || sub.count() != 0 {
		t.Fatalf("blank send reached network: calls=%d refreshes=%d", len(sender.calls), sub.count())
	}
}

func TestRoomSendFailureKeepsDraft(t *testing.T) {
	sender := &fakeSender{err: errors.New("503")}
	sub := &countingSub{}
	room := NewRoom(student(), sender)
	room.Attach(sub)

	if err := room.Send(context.Background(), "retry me"); err == nil {
		t.Fatal("Send() error = nil, want failure")
	}
	if room.Draft() != "retry me" {
		t.Fatalf("draft = %q, want kept", room.Draft())
	}
	if sub.count() != 0 {
		t.Fatalf("refreshes = %d, want 0", sub.count())
	}
	if room.Sending() {
		t.Fatal("still sending after failure")
	}
}

func TestRoomSendInProgress(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	room := NewRoom(student(), sender)
	room.Attach(&countingSub{})

	errc := make(chan error, 1)
	go func() { errc <- room.Send(context.Background(), "first") }()

	select {
	case <-sender.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first send never started")
	}

	if err := room.Send(context.Background(), "second"); !errors.Is(err, ErrSendInProgress) {
		t.Fatalf("concurrent Send() error = %v, want ErrSendInProgress", err)
	}

	close(sender.block)
	if err := <-errc; err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(sender.calls))
	}
}

func TestRoomEmptyClass(t *testing.T) {
	room := NewRoom(student(), &fakeSender{})
	room.Apply([]model.ChatMessage{})
	if !room.Empty() {
		t.Fatal("Empty() = false for empty snapshot")
	}

	room.Apply(sample("m1"))
	if room.Empty() || len(room.Messages()) != 1 {
		t.Fatalf("messages = %+v", room.Messages())
	}

	room.Apply(nil)
	if !room.Empty() {
		t.Fatal("snapshot did not replace the list")
	}
}

func TestRoomWithoutClass(t *testing.T) {
	p := student()
	p.ClassID = ""
	sender := &fakeSender{}
	room := NewRoom(p, sender)

	if err := room.Send(context.Background(), "hi"); !errors.Is(err, ErrNoClass) {
		t.Fatalf("Send() error = %v, want ErrNoClass", err)
	}
	if len(sender.calls) != 0 {
		t.Fatal("send without class reached network")
	}
}
