package chat

import (
	"context"
	"testing"

	"PairChat/tools/errs"
)

// One sender connection, receiver with two devices: the store sees one
// append and all three connections get one message_delivered with the same id.
func TestSendFansOutToSenderAndReceiverSets(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store)

	a1 := connect(t, s, "userA")
	b1 := connect(t, s, "userB")
	b2 := connect(t, s, "userB")
	settle()
	drain(a1)
	drain(b1)
	drain(b2)

	stored, cerr := s.Relay().Send(context.Background(), a1, "userB", "hi")
	if cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}
	if store.appends != 1 {
		t.Fatalf("store appends: got %d want 1", store.appends)
	}

	for _, c := range []*Client{a1, b1, b2} {
		f := recvFrameOfType(t, c, FrameMessageDelivered)
		if f.Message == nil || f.Message.ID != stored.ID {
			t.Fatalf("conn=%s delivered wrong message: %+v", c.ConnID, f.Message)
		}
		if f.Message.Sender != "userA" || f.Message.Receiver != "userB" || f.Message.Content != "hi" {
			t.Fatalf("conn=%s message fields: %+v", c.ConnID, f.Message)
		}
		if f.Message.Read {
			t.Fatalf("read flag must default to false")
		}
	}

	// exactly once: nothing else queued
	settle()
	expectNoFrame(t, a1)
	expectNoFrame(t, b1)
	expectNoFrame(t, b2)
}

func TestSendDeliversNothingToThirdParties(t *testing.T) {
	s := newTestServer(t, nil)
	a := connect(t, s, "userA")
	b := connect(t, s, "userB")
	c := connect(t, s, "userC")
	settle()
	drain(a)
	drain(b)
	drain(c)

	if _, cerr := s.Relay().Send(context.Background(), a, "userB", "psst"); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}
	recvFrameOfType(t, a, FrameMessageDelivered)
	recvFrameOfType(t, b, FrameMessageDelivered)
	settle()
	expectNoFrame(t, c)
}

func TestFailedPersistProducesNoFanout(t *testing.T) {
	store := &memStore{failNext: true}
	s := newTestServer(t, store)

	a := connect(t, s, "userA")
	b := connect(t, s, "userB")
	settle()
	drain(a)
	drain(b)

	stored, cerr := s.Relay().Send(context.Background(), a, "userB", "hi")
	if stored != nil || cerr == nil {
		t.Fatalf("expected persistence failure, got stored=%+v cerr=%v", stored, cerr)
	}
	if cerr.Code != errs.CodePersistence {
		t.Fatalf("error code: got %d want %d", cerr.Code, errs.CodePersistence)
	}
	settle()
	expectNoFrame(t, a)
	expectNoFrame(t, b)
}

func TestSendValidation(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store)
	a := connect(t, s, "userA")
	settle()
	drain(a)

	cases := []struct {
		name     string
		receiver string
		content  string
	}{
		{"empty content", "userB", ""},
		{"whitespace content", "userB", "   \t "},
		{"missing receiver", "", "hi"},
		{"self send", "userA", "hi"},
	}
	for _, tc := range cases {
		stored, cerr := s.Relay().Send(context.Background(), a, tc.receiver, tc.content)
		if stored != nil || cerr == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if cerr.Code != errs.CodeValidation {
			t.Fatalf("%s: code got %d want %d", tc.name, cerr.Code, errs.CodeValidation)
		}
	}
	if store.appends != 0 {
		t.Fatalf("store must not be called on validation failure, got %d appends", store.appends)
	}
}

func TestSendFromUnboundConnection(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store)
	c := NewClient("loose", nil, 8)
	s.Registry().Track(c)

	stored, cerr := s.Relay().Send(context.Background(), c, "userB", "hi")
	if stored != nil || cerr == nil || cerr.Code != errs.CodeUnbound {
		t.Fatalf("expected unbound-connection error, got stored=%+v cerr=%v", stored, cerr)
	}
	if store.appends != 0 {
		t.Fatal("store must not be called for unbound connections")
	}
}

// A sender disconnecting while the append is in flight must not lose the
// message for the receiver: fan-out targets are whatever is open afterwards.
func TestDisconnectDuringInflightPersistence(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store)

	a := connect(t, s, "userA")
	b := connect(t, s, "userB")
	settle()
	drain(a)
	drain(b)

	// simulate: append already accepted, sender gone before fan-out
	msg := &StoredMessage{ID: "m1", Sender: "userA", Receiver: "userB", Content: "late", CreatedAt: 1}
	s.Disconnect(a)
	s.Relay().DeliverRemote(msg)

	f := recvFrameOfType(t, b, FrameMessageDelivered)
	if f.Message.ID != "m1" {
		t.Fatalf("receiver missed the in-flight message: %+v", f.Message)
	}
}

func TestSenderEchoAcrossOwnDevices(t *testing.T) {
	s := newTestServer(t, nil)
	a1 := connect(t, s, "userA")
	a2 := connect(t, s, "userA")
	_ = connect(t, s, "userB")
	settle()
	drain(a1)
	drain(a2)

	if _, cerr := s.Relay().Send(context.Background(), a1, "userB", "echo"); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}
	// both sender devices see the outgoing message
	f1 := recvFrameOfType(t, a1, FrameMessageDelivered)
	f2 := recvFrameOfType(t, a2, FrameMessageDelivered)
	if f1.Message.ID != f2.Message.ID {
		t.Fatalf("device echo ids differ: %s vs %s", f1.Message.ID, f2.Message.ID)
	}
}
