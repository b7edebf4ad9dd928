package chat

import (
	"strings"
	"testing"
)

func TestParseFrameRejectsMissingType(t *testing.T) {
	if _, err := ParseFrame([]byte(`{"content":"hi"}`)); err == nil {
		t.Fatal("frame without type must be rejected")
	}
	if _, err := ParseFrame([]byte(`not json`)); err == nil {
		t.Fatal("malformed payload must be rejected")
	}
}

func TestParseFrameRoundTrip(t *testing.T) {
	in := &Frame{Type: FrameSendMessage, ReceiverID: "bob", Content: "hello"}
	out, err := ParseFrame(EncodeFrame(in))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if out.Type != FrameSendMessage || out.ReceiverID != "bob" || out.Content != "hello" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestBuildSnapshotNeverEncodesNull(t *testing.T) {
	raw := EncodeFrame(BuildSnapshot(nil))
	if strings.Contains(string(raw), "null") {
		t.Fatalf("empty snapshot must encode as [], got %s", raw)
	}
	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if f.OnlineUserIDs == nil || len(f.OnlineUserIDs) != 0 {
		t.Fatalf("snapshot list: %v", f.OnlineUserIDs)
	}
}

func TestBuildStatusChanged(t *testing.T) {
	f := BuildStatusChanged("alice", true)
	if f.UserID != "alice" || f.Status != StatusOnline {
		t.Fatalf("online frame: %+v", f)
	}
	f = BuildStatusChanged("alice", false)
	if f.Status != StatusOffline {
		t.Fatalf("offline frame: %+v", f)
	}
}

func TestBuildTypingSelectsFrameType(t *testing.T) {
	if f := BuildTyping("alice", true); f.Type != FrameTyping || f.Sender != "alice" {
		t.Fatalf("typing frame: %+v", f)
	}
	if f := BuildTyping("alice", false); f.Type != FrameStopTyping {
		t.Fatalf("stop_typing frame: %+v", f)
	}
}
