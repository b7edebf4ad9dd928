package chat

import (
	"context"
	"testing"
	"time"

	"PairChat/tools/errs"
)

// ---- in-memory test fixtures ----

// memStore is the MessageStore used by unit tests; failNext makes the next
// append fail to exercise the persistence-error path.
type memStore struct {
	msgs     []*StoredMessage
	failNext bool
	appends  int
}

func (s *memStore) Append(_ context.Context, msg *StoredMessage) (*StoredMessage, error) {
	s.appends++
	if s.failNext {
		s.failNext = false
		return nil, errs.New("store down")
	}
	cp := *msg
	s.msgs = append(s.msgs, &cp)
	return &cp, nil
}

func (s *memStore) History(_ context.Context, a, b string, limit int64) ([]*StoredMessage, error) {
	var out []*StoredMessage
	for _, m := range s.msgs {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, store MessageStore) *Server {
	t.Helper()
	if store == nil {
		store = &memStore{}
	}
	s := NewServer(ServerConfig{
		NodeID:                "test_node",
		FanoutWorkers:         1,
		FanoutQueue:           128,
		SendQueueSize:         32,
		AppendTimeout:         time.Second,
		JwtSecret:             []byte("test-secret"),
		AllowInsecureRegister: true,
	}, store, nil, nil)
	t.Cleanup(s.Close)
	return s
}

// connect creates an in-memory client, tracks it and registers it as userID.
func connect(t *testing.T, s *Server, userID string) *Client {
	t.Helper()
	c := NewClient("conn-"+userID+"-"+time.Now().Format("150405.000000000"), nil, 32)
	s.Registry().Track(c)
	s.Presence().Bind(c, userID)
	return c
}

// recvFrame waits for the next frame on c's outbound queue.
func recvFrame(t *testing.T, c *Client) *Frame {
	t.Helper()
	select {
	case payload := <-c.Send:
		f, err := ParseFrame(payload)
		if err != nil {
			t.Fatalf("received unparseable frame: %v", err)
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame on conn=%s", c.ConnID)
		return nil
	}
}

// recvFrameOfType drains frames until one of the wanted type arrives.
func recvFrameOfType(t *testing.T, c *Client, want FrameType) *Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case payload := <-c.Send:
			f, err := ParseFrame(payload)
			if err != nil {
				t.Fatalf("received unparseable frame: %v", err)
			}
			if f.Type == want {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s on conn=%s", want, c.ConnID)
			return nil
		}
	}
}

// expectNoFrame asserts nothing arrives on c within the window.
func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		f, _ := ParseFrame(payload)
		t.Fatalf("unexpected frame on conn=%s: %+v", c.ConnID, f)
	case <-time.After(100 * time.Millisecond):
	}
}

// drain empties c's queue (snapshots, acks) before an assertion phase.
func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

// settle gives the single fanout worker time to flush queued jobs.
func settle() { time.Sleep(50 * time.Millisecond) }
