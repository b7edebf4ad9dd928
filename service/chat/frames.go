package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"PairChat/tools/errs"
)

// FrameType discriminates the JSON envelope on the event channel.
type FrameType string

const (
	// client -> server
	FrameRegister    FrameType = "register"
	FrameSendMessage FrameType = "send_message"
	FrameTyping      FrameType = "typing"
	FrameStopTyping  FrameType = "stop_typing"

	// server -> client
	FrameRegisterAck      FrameType = "register_ack"
	FramePresenceSnapshot FrameType = "presence_snapshot"
	FrameStatusChanged    FrameType = "status_changed"
	FrameMessageDelivered FrameType = "message_delivered"
	FrameError            FrameType = "error"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Frame is the wire envelope. Sender identity is never read from a payload
// field for message/typing events; it always comes from the connection
// binding made at registration.
type Frame struct {
	Type FrameType `json:"type"`
	Ts   int64     `json:"ts,omitempty"`

	// register
	Token  string `json:"token,omitempty"`
	UserID string `json:"user_id,omitempty"` // also status_changed subject

	// status_changed
	Status string `json:"status,omitempty"`

	// presence_snapshot; no omitempty, an empty online list must stay []
	OnlineUserIDs []string `json:"online_user_ids"`

	// send_message / typing / stop_typing
	ReceiverID string `json:"receiver_id,omitempty"`
	Content    string `json:"content,omitempty"`

	// typing / stop_typing forwarded to the receiver
	Sender string `json:"sender,omitempty"`

	// message_delivered
	Message *StoredMessage `json:"message,omitempty"`

	// error
	Error *errs.CodeError `json:"error,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("unmarshal frame failed: %w", err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("frame has no type")
	}
	return f, nil
}

// EncodeFrame marshals f; marshal failure on these plain structs would be a
// programming error, so it panics via Must-style handling at call sites.
func EncodeFrame(f *Frame) []byte {
	data, err := json.Marshal(f)
	if err != nil {
		panic(fmt.Sprintf("encode frame type=%s: %v", f.Type, err))
	}
	return data
}

func nowMilli() int64 { return time.Now().UnixMilli() }

// ---- server-side frame builders ----

func BuildRegisterAck(userID string) *Frame {
	return &Frame{Type: FrameRegisterAck, UserID: userID, Ts: nowMilli()}
}

func BuildSnapshot(online []string) *Frame {
	if online == nil {
		online = []string{}
	}
	return &Frame{Type: FramePresenceSnapshot, OnlineUserIDs: online, Ts: nowMilli()}
}

func BuildStatusChanged(userID string, online bool) *Frame {
	status := StatusOffline
	if online {
		status = StatusOnline
	}
	return &Frame{Type: FrameStatusChanged, UserID: userID, Status: status, Ts: nowMilli()}
}

func BuildDelivered(msg *StoredMessage) *Frame {
	return &Frame{Type: FrameMessageDelivered, Message: msg, Ts: nowMilli()}
}

func BuildTyping(sender string, typing bool) *Frame {
	t := FrameTyping
	if !typing {
		t = FrameStopTyping
	}
	return &Frame{Type: t, Sender: sender, Ts: nowMilli()}
}

func BuildError(ce *errs.CodeError) *Frame {
	return &Frame{Type: FrameError, Error: ce, Ts: nowMilli()}
}
