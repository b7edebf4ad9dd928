package chat

import (
	"PairChat/tools/errs"
)

// TypingRelay forwards ephemeral typing hints. Nothing is persisted or
// queued: an offline receiver simply never hears about it. Idle expiry is the
// sender side's job (debounced stop_typing); the relay holds no timers.
type TypingRelay struct {
	reg    *Registry
	fanout *Fanout
}

func NewTypingRelay(reg *Registry, fanout *Fanout) *TypingRelay {
	return &TypingRelay{reg: reg, fanout: fanout}
}

// Forward relays a typing or stop_typing signal from c to every connection
// of receiverID. Fire-and-forget: no ack, no error back to the sender except
// for an unbound connection.
func (t *TypingRelay) Forward(c *Client, receiverID string, typing bool) *errs.CodeError {
	sender := c.UserID
	if sender == "" {
		return errs.ErrUnbound
	}
	if receiverID == "" {
		return errs.ErrValidation.WithDetail("missing receiver")
	}
	conns := t.reg.ConnsFor(receiverID)
	if len(conns) == 0 {
		return nil // receiver offline: silently dropped
	}
	t.fanout.Broadcast(conns, EncodeFrame(BuildTyping(sender, typing)))
	return nil
}
