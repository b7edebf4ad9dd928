package chat

import (
	"context"

	"PairChat/logger"
	"PairChat/middleware/security"
	"PairChat/tools/errs"
)

// registerHandler binds a connection to a user identity. The identity comes
// from the verified handshake token; the plain user_id field is honored only
// when AllowInsecureRegister is on (local development).
type registerHandler struct{}

func (registerHandler) Type() FrameType { return FrameRegister }

func (registerHandler) Handle(ctx *ChatContext, f *Frame, c *Client) error {
	s := ctx.S

	var userID string
	switch {
	case f.Token != "":
		uid, err := security.Verify(s.authOpts, f.Token)
		if err != nil {
			logger.Warnf("[register] token rejected conn=%s err=%v", c.ConnID, err)
			c.Enqueue(EncodeFrame(BuildError(errs.ErrAuth.WithDetail(err.Error()))))
			return errs.ErrAuth
		}
		userID = uid
	case s.allowInsecureRegister && f.UserID != "":
		userID = f.UserID
	default:
		c.Enqueue(EncodeFrame(BuildError(errs.ErrAuth.WithDetail("register requires token"))))
		return errs.ErrAuth
	}

	// the binding is immutable; the read loop runs this, so no race on UserID
	if bound := c.UserID; bound != "" {
		if bound != userID {
			logger.Warnf("[register] rebind refused conn=%s bound=%s asked=%s", c.ConnID, bound, userID)
			c.Enqueue(EncodeFrame(BuildError(errs.ErrValidation.WithDetail("connection already bound"))))
			return errs.ErrValidation
		}
		c.Enqueue(EncodeFrame(BuildRegisterAck(bound)))
		return nil
	}

	c.Enqueue(EncodeFrame(BuildRegisterAck(userID)))
	cameOnline := s.Presence().Bind(c, userID)
	logger.Infof("[register] conn=%s user=%s cameOnline=%v", c.ConnID, userID, cameOnline)
	return nil
}

// sendMessageHandler runs the relay. The handler is invoked from the
// connection's read loop, so a connection has at most one send in flight:
// the next frame is not read until this one is answered.
type sendMessageHandler struct{}

func (sendMessageHandler) Type() FrameType { return FrameSendMessage }

func (sendMessageHandler) Handle(ctx *ChatContext, f *Frame, c *Client) error {
	_, cerr := ctx.S.Relay().Send(context.Background(), c, f.ReceiverID, f.Content)
	if cerr != nil {
		logger.Warnf("[send_message] rejected conn=%s code=%d detail=%s", c.ConnID, cerr.Code, cerr.Detail)
		c.Enqueue(EncodeFrame(BuildError(cerr)))
		return cerr
	}
	return nil
}

// typingHandler and stopTypingHandler forward hints. Fire-and-forget: the
// emitter gets no ack and no error frame; rejects are only logged.
type typingHandler struct{}

func (typingHandler) Type() FrameType { return FrameTyping }

func (typingHandler) Handle(ctx *ChatContext, f *Frame, c *Client) error {
	if cerr := ctx.S.Typing().Forward(c, f.ReceiverID, true); cerr != nil {
		logger.Warnf("[typing] rejected conn=%s code=%d", c.ConnID, cerr.Code)
		return cerr
	}
	return nil
}

type stopTypingHandler struct{}

func (stopTypingHandler) Type() FrameType { return FrameStopTyping }

func (stopTypingHandler) Handle(ctx *ChatContext, f *Frame, c *Client) error {
	if cerr := ctx.S.Typing().Forward(c, f.ReceiverID, false); cerr != nil {
		logger.Warnf("[stop_typing] rejected conn=%s code=%d", c.ConnID, cerr.Code)
		return cerr
	}
	return nil
}
