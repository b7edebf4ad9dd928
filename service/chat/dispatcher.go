package chat

import (
	"PairChat/logger"
	"PairChat/tools/errs"
)

// Handler processes one inbound frame type.
type Handler interface {
	Type() FrameType
	Handle(ctx *ChatContext, f *Frame, c *Client) error
}

// ChatContext carries the server into handlers.
type ChatContext struct {
	S *Server
}

type Dispatcher struct {
	handlers map[FrameType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[FrameType]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Type()] = h }

// Dispatch routes f to its handler. An unknown type is answered with a coded
// error frame on the originating connection and logged; the connection stays
// open.
func (d *Dispatcher) Dispatch(ctx *ChatContext, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		logger.Warnf("[Dispatch] no handler for type=%s conn=%s", f.Type, c.ConnID)
		c.Enqueue(EncodeFrame(BuildError(errs.ErrUnknownType.WithDetail(string(f.Type)))))
		return errs.ErrUnknownType
	}
	return h.Handle(ctx, f, c)
}
