package natsx

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type Message struct {
	Subject string
	Data    []byte
	Header  map[string]string
}

type Handler func(ctx context.Context, msg Message) error

// Middleware wraps a Handler; chained outermost-first.
type Middleware func(Handler) Handler

func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type Consumer struct {
	c   *Client
	mws []Middleware
}

func NewConsumer(c *Client, mws ...Middleware) *Consumer {
	return &Consumer{c: c, mws: mws}
}

// Subscribe attaches h to the subject registered for biz.
func (cs *Consumer) Subscribe(biz string, h Handler) error {
	r, ok := cs.c.route(biz)
	if !ok {
		return fmt.Errorf("route not found: %s", biz)
	}
	h = Chain(h, cs.mws...)

	cb := func(m *nats.Msg) {
		_ = h(context.Background(), Message{
			Subject: m.Subject,
			Data:    append([]byte(nil), m.Data...),
			Header:  headerToMap(m.Header),
		})
	}

	var (
		sub *nats.Subscription
		err error
	)
	if r.Queue == "" {
		sub, err = cs.c.nc.Subscribe(r.Subject, cb)
	} else {
		sub, err = cs.c.nc.QueueSubscribe(r.Subject, r.Queue, cb)
	}
	if err != nil {
		return err
	}
	_ = sub.SetPendingLimits(1_000_000, 64*1024*1024)

	cs.c.mu.Lock()
	cs.c.subs[biz] = sub
	cs.c.mu.Unlock()
	return nil
}

func headerToMap(h nats.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
