package natsx

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

type Producer struct{ c *Client }

func NewProducer(c *Client) *Producer { return &Producer{c: c} }

// Publish sends data on the subject registered for biz.
func (p *Producer) Publish(biz string, data []byte, hdr map[string]string) error {
	r, ok := p.c.route(biz)
	if !ok {
		return fmt.Errorf("route not found: %s", biz)
	}
	if len(hdr) == 0 {
		return p.c.nc.Publish(r.Subject, data)
	}
	msg := nats.NewMsg(r.Subject)
	msg.Data = data
	for k, v := range hdr {
		msg.Header.Set(k, v)
	}
	return p.c.nc.PublishMsg(msg)
}
