package chat

import (
	"context"
	"encoding/json"

	"PairChat/logger"
	"PairChat/service/natsx"
)

// NatsBridge mirrors presence transitions and stored messages between
// gateway nodes so several processes form one logical service. Events carry
// the origin node id; each node ignores its own.
const (
	bizPresence = "presence"
	bizDeliver  = "deliver"

	subjectPresence = "pairchat.presence"
	subjectDeliver  = "pairchat.deliver"
)

type presenceEvent struct {
	Origin string `json:"origin"`
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

type deliverEvent struct {
	Origin  string         `json:"origin"`
	Message *StoredMessage `json:"message"`
}

type NatsBridge struct {
	origin string
	prod   *natsx.Producer
	client *natsx.Client
}

func NewNatsBridge(origin string, client *natsx.Client) (*NatsBridge, error) {
	routes := []natsx.Route{
		{Biz: bizPresence, Subject: subjectPresence},
		{Biz: bizDeliver, Subject: subjectDeliver},
	}
	for _, r := range routes {
		if err := client.RegisterRoute(r); err != nil {
			return nil, err
		}
	}
	return &NatsBridge{origin: origin, prod: natsx.NewProducer(client), client: client}, nil
}

func (b *NatsBridge) PublishPresence(userID string, online bool) error {
	data, err := json.Marshal(presenceEvent{Origin: b.origin, UserID: userID, Online: online})
	if err != nil {
		return err
	}
	return b.prod.Publish(bizPresence, data, nil)
}

func (b *NatsBridge) PublishDelivery(msg *StoredMessage) error {
	data, err := json.Marshal(deliverEvent{Origin: b.origin, Message: msg})
	if err != nil {
		return err
	}
	return b.prod.Publish(bizDeliver, data, nil)
}

// Subscribe attaches the bridge's consumers to the server: remote presence
// transitions and deliveries fan out to local connections only.
func (b *NatsBridge) Subscribe(s *Server) error {
	cons := natsx.NewConsumer(b.client)

	if err := cons.Subscribe(bizPresence, func(_ context.Context, m natsx.Message) error {
		var ev presenceEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			logger.Warnf("[bridge] bad presence event: %v", err)
			return err
		}
		if ev.Origin == b.origin {
			return nil
		}
		s.Presence().OnRemote(ev.UserID, ev.Online)
		return nil
	}); err != nil {
		return err
	}

	return cons.Subscribe(bizDeliver, func(_ context.Context, m natsx.Message) error {
		var ev deliverEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			logger.Warnf("[bridge] bad deliver event: %v", err)
			return err
		}
		if ev.Origin == b.origin || ev.Message == nil {
			return nil
		}
		s.Relay().DeliverRemote(ev.Message)
		return nil
	})
}
