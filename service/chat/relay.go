package chat

import (
	"context"
	"strings"
	"time"

	"PairChat/logger"
	"PairChat/tools/errs"
	"PairChat/tools/ids"
)

// Relay validates, persists, and fans out message sends. Persist-then-fanout
// is the invariant: no connection ever sees a message that was not durably
// appended first.
type Relay struct {
	reg           *Registry
	fanout        *Fanout
	store         MessageStore
	bridge        EventBridge // optional
	appendTimeout time.Duration
}

func NewRelay(reg *Registry, fanout *Fanout, store MessageStore, bridge EventBridge, appendTimeout time.Duration) *Relay {
	if appendTimeout <= 0 {
		appendTimeout = 5 * time.Second
	}
	return &Relay{reg: reg, fanout: fanout, store: store, bridge: bridge, appendTimeout: appendTimeout}
}

// Send resolves the sender from the connection binding, appends to the store
// and delivers the stored record to every connection of both the sender and
// the receiver. On any failure the error goes back to the originating
// connection only and nothing is fanned out.
func (r *Relay) Send(ctx context.Context, c *Client, receiverID, content string) (*StoredMessage, *errs.CodeError) {
	sender := c.UserID
	if sender == "" {
		return nil, errs.ErrUnbound
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrValidation.WithDetail("empty content")
	}
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, errs.ErrValidation.WithDetail("missing receiver")
	}
	if receiverID == sender {
		return nil, errs.ErrValidation.WithDetail("receiver must differ from sender")
	}

	msg := &StoredMessage{
		ID:        ids.GenerateString(),
		Sender:    sender,
		Receiver:  receiverID,
		Content:   content,
		CreatedAt: time.Now().UnixMilli(),
		Read:      false,
	}

	actx, cancel := context.WithTimeout(ctx, r.appendTimeout)
	defer cancel()
	stored, err := r.store.Append(actx, msg)
	if err != nil {
		logger.Errorf("[Relay] append failed sender=%s receiver=%s err=%v", sender, receiverID, err)
		return nil, errs.ErrPersistence.WithDetail(err.Error())
	}

	r.deliver(stored)

	if r.bridge != nil {
		if err := r.bridge.PublishDelivery(stored); err != nil {
			logger.Warnf("[Relay] bridge publish id=%s err=%v", stored.ID, err)
		}
	}
	return stored, nil
}

// deliver fans the stored message out to the sender's and the receiver's
// connection sets. Two sets on purpose: a sender with several open devices
// sees their own outgoing message echoed everywhere. The fan-out targets are
// whatever is open at this moment; a sender connection that vanished while
// the append was in flight is simply absent from the set.
func (r *Relay) deliver(stored *StoredMessage) {
	payload := EncodeFrame(BuildDelivered(stored))
	r.fanout.Broadcast(r.reg.ConnsFor(stored.Sender), payload)
	r.fanout.Broadcast(r.reg.ConnsFor(stored.Receiver), payload)
}

// DeliverRemote applies a delivery event from another gateway node: fan out
// to local connections of both parties, skip persistence (the origin node
// already appended it) and skip re-publishing.
func (r *Relay) DeliverRemote(stored *StoredMessage) {
	r.deliver(stored)
}
