package chat

import (
	"sync"

	"PairChat/logger"
	"PairChat/tools/safe"
)

// Presence propagates online/offline transitions and seeds new connections
// with the current online set.
//
// Transitions and their status_changed broadcasts are submitted under one
// mutex: an offline racing an online for the same user cannot enqueue their
// frames in inverted order, so the last frame observers see always matches
// the registry's final state.
type Presence struct {
	mu     sync.Mutex
	reg    *Registry
	fanout *Fanout
	mirror PresenceMirror // optional
	bridge EventBridge    // optional
}

func NewPresence(reg *Registry, fanout *Fanout, mirror PresenceMirror, bridge EventBridge) *Presence {
	return &Presence{reg: reg, fanout: fanout, mirror: mirror, bridge: bridge}
}

// Bind registers c under userID, broadcasts the online transition when this
// was the user's first connection, and seeds c with a snapshot. The snapshot
// is computed under the same lock as the registration, so it is at least as
// fresh as the moment the connection registered.
func (p *Presence) Bind(c *Client, userID string) (cameOnline bool) {
	p.mu.Lock()
	cameOnline = p.reg.Register(c, userID)
	if cameOnline {
		p.submitStatus(userID, true)
	}
	snapshot := p.reg.Snapshot()
	p.mu.Unlock()

	c.Enqueue(EncodeFrame(BuildSnapshot(snapshot)))
	if cameOnline {
		p.propagate(userID, true)
	}
	return cameOnline
}

// Drop unregisters the connection and broadcasts the offline transition when
// it was the user's last one. Unknown connections are a no-op.
func (p *Presence) Drop(connID string) (userID string, wentOffline bool) {
	p.mu.Lock()
	userID, wentOffline = p.reg.Unregister(connID)
	if wentOffline {
		p.submitStatus(userID, false)
	}
	p.mu.Unlock()

	if wentOffline {
		p.propagate(userID, false)
	}
	return userID, wentOffline
}

// OnRemote applies a presence transition received from another gateway node.
// It is broadcast locally but never mirrored or re-published.
func (p *Presence) OnRemote(userID string, online bool) {
	p.mu.Lock()
	p.submitStatus(userID, online)
	p.mu.Unlock()
}

// submitStatus enqueues the broadcast onto the fanout queue; callers hold mu.
func (p *Presence) submitStatus(userID string, online bool) {
	p.fanout.Broadcast(p.reg.AllConns(), EncodeFrame(BuildStatusChanged(userID, online)))
}

// propagate runs the best-effort side effects outside the lock.
func (p *Presence) propagate(userID string, online bool) {
	if p.mirror != nil {
		safe.Go(func() {
			var err error
			if online {
				err = p.mirror.Online(userID)
			} else {
				err = p.mirror.Offline(userID)
			}
			if err != nil {
				logger.Warnf("[Presence] mirror user=%s online=%v err=%v", userID, online, err)
			}
		})
	}
	if p.bridge != nil {
		if err := p.bridge.PublishPresence(userID, online); err != nil {
			logger.Warnf("[Presence] bridge publish user=%s err=%v", userID, err)
		}
	}
}
