package chat

import (
	"time"

	"PairChat/middleware/security"
)

// Server wires the relay subsystem together: registry, fan-out pool,
// presence broadcaster, message relay, typing relay and the frame
// dispatcher. One Server per gateway process.
type Server struct {
	nodeID string

	reg      *Registry
	fanout   *Fanout
	presence *Presence
	relay    *Relay
	typing   *TypingRelay
	disp     *Dispatcher
	store    MessageStore

	authOpts              security.Options
	allowInsecureRegister bool
	sendQueueSize         int
}

type ServerConfig struct {
	NodeID                string
	FanoutWorkers         int
	FanoutQueue           int
	SendQueueSize         int
	AppendTimeout         time.Duration
	JwtSecret             []byte
	AllowInsecureRegister bool
}

func NewServer(cfg ServerConfig, store MessageStore, mirror PresenceMirror, bridge EventBridge) *Server {
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = 256
	}
	if cfg.FanoutQueue <= 0 {
		cfg.FanoutQueue = 4096
	}
	reg := NewRegistry()
	fanout := NewFanout(cfg.FanoutWorkers, cfg.FanoutQueue)

	s := &Server{
		nodeID:                cfg.NodeID,
		reg:                   reg,
		fanout:                fanout,
		presence:              NewPresence(reg, fanout, mirror, bridge),
		relay:                 NewRelay(reg, fanout, store, bridge, cfg.AppendTimeout),
		typing:                NewTypingRelay(reg, fanout),
		disp:                  NewDispatcher(),
		store:                 store,
		authOpts:              security.DefaultOptions(cfg.JwtSecret),
		allowInsecureRegister: cfg.AllowInsecureRegister,
		sendQueueSize:         cfg.SendQueueSize,
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.disp.Register(registerHandler{})
	s.disp.Register(sendMessageHandler{})
	s.disp.Register(typingHandler{})
	s.disp.Register(stopTypingHandler{})
}

func (s *Server) NodeID() string             { return s.nodeID }
func (s *Server) Registry() *Registry        { return s.reg }
func (s *Server) Presence() *Presence        { return s.presence }
func (s *Server) Relay() *Relay              { return s.relay }
func (s *Server) Typing() *TypingRelay       { return s.typing }
func (s *Server) Disp() *Dispatcher          { return s.disp }
func (s *Server) Store() MessageStore        { return s.store }
func (s *Server) AuthOpts() security.Options { return s.authOpts }

// DispatchFrame routes one inbound frame from a connection's read loop.
func (s *Server) DispatchFrame(f *Frame, c *Client) error {
	return s.disp.Dispatch(&ChatContext{S: s}, f, c)
}

// Disconnect tears a connection down: stop it being a fan-out target,
// re-evaluate presence, broadcast offline when this was the user's last
// connection.
func (s *Server) Disconnect(c *Client) {
	c.Close()
	s.presence.Drop(c.ConnID)
}

// Close shuts down the fan-out pool and closes every connection.
func (s *Server) Close() {
	for _, c := range s.reg.AllConns() {
		c.Close()
	}
	s.fanout.Close()
}
