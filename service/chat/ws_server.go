package chat

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"PairChat/logger"
	"PairChat/middleware/security"
	"PairChat/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection's read loop. One
// frame is handled at a time, so per-connection events are processed in the
// order received and a send_message completes (including the persistence
// call) before the next frame of this connection is read.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[HandleWS] upgrade failed: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), ws, s.sendQueueSize)
	s.reg.Track(client)
	go client.WritePump()

	logger.Infof("[HandleWS] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[HandleWS] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[HandleWS] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[HandleWS] read err conn=%s err=%v", client.ConnID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[HandleWS] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		// handler errors are already answered/logged; the loop keeps reading
		_ = s.DispatchFrame(frame, client)
	}

	s.Disconnect(client)
	logger.Infof("[HandleWS] disconnected conn=%s user=%s", client.ConnID, client.UserID)
}

// HandleHistory serves the initial conversation load between the
// authenticated user and :peer. REST because it is a one-shot query, not an
// event.
func (s *Server) HandleHistory(c *gin.Context) {
	userID := security.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}
	peer := c.Param("peer")
	if peer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing peer"})
		return
	}
	limit := int64(200)
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}

	msgs, err := s.store.History(c.Request.Context(), userID, peer, limit)
	if err != nil {
		logger.Errorf("[HandleHistory] user=%s peer=%s err=%v", userID, peer, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "history load failed"})
		return
	}
	if msgs == nil {
		msgs = []*StoredMessage{}
	}
	c.JSON(http.StatusOK, msgs)
}
