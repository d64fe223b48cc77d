package realtime

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/fanout"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// clientMessage is what a browser sends to follow or stop following
// someone's calendar.
type clientMessage struct {
	Action          string `json:"action"`
	CalendarOwnerID string `json:"calendarOwnerId"`
}

type wsClient struct {
	conn *websocket.Conn
	hub  *fanout.Hub
	sub  *fanout.Subscriber
	log  *logrus.Entry
}

func (s *Server) serveWS(c *gin.Context) {
	me := c.GetString(ctxUserID)
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sub := s.hub.Subscribe(fanout.UserGroup(me))
	cl := &wsClient{
		conn: conn,
		hub:  s.hub,
		sub:  sub,
		log:  s.log.WithFields(logrus.Fields{"user": me, "subscriber": sub.ID}),
	}
	cl.log.Debug("websocket connected")

	go cl.writePump()
	cl.readPump()
}

// readPump owns the read side and handles subscribe/unsubscribe requests.
// It closes the subscriber on exit, which ends writePump.
func (cl *wsClient) readPump() {
	defer func() {
		cl.sub.Close()
		cl.conn.Close()
		cl.log.Debug("websocket disconnected")
	}()
	cl.conn.SetReadLimit(maxMessage)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.log.WithError(err).Warn("unexpected websocket close")
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.CalendarOwnerID == "" {
			cl.log.Debug("ignoring malformed client message")
			continue
		}
		switch msg.Action {
		case "subscribe":
			cl.sub.Join(fanout.CalendarGroup(msg.CalendarOwnerID))
		case "unsubscribe":
			cl.sub.Leave(fanout.CalendarGroup(msg.CalendarOwnerID))
		default:
			cl.log.WithField("action", msg.Action).Debug("unknown action")
		}
	}
}

// writePump is the only writer on conn.
func (cl *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-cl.sub.Events():
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the subscriber was dropped or closed
				code, reason := websocket.CloseTryAgainLater, "subscriber closed"
				if cl.hub.Closed() {
					code, reason = websocket.CloseGoingAway, "server shutting down"
				}
				cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				cl.log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
