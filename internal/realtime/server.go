// Package realtime is the HTTP side of the service: health, the websocket
// event feed, read-only calendar exports and the grpc-web fallback.
package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/schedule"
)

type Server struct {
	svc      *schedule.Service
	hub      *fanout.Hub
	secret   string
	bridge   http.Handler
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

// New builds the HTTP surface. bridge, when set, serves every request no
// route matches.
func New(svc *schedule.Service, hub *fanout.Hub, secret string, bridge http.Handler, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		svc:    svc,
		hub:    hub,
		secret: secret,
		bridge: bridge,
		log:    log.WithField("component", "realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.JWTAuth(), s.serveWS)

	cal := r.Group("/calendar/:userId", s.JWTAuth())
	cal.GET("/days", s.days)
	cal.GET("/ics", s.ics)

	if s.bridge != nil {
		r.NoRoute(gin.WrapH(s.bridge))
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request")
			return
		}
		entry.Debug("request")
	}
}

// writeError maps service errors to HTTP statuses with a JSON body.
func (s *Server) writeError(c *gin.Context, op string, err error) {
	var code int
	switch {
	case errors.Is(err, schedule.ErrInvalidRange):
		code = http.StatusBadRequest
	case errors.Is(err, schedule.ErrUnauthorized):
		code = http.StatusForbidden
	case errors.Is(err, schedule.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, schedule.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, schedule.ErrInvalidState):
		code = http.StatusUnprocessableEntity
	default:
		s.log.WithField("op", op).WithError(err).Error("unexpected error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
