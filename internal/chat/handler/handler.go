// Package handler serves the hosted estimate chat over REST and WebSocket.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spartan_estimator/internal/chat/transport"
	"spartan_estimator/internal/estimate/session"
	"spartan_estimator/platform/apperr"
	"spartan_estimator/platform/httpkit"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	msgInvalidRequest  = "invalid request"
	msgSessionNotFound = "session not found"

	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsOutboundSize = 64
)

// SessionStore is the part of session.Manager the handler needs.
type SessionStore interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(id string) (*session.Session, error)
	End(id string) error
}

// OriginPolicy decides which browser origins may open a WebSocket.
type OriginPolicy struct {
	AllowAll bool
	Origins  []string
}

// Handler handles chat HTTP requests.
type Handler struct {
	sessions SessionStore
	val      *validator.Validator
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// New creates a new chat handler.
func New(sessions SessionStore, val *validator.Validator, origins OriginPolicy, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		val:      val,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     origins.check,
		},
	}
}

// RegisterRoutes mounts the session routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.End)
	rg.POST("/:id/messages", h.Send)
	rg.GET("/:id/ws", h.Stream)
}

// Create opens a session and returns it with the greeting.
// POST /api/v1/chat/sessions
func (h *Handler) Create(c *gin.Context) {
	s, err := h.sessions.Create(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, s.State())
}

// Get returns the transcript, flags and quote of a session.
// GET /api/v1/chat/sessions/:id
func (h *Handler) Get(c *gin.Context) {
	s, err := h.lookup(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, s.State())
}

// End discards a session.
// DELETE /api/v1/chat/sessions/:id
func (h *Handler) End(c *gin.Context) {
	if err := h.sessions.End(c.Param("id")); err != nil {
		httpkit.HandleError(c, mapSessionError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Send processes one visitor message and returns the session after the reply.
// POST /api/v1/chat/sessions/:id/messages
func (h *Handler) Send(c *gin.Context) {
	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	s, err := h.lookup(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	if err := s.Send(c.Request.Context(), req.Content); err != nil {
		httpkit.HandleError(c, mapSessionError(err))
		return
	}
	httpkit.OK(c, s.State())
}

// Stream upgrades to a WebSocket. Text frames in are visitor messages; every
// message appended to the transcript is pushed out.
// GET /api/v1/chat/sessions/:id/ws
func (h *Handler) Stream(c *gin.Context) {
	s, err := h.lookup(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := h.log.WithSessionID(s.ID())
	messages, unsubscribe := s.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	outbound := make(chan transport.ServerFrame, wsOutboundSize)
	state := s.State()
	outbound <- transport.ServerFrame{Type: transport.FrameState, State: &state}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeLoop(ctx, cancel, conn, messages, outbound, log)
	}()

	conn.SetReadLimit(transport.MaxContentBytes + 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if msgType != websocket.TextMessage {
			continue
		}

		if err := s.Send(ctx, frameContent(data)); err != nil {
			select {
			case outbound <- transport.ServerFrame{Type: transport.FrameError, Error: err.Error()}:
			default:
			}
			if errors.Is(err, session.ErrClosed) {
				break
			}
		}
	}

	cancel()
	<-writerDone
}

// writeLoop is the only writer on conn.
func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, messages <-chan session.Message, outbound <-chan transport.ServerFrame, log *logger.Logger) {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	write := func(frame transport.ServerFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			log.Debug("websocket write failed", "error", err)
			cancel()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbound:
			if !write(frame) {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(wsWriteTimeout))
				cancel()
				return
			}
			if !write(transport.ServerFrame{Type: transport.FrameMessage, Message: &msg}) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cancel()
				return
			}
		}
	}
}

// frameContent accepts a ClientFrame or, failing that, the raw text.
func frameContent(data []byte) string {
	var frame transport.ClientFrame
	if err := json.Unmarshal(data, &frame); err == nil && (frame.Type == "" || frame.Type == transport.FrameMessage) {
		return frame.Content
	}
	return string(data)
}

func (h *Handler) lookup(id string) (*session.Session, error) {
	s, err := h.sessions.Get(id)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return s, nil
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return apperr.NotFound(msgSessionNotFound)
	case session.IsRejection(err):
		return apperr.Conflict(err.Error())
	default:
		return apperr.Wrap(apperr.KindInternal, "chat session failure", err)
	}
}

// check allows non-browser clients, the configured origins, and same-host pages.
func (p OriginPolicy) check(r *http.Request) bool {
	if p.AllowAll {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, allowed := range p.Origins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
