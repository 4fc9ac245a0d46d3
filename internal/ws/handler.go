package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is what subscribers send: explicit join/leave signals carrying
// the group id. Nothing else is accepted on the read side.
type clientFrame struct {
	Event   string `json:"event"`
	GroupID int    `json:"group_id"`
}

// ackFrame answers a client frame.
type ackFrame struct {
	Event   string `json:"event"`
	GroupID int    `json:"group_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// groupAuthorizer is the capability check the join path consults.
type groupAuthorizer interface {
	CanAccessGroup(ctx context.Context, id auth.Identity, groupID int) (auth.Access, error)
}

// SocketHandler owns the realtime endpoint: it upgrades connections and runs
// the join/leave protocol against the hub.
type SocketHandler struct {
	hub    *Hub
	authz  groupAuthorizer
	logger *zap.Logger
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(hub *Hub, authz groupAuthorizer, logger *zap.Logger) *SocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketHandler{hub: hub, authz: authz, logger: logger}
}

// Handle upgrades the connection and serves join/leave frames until the
// client disconnects. Subscriptions are explicit: a connection joins nothing
// until its first group:join, and may hold several groups at once.
func (h *SocketHandler) Handle(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	_, span := otel.Tracer("cohort-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	cl := newClient(conn, ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		Role:        identity.Role,
		IP:          c.ClientIP(),
		RequestID:   c.GetHeader("X-Request-ID"),
		ConnectedAt: time.Now(),
	})

	observability.IncWSActive()
	observability.IncWSEvent("connect")
	h.logger.Info("websocket connected",
		zap.String("conn_id", cl.info.ConnID), zap.Int("user_id", cl.info.UserID))

	// The request context dies with this handler; the read loop outlives it.
	go h.readLoop(context.Background(), cl, identity)
}

func (h *SocketHandler) readLoop(ctx context.Context, cl *client, identity auth.Identity) {
	defer func() {
		h.hub.leaveAll(cl)
		cl.close()
		observability.DecWSActive()
		observability.IncWSEvent("disconnect")
		h.logger.Info("websocket disconnected",
			zap.String("conn_id", cl.info.ConnID),
			zap.Int("user_id", cl.info.UserID),
			zap.Duration("connected_for", time.Since(cl.info.ConnectedAt)))
	}()

	for {
		var frame clientFrame
		if err := cl.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", zap.String("conn_id", cl.info.ConnID), zap.Error(err))
			}
			return
		}

		switch frame.Event {
		case "group:join":
			h.handleJoin(ctx, cl, identity, frame.GroupID)
		case "group:leave":
			h.hub.leave(frame.GroupID, cl)
			observability.IncWSEvent("leave")
			h.writeFrame(cl, ackFrame{Event: "group:left", GroupID: frame.GroupID})
		default:
			h.writeFrame(cl, ackFrame{Event: "error", Error: "unknown event"})
		}
	}
}

func (h *SocketHandler) handleJoin(ctx context.Context, cl *client, identity auth.Identity, groupID int) {
	access, err := h.authz.CanAccessGroup(ctx, identity, groupID)
	if err != nil {
		h.writeFrame(cl, ackFrame{Event: "error", GroupID: groupID, Error: "membership check failed"})
		return
	}
	if !access.Read {
		h.writeFrame(cl, ackFrame{Event: "error", GroupID: groupID, Error: "not a member"})
		return
	}

	h.hub.join(groupID, cl)
	observability.IncWSEvent("join")
	h.writeFrame(cl, ackFrame{Event: "group:joined", GroupID: groupID})
}

func (h *SocketHandler) writeFrame(cl *client, frame ackFrame) {
	if err := cl.writeJSON(frame); err != nil {
		h.logger.Warn("websocket ack write failed", zap.Error(err))
	}
}
