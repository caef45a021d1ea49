package services

import (
	"net/http"
	"time"

	"tasknotes/backend/broker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type WebSocketServiceInterface interface {
	HandleConnection(c *gin.Context, userID uuid.UUID)
}

// WebSocketService streams a user's note events to their open connections.
// Clients only listen; anything they send is discarded.
type WebSocketService struct {
	broker   broker.Broker
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWebSocketService(b broker.Broker, allowedOrigins []string, log *zap.Logger) *WebSocketService {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketService{
		broker: b,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

func (ws *WebSocketService) HandleConnection(c *gin.Context, userID uuid.UUID) {
	// Subscribe before upgrading so no event published after the handshake is missed.
	sub, err := ws.broker.Subscribe(broker.NoteSubject(userID))
	if err != nil {
		ws.log.Error("websocket subscribe failed", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		_ = sub.Unsubscribe()
		ws.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ws.log.Debug("websocket connected", zap.String("user_id", userID.String()))

	done := make(chan struct{})
	go ws.readPump(conn, done)
	go ws.writePump(conn, sub, done, userID)
}

// readPump keeps the read deadline fresh and reports when the peer goes away.
func (ws *WebSocketService) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (ws *WebSocketService) writePump(conn *websocket.Conn, sub broker.Subscription, done <-chan struct{}, userID uuid.UUID) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.Unsubscribe()
		conn.Close()
		ws.log.Debug("websocket disconnected", zap.String("user_id", userID.String()))
	}()

	for {
		select {
		case msg := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
