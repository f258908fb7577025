package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Channel the ingestion worker publishes per-user events on.
const updatesChannelPrefix = "user_updates:"

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans ingestion progress events out to a user's open sockets. Each
// user with at least one connection holds a single Redis subscription;
// the last disconnect tears it down.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]map[*websocket.Conn]struct{}
	unsubs    map[uuid.UUID]context.CancelFunc
	pubsub    *redis.Client
	jwtSecret []byte
}

func NewHub(pubsubClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		clients:   make(map[uuid.UUID]map[*websocket.Conn]struct{}),
		unsubs:    make(map[uuid.UUID]context.CancelFunc),
		pubsub:    pubsubClient,
		jwtSecret: []byte(jwtSecret),
	}
}

// HandleWebSocket upgrades the connection after validating the access
// token passed as a query parameter. Browsers cannot set an
// Authorization header on a WebSocket handshake.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(r.URL.Query().Get("token"))
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for user %s: %v", userID, err)
		return
	}

	h.attach(userID, conn)

	go func() {
		defer h.detach(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) authenticate(tokenStr string) (uuid.UUID, bool) {
	if tokenStr == "" {
		return uuid.Nil, false
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Hub) attach(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[userID][conn] = struct{}{}

	// First socket for this user starts the subscription.
	if len(h.clients[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.unsubs[userID] = cancel
		go h.streamUserEvents(ctx, userID)
	}

	log.Printf("WebSocket connected: user %s (%d open)", userID, len(h.clients[userID]))
}

func (h *Hub) detach(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	delete(h.clients[userID], conn)

	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
		if cancel, ok := h.unsubs[userID]; ok {
			cancel()
			delete(h.unsubs, userID)
		}
	}

	log.Printf("WebSocket disconnected: user %s", userID)
}

func (h *Hub) streamUserEvents(ctx context.Context, userID uuid.UUID) {
	sub := h.pubsub.Subscribe(ctx, updatesChannelPrefix+userID.String())
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.fanOut(userID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) fanOut(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients[userID] {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// SendToUser pushes a message straight to a user's sockets, bypassing
// Redis. Used for process-local events.
func (h *Hub) SendToUser(userID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.fanOut(userID, data)
}
