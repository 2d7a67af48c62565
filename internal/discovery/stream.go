package discovery

import (
	"context"
	"net/http"
	"time"

	"github.com/amoralabs/amora-backend/internal/common/utils"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventMatchRunComplete tells a connected client fresh results are
// cached and ready to fetch.
const EventMatchRunComplete = "match_run_complete"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin enforcement happens at the gateway.
		return true
	},
}

// StreamEvent is the wire shape for pushed notifications.
type StreamEvent struct {
	Type     string      `json:"type"`
	SeekerID int64       `json:"seeker_id"`
	Data     interface{} `json:"data"`
}

type runCompleteData struct {
	RunID       string    `json:"run_id"`
	ResultCount int       `json:"result_count"`
	TopScore    float64   `json:"top_score"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan StreamEvent
	seekerID int64
}

// Hub fans run-completion events out to connected seekers. One stream
// per seeker; a newer connection replaces the old one.
type Hub struct {
	clients    map[int64]*Client
	broadcast  chan StreamEvent
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[int64]*Client),
		broadcast:  make(chan StreamEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			if old, ok := h.clients[client.seekerID]; ok {
				close(old.send)
			}
			h.clients[client.seekerID] = client
			h.logger.Debug("stream client connected",
				zap.Int64("seeker_id", client.seekerID))

		case client := <-h.unregister:
			if current, ok := h.clients[client.seekerID]; ok && current == client {
				delete(h.clients, client.seekerID)
				close(client.send)
				h.logger.Debug("stream client disconnected",
					zap.Int64("seeker_id", client.seekerID))
			}

		case event := <-h.broadcast:
			client, ok := h.clients[event.SeekerID]
			if !ok {
				continue
			}
			select {
			case client.send <- event:
			default:
				// Slow consumer; drop the connection, not the hub.
				delete(h.clients, event.SeekerID)
				close(client.send)
			}
		}
	}
}

// NotifyRunComplete pushes a completion event to the seeker's open
// stream, if any. It never blocks the caller beyond the hub buffer.
func (h *Hub) NotifyRunComplete(run *MatchRun) {
	data := runCompleteData{
		RunID:       run.RunID,
		ResultCount: len(run.Results),
		GeneratedAt: run.GeneratedAt,
	}
	for _, res := range run.Results {
		if res.Score > data.TopScore {
			data.TopScore = res.Score
		}
	}

	event := StreamEvent{
		Type:     EventMatchRunComplete,
		SeekerID: run.SeekerID,
		Data:     data,
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("stream buffer full, dropping event",
			zap.Int64("seeker_id", run.SeekerID))
	}
}

// ServeStream upgrades the request and subscribes the seeker.
func (h *Hub) ServeStream(w http.ResponseWriter, r *http.Request) {
	seekerID, err := pathID(r, "userID")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan StreamEvent, 16),
		seekerID: seekerID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
