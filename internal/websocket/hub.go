package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// NewUpgrader accepts connections whose Origin is in allowed, or any origin
// when allowed is empty.
func NewUpgrader(allowed []string) websocket.Upgrader {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(set) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := set[origin]
			return ok
		},
	}
}

// Hub fans journal events out to every open connection of an account.
type Hub struct {
	clients    map[int64]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run serves registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		}
	}
}

// Attach hands client to the running hub. It reports false once the hub has
// stopped; the caller then owns the connection and should close it.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.AccountID]; !ok {
		h.clients[client.AccountID] = make(map[*Client]bool)
	}
	h.clients[client.AccountID][client] = true
	h.log.Debug().Int64("account_id", client.AccountID).Msg("client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if accountClients, ok := h.clients[client.AccountID]; ok {
		if _, ok := accountClients[client]; ok {
			delete(accountClients, client)
			close(client.send)
			if len(accountClients) == 0 {
				delete(h.clients, client.AccountID)
			}
			h.log.Debug().Int64("account_id", client.AccountID).Msg("client unregistered")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, accountClients := range h.clients {
		for client := range accountClients {
			close(client.send)
		}
		delete(h.clients, id)
	}
}

// Connections reports the number of open connections for an account.
func (h *Hub) Connections(accountID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) PublishEvent(accountID int64, eventData []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if accountClients, ok := h.clients[accountID]; ok {
		for client := range accountClients {
			select {
			case client.send <- eventData:
			default:
				h.log.Warn().Int64("account_id", accountID).Msg("client send buffer is full, dropping message")
			}
		}
	}
}
