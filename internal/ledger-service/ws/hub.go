package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ClientMsg é a mensagem de controle enviada pelo dashboard.
type ClientMsg struct {
	Type   string `json:"type"` // "subscribe" | "unsubscribe" | "ping"
	UserID string `json:"userId"`
}

// client embrulha a conexão com um mutex de escrita: o websocket permite um
// único escritor por vez, e broadcast e pong saem de goroutines diferentes.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket do dashboard e assinaturas por usuário
// subs: mapeia userID para o conjunto de conexões inscritas
//
// OnFirstSub/OnLastUnsub (opcionais) avisam quando o primeiro cliente de um
// usuário chega e quando o último sai — usados para ligar e desligar a
// sincronização ao vivo daquele usuário.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// userID -> set of connections
	subs map[string]map[*client]struct{}

	OnFirstSub  func(userID string)
	OnLastUnsub func(userID string)
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket do dashboard
// Permite subscribe/unsubscribe no feed de um usuário e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	cl := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			first := false
			if _, ok := h.subs[msg.UserID]; !ok {
				h.subs[msg.UserID] = make(map[*client]struct{})
				first = true
			}
			h.subs[msg.UserID][cl] = struct{}{}
			h.mu.Unlock()
			if first && h.OnFirstSub != nil {
				h.OnFirstSub(msg.UserID)
			}
		case "unsubscribe":
			h.mu.Lock()
			last := false
			if m, ok := h.subs[msg.UserID]; ok {
				delete(m, cl)
				if len(m) == 0 {
					delete(h.subs, msg.UserID)
					last = true
				}
			}
			h.mu.Unlock()
			if last && h.OnLastUnsub != nil {
				h.OnLastUnsub(msg.UserID)
			}
		case "ping":
			_ = cl.writeJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	var emptied []string
	for userID, set := range h.subs {
		if _, ok := set[cl]; !ok {
			continue
		}
		delete(set, cl)
		if len(set) == 0 {
			delete(h.subs, userID)
			emptied = append(emptied, userID)
		}
	}
	h.mu.Unlock()
	for _, userID := range emptied {
		if h.OnLastUnsub != nil {
			h.OnLastUnsub(userID)
		}
	}
}

// Broadcast envia um snapshot recalculado do dashboard para todos os clientes
// inscritos no usuário correspondente.
func (h *Hub) Broadcast(userID string, snapshot any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[userID]))
	for cl := range h.subs[userID] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	b, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	for _, cl := range clients {
		_ = cl.write(websocket.TextMessage, b)
	}
}
