package live

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager mantém um Coordinator por usuário com dashboard conectado.
// O hub WebSocket chama HandleSubscribe quando o primeiro cliente de um
// usuário se inscreve e HandleUnsubscribe quando o último sai.
type Manager struct {
	log   *zap.Logger
	feed  Feed
	store Store
	cache StatsSink
	sink  func(string, Snapshot)

	mu     sync.Mutex
	active map[string]*Coordinator
}

func NewManager(log *zap.Logger, feed Feed, store Store, cache StatsSink, sink func(string, Snapshot)) *Manager {
	return &Manager{
		log:    log,
		feed:   feed,
		store:  store,
		cache:  cache,
		sink:   sink,
		active: make(map[string]*Coordinator),
	}
}

// HandleSubscribe inicia a sincronização ao vivo de um usuário, se ainda não
// há uma ativa.
func (m *Manager) HandleSubscribe(ctx context.Context, userID string) {
	m.mu.Lock()
	if _, ok := m.active[userID]; ok {
		m.mu.Unlock()
		return
	}
	c := NewCoordinator(m.log, m.feed, m.store, m.cache, m.sink)
	m.active[userID] = c
	m.mu.Unlock()

	if err := c.Start(ctx, userID); err != nil {
		m.log.Warn("live sync start", zap.String("userId", userID), zap.Error(err))
		m.mu.Lock()
		delete(m.active, userID)
		m.mu.Unlock()
	}
}

// HandleUnsubscribe encerra a sincronização quando o último cliente sai.
func (m *Manager) HandleUnsubscribe(userID string) {
	m.mu.Lock()
	c, ok := m.active[userID]
	delete(m.active, userID)
	m.mu.Unlock()
	if ok {
		c.Stop()
	}
}

// StopAll derruba todas as assinaturas ativas (shutdown do serviço).
func (m *Manager) StopAll() {
	m.mu.Lock()
	coords := make([]*Coordinator, 0, len(m.active))
	for _, c := range m.active {
		coords = append(coords, c)
	}
	m.active = make(map[string]*Coordinator)
	m.mu.Unlock()

	for _, c := range coords {
		c.Stop()
	}
}
