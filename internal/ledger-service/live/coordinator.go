package live

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
	"github.com/betilha/bankroll-engine/internal/ledger-service/stats"
)

// Store define as leituras necessárias para recalcular o dashboard.
type Store interface {
	FetchBetsForUser(ctx context.Context, userID string) ([]model.Bet, error)
	FetchUser(ctx context.Context, userID string) (model.User, error)
}

// StatsSink recebe as estatísticas recalculadas (cache Redis em produção).
type StatsSink interface {
	Set(ctx context.Context, userID string, st stats.Stats) error
}

// Snapshot agrupa tudo que o dashboard consome após uma mudança.
type Snapshot struct {
	User    model.User          `json:"user"`
	Stats   stats.Stats         `json:"stats"`
	Series  []stats.ChartPoint  `json:"series"`
	Markets []stats.MarketGroup `json:"markets"`
	Odds    []stats.OddsBucket  `json:"odds"`
	Stakes  []stats.StakeBucket `json:"stakes"`
	Results []stats.ResultSlice `json:"results"`
}

// State do coordenador de sincronização ao vivo.
type State int

const (
	StateIdle State = iota
	StateSubscribed
)

// Coordinator mantém uma única assinatura de mudanças por usuário logado e
// recalcula estatísticas, séries e agrupamentos a cada notificação.
//
// A assinatura fica suspensa enquanto um filtro de período está ativo (o
// dashboard então trabalha sobre o snapshot congelado) e retoma quando o
// filtro é limpo. Stop é idempotente e garante que nenhum snapshot é
// entregue após o retorno.
type Coordinator struct {
	log   *zap.Logger
	feed  Feed
	store Store
	cache StatsSink                       // opcional
	sink  func(userID string, s Snapshot) // hub WebSocket em produção

	mu       sync.Mutex
	state    State
	realtime bool // flag pegajosa: falso enquanto há filtro de período
	userID   string
	lastUser model.User
	hasUser  bool
	cancel   func()
	done     chan struct{}
}

func NewCoordinator(log *zap.Logger, feed Feed, store Store, cache StatsSink, sink func(string, Snapshot)) *Coordinator {
	if sink == nil {
		sink = func(string, Snapshot) {}
	}
	return &Coordinator{log: log, feed: feed, store: store, cache: cache, sink: sink, realtime: true}
}

// State retorna o estado atual (IDLE ou SUBSCRIBED).
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsActive reporta se há uma assinatura ativa.
func (c *Coordinator) IsActive() bool { return c.State() == StateSubscribed }

// Start registra o usuário logado e abre a assinatura, a menos que um filtro
// de período esteja ativo. Trocar de usuário derruba a assinatura anterior.
func (c *Coordinator) Start(ctx context.Context, userID string) error {
	c.mu.Lock()
	if c.state == StateSubscribed && c.userID == userID {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// troca de usuário: descarta assinatura e estado pegajoso anteriores
	c.Stop()

	c.mu.Lock()
	c.userID = userID
	c.hasUser = false
	c.lastUser = model.User{}
	realtime := c.realtime
	c.mu.Unlock()

	if !realtime {
		return nil
	}
	return c.subscribe(ctx)
}

// subscribe abre o feed e inicia a bomba de notificações.
func (c *Coordinator) subscribe(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubscribed || c.userID == "" {
		c.mu.Unlock()
		return nil
	}
	userID := c.userID
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	ch, feedCancel, err := c.feed.Subscribe(runCtx, userID)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = StateSubscribed
	c.cancel = func() {
		cancel()
		feedCancel()
	}
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-runCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				c.refresh(runCtx, userID)
			}
		}
	}()

	c.log.Info("live sync subscribed", zap.String("userId", userID))
	return nil
}

// Stop encerra a assinatura e espera a bomba terminar, garantindo que o sink
// não é chamado depois do retorno. Chamadas repetidas são inofensivas.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.state = StateIdle
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// ApplyFilter suspende a assinatura enquanto um filtro de período está ativo.
func (c *Coordinator) ApplyFilter() {
	c.mu.Lock()
	c.realtime = false
	c.mu.Unlock()
	c.Stop()
}

// ClearFilter limpa o filtro e retoma a assinatura do usuário corrente.
func (c *Coordinator) ClearFilter(ctx context.Context) error {
	c.mu.Lock()
	c.realtime = true
	c.mu.Unlock()
	return c.subscribe(ctx)
}

// refresh rebusca apostas e usuário e recalcula o dashboard inteiro.
// O registro do usuário passa pelo merge pegajoso: campos ausentes em um
// payload parcial não apagam banca_inicial nem meta_mensal conhecidas.
func (c *Coordinator) refresh(ctx context.Context, userID string) {
	bets, err := c.store.FetchBetsForUser(ctx, userID)
	if err != nil {
		c.log.Warn("live sync fetch bets", zap.String("userId", userID), zap.Error(err))
		return
	}
	fetched, err := c.store.FetchUser(ctx, userID)
	if err != nil {
		c.log.Warn("live sync fetch user", zap.String("userId", userID), zap.Error(err))
		return
	}

	c.mu.Lock()
	user := fetched
	if c.hasUser {
		user = model.MergeUser(c.lastUser, fetched)
	}
	c.lastUser = user
	c.hasUser = true
	c.mu.Unlock()

	bankroll := user.StartingBankrollOrDefault()
	st := stats.Compute(bets, stats.Params{
		CurrentBalance:   &user.Balance,
		StartingBankroll: bankroll,
	})

	snap := Snapshot{
		User:    user,
		Stats:   st,
		Series:  stats.GenerateSeries(bets, bankroll, nil, nil),
		Markets: stats.ByMarket(bets),
		Odds:    stats.ByOddsRange(bets),
		Stakes:  stats.ByStakeRange(bets),
		Results: stats.WinLossSplit(bets),
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, userID, st); err != nil {
			c.log.Warn("live sync cache set", zap.Error(err))
		}
	}
	c.sink(userID, snap)
}
