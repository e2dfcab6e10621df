package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/dto"
	"github.com/betilha/bankroll-engine/internal/ledger-service/model"
	"github.com/betilha/bankroll-engine/internal/ledger-service/repo"
	"github.com/betilha/bankroll-engine/internal/ledger-service/stats"
)

// Repo define as operações de armazenamento usadas pelos handlers.
type Repo interface {
	FetchBetsForUser(ctx context.Context, userID string) ([]model.Bet, error)
	GetBet(ctx context.Context, id string) (model.Bet, error)
	CreateBet(ctx context.Context, in repo.BetInput) (model.Bet, error)
	UpdateBet(ctx context.Context, id string, patch repo.BetPatch) (model.Bet, error)
	DeleteBet(ctx context.Context, id, userID string) error
	FetchUser(ctx context.Context, userID string) (model.User, error)
}

// Reconciler recalcula e persiste o saldo após mutações.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (float64, error)
}

// Notifier publica notificações de mudança para o feed ao vivo.
type Notifier interface {
	NotifyChange(ctx context.Context, userID, table, op string) error
}

// StatsCache serve estatísticas já calculadas quando frescas.
type StatsCache interface {
	Get(ctx context.Context, userID string) (stats.Stats, bool, error)
	Set(ctx context.Context, userID string, st stats.Stats) error
	Invalidate(ctx context.Context, userID string) error
}

// Server expõe a API REST do ledger e o endpoint WebSocket do dashboard.
type Server struct {
	log   *zap.Logger
	repo  Repo
	rec   Reconciler
	notif Notifier
	cache StatsCache
	wsFn  http.HandlerFunc
}

// NewServer instancia o servidor HTTP do ledger. cache e wsHandler são
// opcionais.
func NewServer(log *zap.Logger, r Repo, rec Reconciler, n Notifier, cache StatsCache, wsHandler http.HandlerFunc) *Server {
	return &Server{log: log, repo: r, rec: rec, notif: n, cache: cache, wsFn: wsHandler}
}

// Router retorna o mux HTTP com as rotas da API do ledger.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets)                      // GET ?userId=..., POST
	mux.HandleFunc("/bets/", s.betByID)                  // PUT/DELETE /bets/{id}
	mux.HandleFunc("/dashboard/stats", s.dashboardStats) // GET
	mux.HandleFunc("/dashboard/series", s.dashboardSeries)
	mux.HandleFunc("/analysis/markets", s.analysis(func(b []model.Bet) any { return stats.ByMarket(b) }))
	mux.HandleFunc("/analysis/odds", s.analysis(func(b []model.Bet) any { return stats.ByOddsRange(b) }))
	mux.HandleFunc("/analysis/stakes", s.analysis(func(b []model.Bet) any { return stats.ByStakeRange(b) }))
	mux.HandleFunc("/analysis/results", s.analysis(func(b []model.Bet) any { return stats.WinLossSplit(b) }))
	if s.wsFn != nil {
		mux.HandleFunc("/ws", s.wsFn)
	}
	return mux
}

// parseRange lê from/to (YYYY-MM-DD) da query; o limite superior é estendido
// até o fim do dia para que o intervalo seja inclusivo.
func parseRange(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		t = t.UTC()
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		end := t.UTC().Add(24*time.Hour - time.Second)
		to = &end
	}
	return from, to, nil
}

// bets trata GET (lista) e POST (criação) de /bets.
func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBets(w, r)
	case http.MethodPost:
		s.createBet(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.FetchBetsForUser(r.Context(), userID)
	if err != nil {
		s.log.Error("fetch bets", zap.Error(err))
		http.Error(w, "fetch failed", http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.FromBet(b))
	}
	writeJSON(w, out)
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	outcome := model.Outcome(req.Outcome)
	if req.UserID == "" || req.Match == "" || req.Market == "" || !outcome.Valid() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Odds.Float() <= 1 || req.Stake.Float() <= 0 {
		http.Error(w, "invalid odds/stake", http.StatusBadRequest)
		return
	}
	if req.PlacedAt == "" {
		req.PlacedAt = time.Now().UTC().Format("2006-01-02")
	}

	in := repo.BetInput{
		UserID:   req.UserID,
		Match:    req.Match,
		Market:   req.Market,
		Outcome:  req.Outcome,
		Odds:     req.Odds.Float(),
		Stake:    req.Stake.Float(),
		PlacedAt: req.PlacedAt,
	}
	if outcome == model.OutcomeCashout {
		p := req.Profit.Float()
		in.Profit = &p
	}

	bet, err := s.repo.CreateBet(r.Context(), in)
	if err != nil {
		s.log.Error("create bet", zap.Error(err))
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}

	resp := dto.MutationResponse{}
	b := dto.FromBet(bet)
	resp.Bet = &b
	resp.Reconciled, resp.Balance = s.reconcileAfter(r.Context(), bet.UserID, bet.Outcome, false)

	s.invalidateStats(r.Context(), bet.UserID)
	s.notify(r.Context(), bet.UserID, "bets", "INSERT")
	writeJSON(w, resp)
}

// betByID trata PUT e DELETE de /bets/{id}.
func (s *Server) betByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/bets/")
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateBet(w, r, id)
	case http.MethodDelete:
		s.deleteBet(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) updateBet(w http.ResponseWriter, r *http.Request, id string) {
	var req dto.UpdateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Outcome != nil && !model.Outcome(*req.Outcome).Valid() {
		http.Error(w, "invalid resultado", http.StatusBadRequest)
		return
	}

	patch := repo.BetPatch{
		Match:    req.Match,
		Market:   req.Market,
		Outcome:  req.Outcome,
		PlacedAt: req.PlacedAt,
	}
	if req.Profit != nil {
		p := req.Profit.Float()
		patch.Profit = &p
	}
	if req.Odds != nil {
		o := req.Odds.Float()
		patch.Odds = &o
	}
	if req.Stake != nil {
		st := req.Stake.Float()
		patch.Stake = &st
	}

	bet, err := s.repo.UpdateBet(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("update bet", zap.Error(err))
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	resp := dto.MutationResponse{}
	b := dto.FromBet(bet)
	resp.Bet = &b
	resp.Reconciled, resp.Balance = s.reconcileAfter(r.Context(), bet.UserID, bet.Outcome, false)

	s.invalidateStats(r.Context(), bet.UserID)
	s.notify(r.Context(), bet.UserID, "bets", "UPDATE")
	writeJSON(w, resp)
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request, id string) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	if err := s.repo.DeleteBet(r.Context(), id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("delete bet", zap.Error(err))
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	resp := dto.MutationResponse{}
	// exclusão reconcilia sempre, independente do resultado da aposta removida
	resp.Reconciled, resp.Balance = s.reconcileAfter(r.Context(), userID, "", true)

	s.invalidateStats(r.Context(), userID)
	s.notify(r.Context(), userID, "bets", "DELETE")
	writeJSON(w, resp)
}

// reconcileAfter dispara a reconciliação pós-mutação conforme a regra do
// resultado. Falha é avisada e não desfaz a mutação.
func (s *Server) reconcileAfter(ctx context.Context, userID string, outcome model.Outcome, always bool) (bool, float64) {
	if !always && outcome == model.OutcomeVoid {
		return false, 0
	}
	balance, err := s.rec.Reconcile(ctx, userID)
	if err != nil {
		s.log.Warn("reconcile after mutation", zap.String("userId", userID), zap.Error(err))
		return false, 0
	}
	return true, balance
}

// invalidateStats descarta o snapshot em cache após uma mutação, para que a
// próxima leitura de /dashboard/stats recalcule em vez de servir dado velho.
func (s *Server) invalidateStats(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("stats cache invalidate", zap.String("userId", userID), zap.Error(err))
	}
}

// notify publica a notificação de mudança; falha não afeta a resposta.
func (s *Server) notify(ctx context.Context, userID, table, op string) {
	if s.notif == nil {
		return
	}
	if err := s.notif.NotifyChange(ctx, userID, table, op); err != nil {
		s.log.Warn("notify change", zap.String("userId", userID), zap.Error(err))
	}
}

// dashboardStats calcula (ou serve do cache) as métricas do dashboard.
func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, "invalid date range", http.StatusBadRequest)
		return
	}

	// sem filtro de período o cache pode responder direto
	if s.cache != nil && from == nil && to == nil {
		if st, ok, err := s.cache.Get(r.Context(), userID); err == nil && ok {
			writeJSON(w, st)
			return
		}
	}

	bets, user, ok := s.fetchAll(w, r, userID)
	if !ok {
		return
	}

	st := stats.Compute(bets, stats.Params{
		CurrentBalance:   &user.Balance,
		StartingBankroll: user.StartingBankrollOrDefault(),
		From:             from,
		To:               to,
	})

	if s.cache != nil && from == nil && to == nil {
		if err := s.cache.Set(r.Context(), userID, st); err != nil {
			s.log.Warn("stats cache set", zap.Error(err))
		}
	}
	writeJSON(w, st)
}

// dashboardSeries devolve a curva de evolução da banca.
func (s *Server) dashboardSeries(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, "invalid date range", http.StatusBadRequest)
		return
	}

	bets, user, ok := s.fetchAll(w, r, userID)
	if !ok {
		return
	}
	writeJSON(w, stats.GenerateSeries(bets, user.StartingBankrollOrDefault(), from, to))
}

// analysis produz um handler de agrupamento sobre as apostas (com filtro de
// período aplicado antes do agrupamento).
func (s *Server) analysis(group func([]model.Bet) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "userId required", http.StatusBadRequest)
			return
		}
		from, to, err := parseRange(r)
		if err != nil {
			http.Error(w, "invalid date range", http.StatusBadRequest)
			return
		}
		bets, err := s.repo.FetchBetsForUser(r.Context(), userID)
		if err != nil {
			s.log.Error("fetch bets", zap.Error(err))
			http.Error(w, "fetch failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, group(stats.FilterRange(bets, from, to)))
	}
}

// fetchAll busca apostas e usuário, respondendo o erro quando alguma falha.
func (s *Server) fetchAll(w http.ResponseWriter, r *http.Request, userID string) ([]model.Bet, model.User, bool) {
	bets, err := s.repo.FetchBetsForUser(r.Context(), userID)
	if err != nil {
		s.log.Error("fetch bets", zap.Error(err))
		http.Error(w, "fetch failed", http.StatusInternalServerError)
		return nil, model.User{}, false
	}
	user, err := s.repo.FetchUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return nil, model.User{}, false
		}
		s.log.Error("fetch user", zap.Error(err))
		http.Error(w, "fetch failed", http.StatusInternalServerError)
		return nil, model.User{}, false
	}
	return bets, user, true
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
