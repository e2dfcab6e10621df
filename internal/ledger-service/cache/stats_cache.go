package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betilha/bankroll-engine/internal/ledger-service/stats"
)

// StatsCache encapsula o cache Redis das estatísticas calculadas do dashboard
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type StatsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewStatsCache cria uma instância do cache com TTL configurável
func NewStatsCache(c *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{Client: c, TTL: ttl}
}

// key gera a chave Redis das estatísticas correntes de um usuário
func key(userID string) string { return "stats:current:" + userID }

// Set armazena as estatísticas calculadas com o TTL definido.
func (s *StatsCache) Set(ctx context.Context, userID string, st stats.Stats) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key(userID), b, s.TTL).Err()
}

// Get retorna as estatísticas em cache; ok=false quando não há entrada fresca.
func (s *StatsCache) Get(ctx context.Context, userID string) (stats.Stats, bool, error) {
	b, err := s.Client.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return stats.Stats{}, false, nil
	}
	if err != nil {
		return stats.Stats{}, false, err
	}
	var st stats.Stats
	if err := json.Unmarshal(b, &st); err != nil {
		return stats.Stats{}, false, err
	}
	return st, true, nil
}

// Invalidate remove a entrada de um usuário, forçando recálculo na próxima leitura.
func (s *StatsCache) Invalidate(ctx context.Context, userID string) error {
	return s.Client.Del(ctx, key(userID)).Err()
}
