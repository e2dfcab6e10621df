package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betilha/bankroll-engine/pkg/contracts/events"
)

// ChangeChannel devolve o canal Redis Pub/Sub de mudanças de um usuário.
func ChangeChannel(userID string) string { return "ledger:changed:" + userID }

// RedisNotifier publica notificações de mudança do ledger por usuário.
// É o feed consumido pelo coordenador de sincronização ao vivo.
type RedisNotifier struct {
	r *redis.Client
}

func NewRedisNotifier(r *redis.Client) *RedisNotifier {
	return &RedisNotifier{r: r}
}

// NotifyChange publica um evento LedgerChanged no canal do usuário.
func (n *RedisNotifier) NotifyChange(ctx context.Context, userID, table, op string) error {
	b, err := json.Marshal(events.LedgerChanged{
		UserID: userID,
		Table:  table,
		Op:     op,
		Ts:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.r.Publish(ctx, ChangeChannel(userID), b).Err()
}
