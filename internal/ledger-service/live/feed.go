package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/betilha/bankroll-engine/internal/ledger-service/repo"
	"github.com/betilha/bankroll-engine/pkg/contracts/events"
)

// Feed é o fluxo de notificações de mudança do ledger para um usuário.
// Cancel é idempotente e libera o recurso de escuta; o canal é fechado após o
// cancelamento.
type Feed interface {
	Subscribe(ctx context.Context, userID string) (<-chan events.LedgerChanged, func(), error)
}

// RedisFeed implementa Feed sobre Redis Pub/Sub, um canal por usuário.
type RedisFeed struct {
	log *zap.Logger
	r   *redis.Client
}

func NewRedisFeed(log *zap.Logger, r *redis.Client) *RedisFeed {
	return &RedisFeed{log: log, r: r}
}

// Subscribe abre a inscrição no canal do usuário e repassa os eventos
// decodificados. Mensagens malformadas são descartadas com aviso.
func (f *RedisFeed) Subscribe(ctx context.Context, userID string) (<-chan events.LedgerChanged, func(), error) {
	sub := f.r.Subscribe(ctx, repo.ChangeChannel(userID))
	// força o handshake da inscrição antes de devolver o canal
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan events.LedgerChanged)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev events.LedgerChanged
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.log.Warn("ledger feed unmarshal", zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
