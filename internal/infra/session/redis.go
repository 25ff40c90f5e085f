package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/dsx-leads/internal/wizard"
)

const keyPrefix = "dsx:registro:"

const (
	// lockTTL cobre a escrita de conclusão mais lenta; um dono que morre libera sozinho.
	lockTTL       = 30 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// unlockScript só apaga o lock se ele ainda pertence ao token de quem o pegou.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore compartilha as sessões entre instâncias da API. Reservas e locks
// são chaves SETNX com expiração.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("falha ao conectar no Redis: %w", err)
	}
	return client, nil
}

func stateKey(id string) string {
	return keyPrefix + id
}

func claimKey(id string, g Guard) string {
	return keyPrefix + id + ":claim:" + string(g)
}

func lockKey(id string) string {
	return keyPrefix + id + ":lock"
}

func (s *RedisStore) Load(ctx context.Context, id string) (*wizard.State, error) {
	raw, err := s.client.Get(ctx, stateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler sessão: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, id string, st *wizard.State) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, stateKey(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar sessão: %w", err)
	}
	return nil
}

func (s *RedisStore) Claim(ctx context.Context, id string, g Guard) (bool, error) {
	exists, err := s.client.Exists(ctx, stateKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao verificar sessão: %w", err)
	}
	if exists == 0 {
		return false, ErrNotFound
	}

	ok, err := s.client.SetNX(ctx, claimKey(id, g), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("erro ao reservar %s: %w", g, err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, id string, g Guard) error {
	if err := s.client.Del(ctx, claimKey(id, g)).Err(); err != nil {
		return fmt.Errorf("erro ao liberar %s: %w", g, err)
	}
	return nil
}

// Lock tenta o SETNX até conseguir ou até ctx terminar.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	ticker := time.NewTicker(lockRetryWait)
	defer ticker.Stop()

	for {
		unlock, ok, err := s.TryLock(ctx, id)
		if err != nil || ok {
			return unlock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *RedisStore) TryLock(ctx context.Context, id string) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, lockKey(id), token, lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("erro ao travar sessão: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := unlockScript.Run(ctx, s.client, []string{lockKey(id)}, token).Err(); err != nil {
				log.Printf("⚠️ Falha ao destravar sessão %s: %v", id, err)
			}
		})
	}
	return unlock, true, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
