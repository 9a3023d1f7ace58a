package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL       = 10 * time.Second
	defaultRetryInterval = 25 * time.Millisecond
	defaultKeyPrefix     = "spa:slot-lock"
)

// releaseScript удаляет ключ, только если он принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions параметры распределенной блокировки
type RedisOptions struct {
	TTL           time.Duration
	RetryInterval time.Duration
	KeyPrefix     string
}

// RedisLocker блокировки по ключу, общие для всех экземпляров сервиса
// Захват: SET key token NX PX ttl, освобождение: Lua compare-and-delete
type RedisLocker struct {
	rdb    redis.Cmdable
	opts   RedisOptions
	logger Logger
}

// NewRedisLocker создает распределенный блокировщик
func NewRedisLocker(rdb redis.Cmdable, opts RedisOptions, logger Logger) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = defaultLockTTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	return &RedisLocker{rdb: rdb, opts: opts, logger: logger}
}

// Lock захватывает ключ, повторяя попытки с RetryInterval до отмены ctx
func (l *RedisLocker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	redisKey := l.opts.KeyPrefix + ":" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.opts.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, ctxErr)
			}
			return nil, fmt.Errorf("%w: SetNX %s: %v", ErrLockBackend, redisKey, err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(redisKey, token string) UnlockFunc {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Контекст запроса мог быть уже отменен, освобождаем независимо от него
			ctx, cancel := context.WithTimeout(context.Background(), l.opts.TTL)
			defer cancel()

			err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) && l.logger != nil {
				l.logger.Warn("Failed to release slot lock %s: %v", redisKey, err)
			}
		})
	}
}
