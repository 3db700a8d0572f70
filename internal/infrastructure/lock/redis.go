package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "collections:lock:invoice:"

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a redis client with conservative timeouts
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// RedisLocker implements port.InvoiceLocker with SET NX PX so generation is
// serialized per invoice across every API replica
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder blocks the invoice.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire takes the invoice lock or returns port.ErrLockHeld
func (l *RedisLocker) Acquire(ctx context.Context, invoiceID string) (func(), error) {
	key := keyPrefix + invoiceID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire invoice lock: %w", err)
	}
	if !ok {
		return nil, port.ErrLockHeld
	}

	release := func() {
		// The caller's context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release invoice lock",
				zap.String("invoice_id", invoiceID),
				zap.Error(err))
		}
	}
	return release, nil
}

var _ port.InvoiceLocker = (*RedisLocker)(nil)
