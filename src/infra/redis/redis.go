package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient é usado como canal "live": PUBLISH sem retry, sem persistência.
type RedisClient struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient aceita um host único ou uma lista separada por vírgula (cluster).
func NewRedisClient(addrs string, poolSize int) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),

		PoolSize:     poolSize,
		MinIdleConns: 2,

		// Cluster específico
		MaxRedirects: 3,

		// O canal live é best-effort: timeouts curtos para não segurar a requisição
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,

		// Sem retry: uma mensagem live perdida não é reenviada
		MaxRetries: -1,
	})

	return &RedisClient{client: client}
}

// WithPrefix returns a copy whose channel names are namespaced by prefix.
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	return &RedisClient{client: rc.client, prefix: rc.prefix + prefix}
}

func (rc *RedisClient) Channel(name string) string {
	return rc.prefix + name
}

// Publish envia payload ao canal e retorna quantos assinantes receberam.
func (rc *RedisClient) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	receivers, err := rc.client.Publish(ctx, rc.Channel(channel), payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", rc.Channel(channel), err)
	}
	return receivers, nil
}

// Subscribe é usado pelo exchangectl listen para acompanhar o canal live.
func (rc *RedisClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = rc.Channel(c)
	}
	return rc.client.Subscribe(ctx, names...)
}

// Health check para o cluster
func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
