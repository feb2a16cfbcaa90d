package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"mutualexchange/src/domain"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisLiveChannel publica em "<recipient_id>" (o prefixo vem do cliente redis).
// Ninguém escutando não é erro.
type RedisLiveChannel struct {
	publisher Publisher
}

func NewRedisLiveChannel(publisher Publisher) *RedisLiveChannel {
	return &RedisLiveChannel{publisher: publisher}
}

func (c *RedisLiveChannel) Deliver(ctx context.Context, msg domain.LiveMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("RedisLiveChannel.Deliver - failed to marshal message: %w", err)
	}
	if _, err := c.publisher.Publish(ctx, msg.RecipientID, payload); err != nil {
		return fmt.Errorf("RedisLiveChannel.Deliver - %w", err)
	}
	return nil
}
