package fakes

import (
	"context"
	"sync"

	"mutualexchange/src/domain"
	"mutualexchange/src/infra/kafka"
	"mutualexchange/src/infra/mailer"
)

// LiveChannel records every message; Err makes Deliver fail.
type LiveChannel struct {
	mu       sync.Mutex
	Err      error
	messages []domain.LiveMessage
}

func (c *LiveChannel) Deliver(ctx context.Context, msg domain.LiveMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *LiveChannel) Messages() []domain.LiveMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.LiveMessage(nil), c.messages...)
}

// DurableChannel records every enqueued task; Err makes Enqueue fail.
type DurableChannel struct {
	mu    sync.Mutex
	Err   error
	tasks []domain.NotificationTask
}

func (c *DurableChannel) Enqueue(ctx context.Context, task domain.NotificationTask) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.tasks = append(c.tasks, task)
	return nil
}

func (c *DurableChannel) Tasks() []domain.NotificationTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.NotificationTask(nil), c.tasks...)
}

// Publisher fica no lugar do RedisClient no canal live.
type Publisher struct {
	mu        sync.Mutex
	Err       error
	Published map[string][][]byte
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return 0, p.Err
	}
	if p.Published == nil {
		p.Published = map[string][][]byte{}
	}
	p.Published[channel] = append(p.Published[channel], payload)
	return 1, nil
}

// Producer fica no lugar do KafkaClient.
type Producer struct {
	mu       sync.Mutex
	Err      error
	Topic    string
	Messages []kafka.Message
}

func (p *Producer) Producer(messages []kafka.Message, topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Topic = topic
	p.Messages = append(p.Messages, messages...)
	return nil
}

// Mailer fails the first FailTimes sends with Err.
type Mailer struct {
	mu        sync.Mutex
	Err       error
	FailTimes int
	Sent      []mailer.Email
}

func (m *Mailer) Send(ctx context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil && m.FailTimes > 0 {
		m.FailTimes--
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}
