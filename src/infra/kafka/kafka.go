package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

const (
	retryDelay       = 5 * time.Second
	batchTimeout     = 2 * time.Second
	maxBatchAttempts = 3
)

type KafkaClient struct {
	consumer  sarama.ConsumerGroup
	producer  sarama.SyncProducer
	brokers   []string
	batchSize int
}

type Message struct {
	Key      string
	Value    []byte
	Headers  map[string]string
	internal *sarama.ConsumerMessage
}

// Handler recebe um lote; retornar erro faz o lote inteiro ser reentregue.
type Handler func(messages []Message) error

func toRecordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	out := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return out
}

func fromRecordHeaders(headers []*sarama.RecordHeader) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		if h == nil {
			continue
		}
		out[string(h.Key)] = string(h.Value)
	}
	return out
}

func NewKafkaClient(brokers string, groupID string, batchSize int) (*KafkaClient, error) {
	brokerList := strings.Split(brokers, ",")

	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0

	// Consumer config - tarefas de email são pequenas, lotes modestos bastam
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	// Tarefas enfileiradas antes do worker subir não podem ser perdidas
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Session.Timeout = 30 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 10 * time.Second
	config.Consumer.MaxProcessingTime = 30 * time.Second
	config.Consumer.MaxWaitTime = 250 * time.Millisecond
	config.ChannelBufferSize = batchSize * 2

	// Producer config - canal durável: espera todas as réplicas
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1024 * 1024 // 1MB max por mensagem

	// Consumer Group - só quem consome informa groupID; a API apenas produz
	var consumer sarama.ConsumerGroup
	if groupID != "" {
		var err error
		consumer, err = sarama.NewConsumerGroup(brokerList, groupID, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
	}

	// Producer
	producer, err := sarama.NewSyncProducer(brokerList, config)
	if err != nil {
		if consumer != nil {
			consumer.Close()
		}
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	log.Printf("Kafka client initialized with batch size: %d", batchSize)

	return &KafkaClient{
		consumer:  consumer,
		producer:  producer,
		brokers:   brokerList,
		batchSize: batchSize,
	}, nil
}

// Consumer bloqueia até ctx ser cancelado. Erros de Consume (rebalance, broker
// fora) são logados e o loop tenta de novo depois de retryDelay.
func (k *KafkaClient) Consumer(ctx context.Context, handler Handler, topic string) error {
	if k.consumer == nil {
		return fmt.Errorf("kafka client was created without a consumer group")
	}

	consumerHandler := &consumerGroupHandler{
		handler:      handler,
		batchSize:    k.batchSize,
		retryBackoff: time.Second,
	}

	for {
		if err := k.consumer.Consume(ctx, []string{topic}, consumerHandler); err != nil {
			log.Printf("Error consuming from topic %s: %v", topic, err)
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
				continue
			}
		}
		if ctx.Err() != nil {
			log.Println("Kafka consumer context cancelled")
			return nil
		}
	}
}

// Producer envia o lote inteiro numa chamada do SyncProducer. Qualquer falha
// parcial é reportada como erro; o chamador decide se reenvia.
func (k *KafkaClient) Producer(messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	kafkaMessages := make([]*sarama.ProducerMessage, len(messages))
	for i, msg := range messages {
		kafkaMessages[i] = &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: toRecordHeaders(msg.Headers),
		}
	}

	err := k.producer.SendMessages(kafkaMessages)
	if err == nil {
		log.Printf("Batch sent: %d messages to topic %s", len(messages), topic)
		return nil
	}

	var producerErrs sarama.ProducerErrors
	if errors.As(err, &producerErrs) {
		for _, pe := range producerErrs {
			log.Printf("  - key %v: %v", pe.Msg.Key, pe.Err)
		}
		return fmt.Errorf("batch send failed: %d/%d messages failed: %w", len(producerErrs), len(messages), err)
	}
	return fmt.Errorf("batch send failed: %w", err)
}

func (k *KafkaClient) Close() error {
	var errs []error

	if k.consumer != nil {
		if err := k.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
		}
	}

	if err := k.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing kafka client: %v", errs)
	}

	return nil
}

// consumerGroupHandler implementa sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	handler      Handler
	batchSize    int
	retryBackoff time.Duration
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	log.Printf("Kafka consumer group session setup - batch size: %d", h.batchSize)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Println("Kafka consumer group session cleanup")
	return nil
}

// ConsumeClaim encerra o claim no primeiro lote que não pôde ser processado.
// Continuar marcaria offsets posteriores e o commit passaria por cima do lote
// com falha; saindo, o sarama fecha a sessão e a partição recomeça do último
// offset confirmado.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Printf("Starting consumer for partition %d (batch: %d, timeout: %v)",
		claim.Partition(), h.batchSize, batchTimeout)

	pending := make([]Message, 0, h.batchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := h.processBatch(session, pending)
		pending = pending[:0]
		return err
	}

	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return flush()
			}

			pending = append(pending, Message{
				Key:      string(message.Key),
				Value:    message.Value,
				Headers:  fromRecordHeaders(message.Headers),
				internal: message,
			})

			if len(pending) >= h.batchSize {
				if err := flush(); err != nil {
					return err
				}
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			if err := flush(); err != nil {
				return err
			}
			timer.Reset(batchTimeout)

		case <-session.Context().Done():
			return flush()
		}
	}
}

// processBatch tenta o lote até maxBatchAttempts vezes, com espera crescente
// entre as tentativas. Só marca os offsets quando o handler aceita o lote.
func (h *consumerGroupHandler) processBatch(session sarama.ConsumerGroupSession, messages []Message) error {
	var err error
	for attempt := 1; attempt <= maxBatchAttempts; attempt++ {
		if err = h.handler(messages); err == nil {
			break
		}
		log.Printf("Handler error for batch (attempt %d/%d): %v", attempt, maxBatchAttempts, err)
		if attempt == maxBatchAttempts {
			break
		}

		select {
		case <-session.Context().Done():
			return fmt.Errorf("batch of %d messages not processed: %w", len(messages), session.Context().Err())
		case <-time.After(time.Duration(attempt) * h.retryBackoff):
		}
	}
	if err != nil {
		return fmt.Errorf("batch of %d messages failed after %d attempts: %w", len(messages), maxBatchAttempts, err)
	}

	for _, msg := range messages {
		if msg.internal != nil {
			session.MarkMessage(msg.internal, "")
		}
	}

	log.Printf("Successfully processed batch of %d messages", len(messages))
	return nil
}
