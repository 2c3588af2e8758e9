package messaging

import (
	"context"
	"fmt"
	"time"

	"storefront/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer обертка над kafka.Writer с метриками отправки
type KafkaProducer struct {
	writer  *kafka.Writer
	topic   string
	service string
}

// NewKafkaProducer создает producer для топика событий сервиса
func NewKafkaProducer(service string, brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // один ключ - одна партиция, порядок событий товара сохраняется
		// Пакетное назначение категории порождает серию событий подряд
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic, service: service}
}

// PublishMessage отправляет одно сообщение; key используется для партиционирования
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  start,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(p.service, p.topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(p.service, p.topic, time.Since(start))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
