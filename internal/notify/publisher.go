package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// StatusChanged — событие requestStatusChanged для внешних потребителей
// (почтовые уведомления, сводки). Движок никогда не ждёт доставки.
type StatusChanged struct {
	RequestID  uuid.UUID `json:"request_id"`
	UserID     uuid.UUID `json:"user_id"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	// RequestStatusChanged — fire-and-forget; ошибки доставки только логируются.
	RequestStatusChanged(ctx context.Context, ev StatusChanged)
}

// KafkaPublisher пишет события в Kafka асинхронным writer'ом.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			// Async: WriteMessages не блокирует путь запроса.
			Async: true,
		},
	}
}

func (p *KafkaPublisher) RequestStatusChanged(ctx context.Context, ev StatusChanged) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal status event: %v", err)
		return
	}

	// Ключ — id заявки: события одной заявки попадают в одну партицию
	// и сохраняют порядок.
	msg := kafka.Message{
		Key:   []byte(ev.RequestID.String()),
		Value: data,
		Time:  ev.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("notify: publish status event: %v", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher — заглушка для тестов и локального запуска без Kafka.
type NopPublisher struct{}

func (NopPublisher) RequestStatusChanged(context.Context, StatusChanged) {}
