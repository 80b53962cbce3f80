package services

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/shopuz/payments-service/pkg/models"
	"github.com/shopuz/payments-service/pkg/views"
	"go.uber.org/zap"
)

// Notifier fires customer notifications after a state transition commits.
// Publishing is fire-and-forget: a failure is logged and never surfaced to
// the webhook response or rolled into the transition.
type Notifier interface {
	NotifySuccess(user models.User, product models.Product, amount int64)
	NotifyFailure(user models.User, product models.Product, amount int64)
	NotifyStatusChange(user models.User, product models.Product, status string)
	Close()
}

// KafkaNotifierConfig holds broker settings for the notifications topic.
type KafkaNotifierConfig struct {
	Brokers   string
	Topic     string
	Partition uint32
}

type KafkaNotifier struct {
	logger   *zap.Logger
	cnf      KafkaNotifierConfig
	producer *kafka.Producer
}

// NewKafkaNotifier creates the producer for the notifications topic. The
// mail collaborator consumes the topic and owns template rendering and
// delivery retries.
func NewKafkaNotifier(logger *zap.Logger, cnf KafkaNotifierConfig) (*KafkaNotifier, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cnf.Brokers,
		"acks":               "all",
		"enable.idempotence": "true",
	})
	if err != nil {
		return nil, err
	}
	logger.Info("notification producer created", zap.String("brokers", cnf.Brokers), zap.String("topic", cnf.Topic))
	go handleDeliveryReports(logger, p)
	return &KafkaNotifier{logger: logger, cnf: cnf, producer: p}, nil
}

func (n *KafkaNotifier) NotifySuccess(user models.User, product models.Product, amount int64) {
	n.publish(views.NotificationEvent{
		Kind:         views.NotifyPaymentSuccess,
		UserID:       user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		ProductTitle: product.Title,
		Amount:       amount,
		OccurredAt:   time.Now().UTC(),
	})
}

func (n *KafkaNotifier) NotifyFailure(user models.User, product models.Product, amount int64) {
	n.publish(views.NotificationEvent{
		Kind:         views.NotifyPaymentCanceled,
		UserID:       user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		ProductTitle: product.Title,
		Amount:       amount,
		OccurredAt:   time.Now().UTC(),
	})
}

func (n *KafkaNotifier) NotifyStatusChange(user models.User, product models.Product, status string) {
	n.publish(views.NotificationEvent{
		Kind:         views.NotifyOrderStatusChanged,
		UserID:       user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		ProductTitle: product.Title,
		OrderStatus:  status,
		OccurredAt:   time.Now().UTC(),
	})
}

func (n *KafkaNotifier) publish(event views.NotificationEvent) {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}

	// Partition by user so a customer's notifications stay ordered.
	partition := int32(0)
	if n.cnf.Partition > 0 {
		partition = int32(hashString(event.UserID) % n.cnf.Partition)
	}

	err = n.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &n.cnf.Topic,
			Partition: partition,
		},
		Key:   []byte(event.UserID),
		Value: msgBytes,
	}, nil)
	if err != nil {
		// Fire-and-forget: never propagate to the caller.
		n.logger.Error("failed to publish notification",
			zap.String("kind", string(event.Kind)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}

func (n *KafkaNotifier) Close() {
	n.producer.Flush(5000)
	n.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("notification delivery failed", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
