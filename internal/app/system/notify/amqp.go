package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultRoutingKey is used when AMQPConfig.RoutingKey is empty.
const DefaultRoutingKey = "catalog.notifications"

// Publisher is the subset of *amqp.Channel the AMQP sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPConfig configures the RabbitMQ sink.
type AMQPConfig struct {
	URL        string
	Exchange   string // "" publishes to the default exchange
	RoutingKey string
	Timeout    time.Duration
}

// AMQP publishes each notification as a persistent JSON message.
type AMQP struct {
	pub        Publisher
	exchange   string
	routingKey string
	timeout    time.Duration
	log        *zap.Logger
	now        func() time.Time
}

// NewAMQP wraps an existing channel (or any Publisher).
func NewAMQP(pub Publisher, cfg AMQPConfig, log *zap.Logger) (*AMQP, error) {
	if pub == nil {
		return nil, fmt.Errorf("notify: amqp publisher cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	key := cfg.RoutingKey
	if key == "" {
		key = DefaultRoutingKey
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AMQP{
		pub:        pub,
		exchange:   cfg.Exchange,
		routingKey: key,
		timeout:    timeout,
		log:        log,
		now:        time.Now,
	}, nil
}

// DialAMQP connects to the broker, opens a channel and declares the
// exchange (a durable topic exchange) when one is named. The caller owns
// the returned connection.
func DialAMQP(cfg AMQPConfig, log *zap.Logger) (*AMQP, *amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("notify: dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("notify: open channel: %w", err)
	}
	if cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("notify: declare exchange %q: %w", cfg.Exchange, err)
		}
	}
	sink, err := NewAMQP(ch, cfg, log)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return sink, conn, nil
}

// Notify publishes the message. Publish failures are logged, not returned.
func (s *AMQP) Notify(ctx context.Context, kind Kind, message string) {
	now := s.now().UTC()
	body, err := json.Marshal(Notification{Kind: kind, Message: message, At: now})
	if err != nil {
		s.log.Warn("notify: marshal notification", zap.Error(err))
		return
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Type:         string(kind),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.pub.PublishWithContext(pubCtx, s.exchange, s.routingKey, false, false, msg); err != nil {
		s.log.Warn("notify: publish failed",
			zap.String("exchange", s.exchange),
			zap.String("routing_key", s.routingKey),
			zap.Error(err))
	}
}
