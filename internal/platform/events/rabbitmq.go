package events

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// Channel is the part of an AMQP channel the publisher uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes audit entries to a topic exchange, routed by action
type RabbitPublisher struct {
	channel  Channel
	conn     *amqp.Connection
	exchange string
	logger   *zap.Logger
}

// NewRabbitPublisher declares the exchange on an open channel
func NewRabbitPublisher(channel Channel, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{channel: channel, exchange: exchange, logger: logger}, nil
}

// DialRabbit connects to the broker and returns a ready publisher
func DialRabbit(rawURL, exchange string, logger *zap.Logger) (*RabbitPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(rawURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	pub, err := NewRabbitPublisher(ch, exchange, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	pub.conn = conn
	return pub, nil
}

// Publish implements audit.Publisher
func (p *RabbitPublisher) Publish(ctx context.Context, entry *document.AuditEntry) error {
	body, err := encode(entry)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, entry.Action, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    entry.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", entry.Action, err)
	}

	p.logger.Debug("audit entry published",
		zap.String("exchange", p.exchange),
		zap.String("routingKey", entry.Action))
	return nil
}

// Close releases the channel and the connection if this publisher dialled it
func (p *RabbitPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("parse amqp url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", fmt.Errorf("amqp url must use amqp:// or amqps://, got %q", u.Scheme)
	}
	return clean, nil
}
