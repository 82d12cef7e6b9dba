package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
)

// amqpPublisher is the part of *amqp.Channel the publisher needs.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher puts email jobs on a durable queue for cmd/email_worker.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	pub   amqpPublisher
	Queue string
	Now   func() time.Time
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, pub: ch, Queue: queue, Now: time.Now}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishJSON publishes body as a persistent JSON message on the default exchange.
// kind is copied into the AMQP type property.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, kind string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", kind, err)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return p.pub.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         kind,
		Timestamp:    now().UTC(),
		Body:         b,
	})
}

// Send queues an email job. It implements the service's EmailSender.
func (p *RabbitPublisher) Send(ctx context.Context, job mailer.EmailJob) error {
	if job.To == "" {
		return mailer.ErrEmptyRecipient
	}
	EnsureRecipientAndEmail(&job)
	if err := p.PublishJSON(ctx, job.Template, job); err != nil {
		return fmt.Errorf("publish email to %s: %w", job.To, err)
	}
	return nil
}
