// Package events emits notifications about session lifecycle changes to an
// AMQP fanout exchange, so that other services (analytics, moderation tooling,
// etc.) can observe logins and logouts without coupling to this service's HTTP
// surface. Event publishing is strictly best-effort: a broker outage never
// blocks or fails a user-facing request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TypeUserAuthenticated = "user-authenticated"
	TypeSessionDestroyed  = "session-destroyed"
)

// SessionEvent describes a single change to a session's authentication state.
// It carries identity details but never tokens.
type SessionEvent struct {
	Type      string    `json:"type"`
	SessionId string    `json:"sessionId"`
	UserId    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes session events; a nil Producer is permitted and means
// event publishing is disabled
type Producer interface {
	Publish(ctx context.Context, ev SessionEvent) error
}

func FormatConnectionString(host string, port int, vhost string, user string, password string) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", user, password, host, port, vhost)
}

type producer struct {
	ch       *amqp.Channel
	exchange string
}

// NewProducer declares the target fanout exchange and returns a Producer that
// publishes session events to it
func NewProducer(conn *amqp.Connection, exchange string) (Producer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	return &producer{
		ch:       ch,
		exchange: exchange,
	}, nil
}

func (p *producer) Publish(ctx context.Context, ev SessionEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
}
