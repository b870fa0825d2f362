// Package events announces portfolio changes to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Action is the change that happened to an entity
type Action string

const (
	Created   Action = "created"
	Updated   Action = "updated"
	Deleted   Action = "deleted"
	Reordered Action = "reordered"
	MainSet   Action = "main_set"
	Featured  Action = "featured"
)

// Entity names the subject segment of an event
type Entity string

const (
	EntityProject     Entity = "project"
	EntityMedia       Entity = "media"
	EntityTestimonial Entity = "testimonial"
)

// Change is the payload of every portfolio event
type Change struct {
	Entity    Entity    `json:"entity"`
	Action    Action    `json:"action"`
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher sends change events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subject returns <prefix>.<entity>.<action>
func Subject(prefix string, change Change) string {
	return fmt.Sprintf("%s.%s.%s", prefix, change.Entity, change.Action)
}

// Conn is the part of a NATS connection the publisher needs
type Conn interface {
	PublishMsg(m *nats.Msg) error
}

type NatsPublisher struct {
	nc     Conn
	prefix string
}

func NewNatsPublisher(nc Conn, prefix string) *NatsPublisher {
	if prefix == "" {
		prefix = "portfolio"
	}
	return &NatsPublisher{nc: nc, prefix: prefix}
}

// Connect dials NATS with reconnects enabled
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("transitions-site-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}

func (p *NatsPublisher) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: Subject(p.prefix, change),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	log.Debug().Str("subject", msg.Subject).Str("id", change.ID.String()).Msg("published event")
	return nil
}

// Noop drops every event
type Noop struct{}

func (Noop) Publish(context.Context, Change) error { return nil }
