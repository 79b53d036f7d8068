// File: /services/event_publisher.go
package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"trailcraft-api/models"
)

const (
	SubjectTrailCreated   = "trails.created"
	SubjectTrailSubmitted = "trails.submitted"
)

// EventPublisher announces trail lifecycle events to other services.
type EventPublisher interface {
	PublishTrailCreated(ev models.SubmissionEvent) error
	PublishTrailSubmitted(ev models.SubmissionEvent) error
	Close()
}

// PublisherMetrics receives publish outcomes and connection state.
type PublisherMetrics interface {
	EventPublished(subject string, err error)
	NATSSetConnected(connected bool)
}

type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NATSEventPublisher publishes trail events as JSON over NATS.
type NATSEventPublisher struct {
	nc      natsConn
	metrics PublisherMetrics
}

// NewNATSEventPublisher connects to url and reports connection changes to m.
func NewNATSEventPublisher(url string, m PublisherMetrics) (*NATSEventPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trailcraft-api"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSEventPublisher{nc: nc, metrics: m}, nil
}

func (p *NATSEventPublisher) PublishTrailCreated(ev models.SubmissionEvent) error {
	return p.publish(SubjectTrailCreated, ev)
}

func (p *NATSEventPublisher) PublishTrailSubmitted(ev models.SubmissionEvent) error {
	return p.publish(SubjectTrailSubmitted, ev)
}

func (p *NATSEventPublisher) publish(subject string, ev models.SubmissionEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.EventPublished(subject, err)
	}
	return err
}

// Close drains pending messages and closes the connection.
func (p *NATSEventPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// NopEventPublisher is used when no broker is configured.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishTrailCreated(models.SubmissionEvent) error   { return nil }
func (NopEventPublisher) PublishTrailSubmitted(models.SubmissionEvent) error { return nil }
func (NopEventPublisher) Close()                                             {}
