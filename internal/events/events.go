// Package events defines the integration events the membership service emits
// and the publisher abstraction over the message broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topic that carries all membership events. Consumers filter on Event.Type.
const TopicMembershipEvents = "membership.events"

// Event types emitted by this service.
const (
	EventTypeServerCreated = "server.created"
	EventTypeMemberJoined  = "server.member_joined"
)

// Event is the envelope shared by all published events.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps a payload in the standard envelope.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "membership-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ServerCreatedEvent is emitted after a course server is persisted.
type ServerCreatedEvent struct {
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	JoinCode   string `json:"join_code"`
	JoinLink   string `json:"join_link"`
	CreatedBy  string `json:"created_by"`
}

// MemberJoinedEvent is emitted after a successful join. It is not emitted for
// already-member no-op joins.
type MemberJoinedEvent struct {
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
}

// EventPublisher publishes integration events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
