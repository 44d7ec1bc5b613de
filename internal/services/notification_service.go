package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
)

// eventEnvelope mirrors events.Event with the payload kept raw so each event
// type can be decoded into its own struct.
type eventEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

type notificationService struct {
	subscriber message.Subscriber
	sink       NotificationSink
	repo       repositories.Repository
	logger     *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotificationService(subscriber message.Subscriber, sink NotificationSink, repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{
		subscriber: subscriber,
		sink:       sink,
		repo:       repo,
		logger:     logger,
	}
}

// Start subscribes to the membership topic and processes events until Stop
// or context cancellation.
func (s *notificationService) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	messages, err := s.subscriber.Subscribe(runCtx, events.TopicMembershipEvents)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to membership events: %w", err)
	}

	go func() {
		defer close(s.done)
		for msg := range messages {
			s.handleMessage(runCtx, msg)
			msg.Ack()
		}
	}()

	s.logger.Info("Notification service started")
	return nil
}

func (s *notificationService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
	s.logger.Info("Notification service stopped")
	return nil
}

func (s *notificationService) handleMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.logger.Error("Failed to decode event", "error", err, "message_id", msg.UUID)
		return
	}

	var err error
	switch envelope.Type {
	case events.EventTypeServerCreated:
		err = s.handleServerCreated(ctx, envelope.Data)
	case events.EventTypeMemberJoined:
		err = s.handleMemberJoined(ctx, envelope.Data)
	default:
		s.logger.Debug("Ignoring event", "event_type", envelope.Type)
		return
	}

	// Delivery is best effort: a sink failure is logged and the event is
	// still acked so the write path is never held hostage.
	if err != nil {
		s.logger.Error("Failed to deliver notification",
			"error", err,
			"event_type", envelope.Type,
			"event_id", envelope.ID)
	}
}

func (s *notificationService) handleServerCreated(ctx context.Context, data json.RawMessage) error {
	var payload events.ServerCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode server.created payload: %w", err)
	}

	return s.sink.Send(ctx, []string{payload.CreatedBy}, models.Notification{
		Title:       "Course server created",
		Description: fmt.Sprintf("%s is ready. Share code %s to invite students.", payload.ServerName, payload.JoinCode),
		Link:        payload.JoinLink,
	})
}

func (s *notificationService) handleMemberJoined(ctx context.Context, data json.RawMessage) error {
	var payload events.MemberJoinedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode server.member_joined payload: %w", err)
	}

	// Welcome the new member.
	if err := s.sink.Send(ctx, []string{payload.UserID}, models.Notification{
		Title:       "Joined course server",
		Description: fmt.Sprintf("You are now a member of %s.", payload.ServerName),
	}); err != nil {
		return err
	}

	// Tell the creator, when the server still resolves.
	server, err := s.repo.Server().GetByID(ctx, payload.ServerID)
	if err != nil || server == nil {
		return err
	}

	name := payload.UserName
	if name == "" {
		name = payload.UserID
	}

	return s.sink.Send(ctx, []string{server.CreatedBy}, models.Notification{
		Title:       "New member",
		Description: fmt.Sprintf("%s joined %s.", name, payload.ServerName),
	})
}

// ===== SINKS =====

// LogSink writes notifications to the structured log. It is the default sink
// until a real delivery channel is wired.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, userIDs []string, notification models.Notification) error {
	s.logger.Info("Notification",
		"recipients", userIDs,
		"title", notification.Title,
		"description", notification.Description,
		"link", notification.Link)
	return nil
}
