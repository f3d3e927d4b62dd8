package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	commonevents "github.com/burakmert236/clubscore/common/events"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/natsjetstream"
	"github.com/burakmert236/clubscore/common/utils"
	"github.com/burakmert236/clubscore/services/live-service/internal/service"
)

const consumerInactiveThreshold = 30 * time.Second

// EventSubscriber relays match events to the sockets of the match's club.
// Every instance runs its own ephemeral consumer so each one reaches the
// sockets it holds.
type EventSubscriber struct {
	subscriber *natsjetstream.Subscriber
	fanout     service.FanoutService
	logger     *logger.Logger

	consumeCtx jetstream.ConsumeContext
}

func NewEventSubscriber(
	natsClient *natsjetstream.Client,
	fanout service.FanoutService,
	logger *logger.Logger,
) *EventSubscriber {
	log := logger.With("component", "event-subscriber")
	return &EventSubscriber{
		subscriber: natsjetstream.NewSubscriber(natsClient, log),
		fanout:     fanout,
		logger:     log,
	}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	cfg := natsjetstream.ConsumerConfig{
		StreamName:        commonevents.MatchEventsStream,
		ConsumerName:      utils.NewID("live-service"),
		FilterSubject:     commonevents.MatchEventsWildcard,
		DeliverPolicy:     "new",
		AckPolicy:         "explicit",
		MaxDeliver:        3,
		InactiveThreshold: consumerInactiveThreshold,
	}

	s.logger.Info("Subscribing to match events",
		"stream", cfg.StreamName,
		"consumer", cfg.ConsumerName,
	)

	cc, err := s.subscriber.Subscribe(ctx, cfg, s.handleMatchEvent)
	if err != nil {
		return fmt.Errorf("failed to subscribe to match events: %w", err)
	}
	s.consumeCtx = cc
	return nil
}

func (s *EventSubscriber) Stop() {
	if s.consumeCtx != nil {
		s.consumeCtx.Stop()
	}
}

func (s *EventSubscriber) handleMatchEvent(ctx context.Context, msg jetstream.Msg) error {
	return s.relay(ctx, msg.Subject(), msg.Data())
}

// relay forwards the envelope unchanged. Malformed events are dropped so
// they are acked instead of redelivered.
func (s *EventSubscriber) relay(ctx context.Context, subject string, data []byte) error {
	var event commonevents.Event
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn("Dropping malformed event", "subject", subject, "error", err)
		return nil
	}

	switch subject {
	case commonevents.MatchCreated, commonevents.MatchScoreUpdated, commonevents.MatchFinalized:
	default:
		s.logger.Warn("Unknown match event subject", "subject", subject)
		return nil
	}

	if event.ClubId == "" {
		s.logger.Warn("Dropping event without club", "subject", subject, "match_id", event.MatchId)
		return nil
	}

	report, err := s.fanout.Broadcast(ctx, event.ClubId, data)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeValidation {
			s.logger.Warn("Dropping event", "subject", subject, "error", err)
			return nil
		}
		return err
	}

	s.logger.Debug("Event relayed",
		"type", event.Type,
		"club_id", event.ClubId,
		"match_id", event.MatchId,
		"attempted", report.Attempted,
		"failed", report.Failed,
	)
	return nil
}
