package events

import (
	"context"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	commonevents "github.com/burakmert236/clubscore/common/events"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/common/natsjetstream"
	"github.com/jonboulle/clockwork"
)

// Publisher announces committed changes. Callers treat failures as best effort.
type Publisher interface {
	PublishMatchCreated(ctx context.Context, match *models.Match) error
	PublishScoreUpdated(ctx context.Context, match *models.Match) error
	PublishMatchFinalized(ctx context.Context, match *models.Match) error
	PublishClubDeleted(ctx context.Context, clubId string) error
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, subject string, v any) error
}

type EventPublisher struct {
	publisher jsonPublisher
	clock     clockwork.Clock
	logger    *logger.Logger
}

func NewEventPublisher(client *natsjetstream.Client, clock clockwork.Clock, logger *logger.Logger) *EventPublisher {
	return newEventPublisher(natsjetstream.NewPublisher(client), clock, logger)
}

func newEventPublisher(p jsonPublisher, clock clockwork.Clock, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: p,
		clock:     clock,
		logger:    log.With("component", "event-publisher"),
	}
}

func (p *EventPublisher) PublishMatchCreated(ctx context.Context, match *models.Match) error {
	return p.publishMatch(ctx, commonevents.MatchCreated, commonevents.TypeMatchCreated, match)
}

func (p *EventPublisher) PublishScoreUpdated(ctx context.Context, match *models.Match) error {
	return p.publishMatch(ctx, commonevents.MatchScoreUpdated, commonevents.TypeMatchScoreUpdated, match)
}

func (p *EventPublisher) PublishMatchFinalized(ctx context.Context, match *models.Match) error {
	return p.publishMatch(ctx, commonevents.MatchFinalized, commonevents.TypeMatchFinalized, match)
}

func (p *EventPublisher) PublishClubDeleted(ctx context.Context, clubId string) error {
	event := commonevents.NewClubDeletedEvent(clubId, p.clock.Now())

	if err := p.publisher.PublishJSON(ctx, commonevents.ClubDeleted, event); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to publish club deleted event")
	}

	p.logger.Debug("Published club deleted event", "club_id", clubId)
	return nil
}

func (p *EventPublisher) publishMatch(ctx context.Context, subject, eventType string, match *models.Match) error {
	event := commonevents.NewMatchEvent(eventType, match, p.clock.Now())

	if err := p.publisher.PublishJSON(ctx, subject, event); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to publish "+eventType+" event")
	}

	p.logger.Debug("Published match event", "type", eventType, "match_id", match.MatchId)
	return nil
}

// NopPublisher is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishMatchCreated(context.Context, *models.Match) error   { return nil }
func (NopPublisher) PublishScoreUpdated(context.Context, *models.Match) error   { return nil }
func (NopPublisher) PublishMatchFinalized(context.Context, *models.Match) error { return nil }
func (NopPublisher) PublishClubDeleted(context.Context, string) error           { return nil }
