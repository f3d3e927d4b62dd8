package service

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/services/live-service/internal/registry"
)

var pingMessage = json.RawMessage(`{"ping":true}`)

// Sender delivers one payload to one live socket.
type Sender interface {
	Send(ctx context.Context, connectionId string, payload []byte) error
}

type DeliveryResult struct {
	ConnectionID string
	Err          error
}

func (d DeliveryResult) Delivered() bool {
	return d.Err == nil
}

type BroadcastReport struct {
	ClubId    string
	Attempted int
	Delivered int
	Failed    int
	Results   []DeliveryResult
}

type FanoutService interface {
	OnConnect(ctx context.Context, connectionId string, clubId string) error
	OnDisconnect(ctx context.Context, connectionId string) error
	// Broadcast returns once every delivery has settled. Failed deliveries
	// are reported, not returned, and leave the registry untouched.
	Broadcast(ctx context.Context, clubId string, message json.RawMessage) (*BroadcastReport, error)
}

type fanoutService struct {
	registry registry.Registry
	sender   Sender
	clock    clockwork.Clock
	logger   *logger.Logger
}

func NewFanoutService(
	reg registry.Registry,
	sender Sender,
	clock clockwork.Clock,
	logger *logger.Logger,
) FanoutService {
	return &fanoutService{
		registry: reg,
		sender:   sender,
		clock:    clock,
		logger:   logger.With("component", "fanout-service"),
	}
}

func (s *fanoutService) OnConnect(ctx context.Context, connectionId string, clubId string) error {
	conn := &models.Connection{
		ConnectionId: connectionId,
		ClubId:       registry.NormalizeClubID(clubId),
		ConnectedAt:  s.clock.Now().UTC(),
	}

	if appErr := s.registry.Add(ctx, conn); appErr != nil {
		return appErr
	}

	s.logger.Debug("Connection registered", "connection_id", connectionId, "club_id", conn.ClubId)
	return nil
}

func (s *fanoutService) OnDisconnect(ctx context.Context, connectionId string) error {
	if appErr := s.registry.Remove(ctx, connectionId); appErr != nil {
		return appErr
	}

	s.logger.Debug("Connection removed", "connection_id", connectionId)
	return nil
}

func (s *fanoutService) Broadcast(ctx context.Context, clubId string, message json.RawMessage) (*BroadcastReport, error) {
	payload, err := normalizeMessage(message)
	if err != nil {
		return nil, err
	}
	clubId = registry.NormalizeClubID(clubId)

	conns, appErr := s.registry.ListByClub(ctx, clubId)
	if appErr != nil {
		return nil, appErr
	}

	results := make([]DeliveryResult, len(conns))
	var wg conc.WaitGroup
	for i, conn := range conns {
		wg.Go(func() {
			results[i] = DeliveryResult{
				ConnectionID: conn.ConnectionId,
				Err:          s.sender.Send(ctx, conn.ConnectionId, payload),
			}
		})
	}
	wg.Wait()

	report := &BroadcastReport{ClubId: clubId, Attempted: len(results), Results: results}
	for _, res := range results {
		if res.Delivered() {
			report.Delivered++
			continue
		}
		report.Failed++
		s.logger.Debug("Delivery failed", "connection_id", res.ConnectionID, "club_id", clubId, "error", res.Err)
	}

	s.logger.Debug("Broadcast settled",
		"club_id", clubId,
		"attempted", report.Attempted,
		"failed", report.Failed,
	)

	return report, nil
}

// normalizeMessage substitutes the ping payload for an absent message.
func normalizeMessage(message json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return pingMessage, nil
	}
	if !json.Valid(trimmed) {
		return nil, apperrors.Validation("message must be valid JSON")
	}
	return trimmed, nil
}
