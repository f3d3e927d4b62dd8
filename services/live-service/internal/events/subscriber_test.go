package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	commonevents "github.com/burakmert236/clubscore/common/events"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	"github.com/burakmert236/clubscore/services/live-service/internal/service"
)

type recordingFanout struct {
	service.FanoutService
	clubIds  []string
	messages []string
	err      error
}

func (f *recordingFanout) Broadcast(_ context.Context, clubId string, message json.RawMessage) (*service.BroadcastReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.clubIds = append(f.clubIds, clubId)
	f.messages = append(f.messages, string(message))
	return &service.BroadcastReport{ClubId: clubId, Attempted: 1, Delivered: 1}, nil
}

func newTestSubscriber(fanout service.FanoutService) *EventSubscriber {
	return &EventSubscriber{fanout: fanout, logger: logger.Nop()}
}

func encode(t *testing.T, event commonevents.Event) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestRelayForwardsEnvelopeVerbatim(t *testing.T) {
	fanout := &recordingFanout{}
	sub := newTestSubscriber(fanout)

	match := &models.Match{MatchId: "match_1", ClubId: "club_1", Score: models.Score{A: 2}, Status: models.MatchStatusLive}
	data := encode(t, commonevents.NewMatchEvent(commonevents.TypeMatchScoreUpdated, match, time.Unix(1700000000, 0)))

	if err := sub.relay(context.Background(), commonevents.MatchScoreUpdated, data); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(fanout.clubIds) != 1 || fanout.clubIds[0] != "club_1" {
		t.Fatalf("clubs = %v", fanout.clubIds)
	}
	if fanout.messages[0] != string(data) {
		t.Fatalf("message changed in relay:\n%s\n%s", fanout.messages[0], data)
	}
}

func TestRelayDropsUnroutableEvents(t *testing.T) {
	fanout := &recordingFanout{}
	sub := newTestSubscriber(fanout)
	ctx := context.Background()

	cases := map[string]struct {
		subject string
		data    []byte
	}{
		"malformed":       {commonevents.MatchCreated, []byte("{")},
		"unknown subject": {"events.match.renamed", encode(t, commonevents.Event{ClubId: "club_1"})},
		"no club":         {commonevents.MatchFinalized, encode(t, commonevents.Event{MatchId: "match_1"})},
	}
	for name, tc := range cases {
		if err := sub.relay(ctx, tc.subject, tc.data); err != nil {
			t.Errorf("%s: relay returned %v, want nil so the message is acked", name, err)
		}
	}
	if len(fanout.clubIds) != 0 {
		t.Fatalf("unexpected broadcasts to %v", fanout.clubIds)
	}
}

func TestRelayRegistryFailureIsRetried(t *testing.T) {
	fanout := &recordingFanout{err: apperrors.Internal(errors.New("throttled"), "failed to list connections")}
	sub := newTestSubscriber(fanout)

	data := encode(t, commonevents.Event{Type: commonevents.TypeMatchFinalized, ClubId: "club_1"})
	err := sub.relay(context.Background(), commonevents.MatchFinalized, data)
	if !apperrors.Is(err, apperrors.CodeInternal) {
		t.Fatalf("err = %v, want INTERNAL so the message is nak'd", err)
	}
}
