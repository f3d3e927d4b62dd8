package events

import (
	"time"

	"github.com/burakmert236/clubscore/common/models"
)

const (
	// Streams
	MatchEventsStream = "MATCH_EVENTS"

	// Events
	MatchCreated      = "events.match.created"
	MatchScoreUpdated = "events.match.score_updated"
	MatchFinalized    = "events.match.finalized"

	ClubDeleted = "events.club.deleted"

	// Event Wildcards
	MatchEventsWildcard = "events.match.*"
	ClubEventsWildcard  = "events.club.*"
)

// Type names carried inside the envelope.
const (
	TypeMatchCreated      = "match.created"
	TypeMatchScoreUpdated = "match.score_updated"
	TypeMatchFinalized    = "match.finalized"
	TypeClubDeleted       = "club.deleted"
)

func StreamSubjects() []string {
	return []string{MatchEventsWildcard, ClubEventsWildcard}
}

// Event is the JSON envelope published for every match and club change.
// live-service relays it to browsers unchanged.
type Event struct {
	Type      string        `json:"type"`
	ClubId    string        `json:"clubId"`
	MatchId   string        `json:"matchId,omitempty"`
	Match     *models.Match `json:"match,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewMatchEvent(eventType string, match *models.Match, at time.Time) Event {
	return Event{
		Type:      eventType,
		ClubId:    match.ClubId,
		MatchId:   match.MatchId,
		Match:     match,
		Timestamp: at.UTC(),
	}
}

func NewClubDeletedEvent(clubId string, at time.Time) Event {
	return Event{
		Type:      TypeClubDeleted,
		ClubId:    clubId,
		Timestamp: at.UTC(),
	}
}
