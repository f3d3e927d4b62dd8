package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusLive  MatchStatus = "LIVE"
	MatchStatusFinal MatchStatus = "FINAL"
)

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

func ParseTeam(raw string) (Team, error) {
	switch Team(raw) {
	case TeamA, TeamB:
		return Team(raw), nil
	default:
		return "", fmt.Errorf("team must be 'A' or 'B', got %q", raw)
	}
}

type Teams struct {
	A []string `dynamodbav:"A" json:"A"`
	B []string `dynamodbav:"B" json:"B"`
}

type Score struct {
	A int `dynamodbav:"A" json:"A"`
	B int `dynamodbav:"B" json:"B"`
}

func (s Score) Get(team Team) int {
	if team == TeamB {
		return s.B
	}
	return s.A
}

func (s *Score) Set(team Team, value int) {
	if team == TeamB {
		s.B = value
		return
	}
	s.A = value
}

type Match struct {
	MatchId     string      `dynamodbav:"match_id" json:"matchId"`
	ClubId      string      `dynamodbav:"club_id" json:"clubId"`
	Teams       Teams       `dynamodbav:"teams" json:"teams"`
	BestOf      int         `dynamodbav:"best_of" json:"bestOf"`
	Score       Score       `dynamodbav:"score" json:"score"`
	Status      MatchStatus `dynamodbav:"status" json:"status"`
	StartedAt   time.Time   `dynamodbav:"started_at" json:"startedAt"`
	CreatedAt   time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
	FinalizedAt *time.Time  `dynamodbav:"finalized_at,omitempty" json:"finalizedAt,omitempty"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

func (m *Match) IsLive() bool {
	return m.Status == MatchStatusLive
}
