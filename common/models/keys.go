package models

import (
	"fmt"
	"strings"
	"time"
)

// SortableTime is fixed width so lexicographic order matches chronological order.
const SortableTime = "2006-01-02T15:04:05.000000000Z"

const GlobalClubID = "global"

func FormatSortable(t time.Time) string {
	return t.UTC().Format(SortableTime)
}

func MetaSK() string {
	return "META"
}

func ClubPK(clubId string) string {
	return fmt.Sprintf("CLUB#%s", clubId)
}

func ClubsGSI1PK() string {
	return "CLUBS"
}

func ClubCreatedGSI1SK(createdAt time.Time) string {
	return fmt.Sprintf("CREATED#%s", FormatSortable(createdAt))
}

func MemberSK(userId string) string {
	return fmt.Sprintf("MEMBER#%s", userId)
}

func MemberSKPrefix() string {
	return "MEMBER#"
}

func MatchPK(matchId string) string {
	return fmt.Sprintf("MATCH#%s", matchId)
}

func MatchGSI1SK(startedAt time.Time, matchId string) string {
	return fmt.Sprintf("%s%s#%s", MatchGSI1SKPrefix(), FormatSortable(startedAt), matchId)
}

func MatchGSI1SKPrefix() string {
	return "MATCH#"
}

func ConnectionPK(connectionId string) string {
	return fmt.Sprintf("CONN#%s", connectionId)
}

func ConnectionGSI1SK(connectedAt time.Time, connectionId string) string {
	return fmt.Sprintf("%s%s#%s", ConnectionGSI1SKPrefix(), FormatSortable(connectedAt), connectionId)
}

func ConnectionGSI1SKPrefix() string {
	return "CONN#"
}

func UserPK(userId string) string {
	return fmt.Sprintf("USER#%s", userId)
}

func ProfileSK() string {
	return "PROFILE"
}

func ExtractClubID(pk string) (string, error) {
	return extractID(pk, "CLUB#")
}

func ExtractMatchID(pk string) (string, error) {
	return extractID(pk, "MATCH#")
}

func ExtractUserID(pk string) (string, error) {
	return extractID(pk, "USER#")
}

func extractID(key, prefix string) (string, error) {
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
		return "", fmt.Errorf("invalid key format, expected %s<id>: %s", prefix, key)
	}
	return key[len(prefix):], nil
}
