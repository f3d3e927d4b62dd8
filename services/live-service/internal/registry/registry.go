// Package registry tracks which live connections are subscribed to which club.
package registry

import (
	"context"
	"strings"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/models"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

type Registry interface {
	Add(ctx context.Context, conn *models.Connection) *apperrors.AppError
	// Remove is a no-op for unknown connections.
	Remove(ctx context.Context, connectionId string) *apperrors.AppError
	ListByClub(ctx context.Context, clubId string) ([]*models.Connection, *apperrors.AppError)
}

// NormalizeClubID maps a blank club to the shared global channel.
func NormalizeClubID(clubId string) string {
	clubId = strings.TrimSpace(clubId)
	if clubId == "" {
		return models.GlobalClubID
	}
	return clubId
}
