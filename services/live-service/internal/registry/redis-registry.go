package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/burakmert236/clubscore/common/cache"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/logger"
	"github.com/burakmert236/clubscore/common/models"
	liveerrors "github.com/burakmert236/clubscore/services/live-service/internal/errors"
)

const DefaultConnectionTTL = 2 * time.Hour

type redisRegistry struct {
	client *redis.Client
	clock  clockwork.Clock
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisRegistry keeps one sorted set per club scored by connect time in
// milliseconds. Entries older than ttl are invisible to ListByClub and get
// trimmed on the next Add for that club.
func NewRedisRegistry(redisClient *cache.RedisClient, clock clockwork.Clock, ttl time.Duration, log *logger.Logger) Registry {
	return newRedisRegistry(redisClient.GetClient(), clock, ttl, log)
}

func newRedisRegistry(client *redis.Client, clock clockwork.Clock, ttl time.Duration, log *logger.Logger) *redisRegistry {
	if ttl <= 0 {
		ttl = DefaultConnectionTTL
	}
	return &redisRegistry{
		client: client,
		clock:  clock,
		ttl:    ttl,
		logger: log.With("component", "redis-registry"),
	}
}

// Key Generation

func clubConnectionsKey(clubId string) string {
	return fmt.Sprintf("live:club:%s", clubId)
}

func connectionKey(connectionId string) string {
	return fmt.Sprintf("live:conn:%s", connectionId)
}

func (r *redisRegistry) cutoff() int64 {
	return r.clock.Now().Add(-r.ttl).UnixMilli()
}

// Write Operations

func (r *redisRegistry) Add(ctx context.Context, conn *models.Connection) *apperrors.AppError {
	if conn.ConnectionId == "" {
		return liveerrors.ConnectionIdRequired()
	}
	conn.ClubId = NormalizeClubID(conn.ClubId)
	conn.ConnectedAt = conn.ConnectedAt.UTC()

	clubKey := clubConnectionsKey(conn.ClubId)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, clubKey, "-inf", "("+strconv.FormatInt(r.cutoff(), 10))
	pipe.ZAdd(ctx, clubKey, redis.Z{
		Score:  float64(conn.ConnectedAt.UnixMilli()),
		Member: conn.ConnectionId,
	})
	pipe.Expire(ctx, clubKey, r.ttl)
	pipe.Set(ctx, connectionKey(conn.ConnectionId), conn.ClubId, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to register connection",
			"error", err,
			"connection_id", conn.ConnectionId,
			"club_id", conn.ClubId,
		)
		return liveerrors.WrapRegistryError(err, "failed to register connection")
	}

	return nil
}

func (r *redisRegistry) Remove(ctx context.Context, connectionId string) *apperrors.AppError {
	if connectionId == "" {
		return liveerrors.ConnectionIdRequired()
	}

	clubId, err := r.client.Get(ctx, connectionKey(connectionId)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return liveerrors.WrapRegistryError(err, "failed to look up connection")
	}

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, clubConnectionsKey(clubId), connectionId)
	pipe.Del(ctx, connectionKey(connectionId))

	if _, err := pipe.Exec(ctx); err != nil {
		return liveerrors.WrapRegistryError(err, "failed to remove connection")
	}

	return nil
}

// Read Operations

func (r *redisRegistry) ListByClub(ctx context.Context, clubId string) ([]*models.Connection, *apperrors.AppError) {
	clubId = NormalizeClubID(clubId)

	members, err := r.client.ZRangeByScoreWithScores(ctx, clubConnectionsKey(clubId), &redis.ZRangeBy{
		Min: strconv.FormatInt(r.cutoff(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, liveerrors.WrapRegistryError(err, "failed to list connections")
	}

	conns := make([]*models.Connection, 0, len(members))
	for _, z := range members {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		conns = append(conns, &models.Connection{
			ConnectionId: id,
			ClubId:       clubId,
			ConnectedAt:  time.UnixMilli(int64(z.Score)).UTC(),
		})
	}

	return conns, nil
}
