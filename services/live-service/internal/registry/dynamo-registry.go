package registry

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/burakmert236/clubscore/common/database"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/models"
	liveerrors "github.com/burakmert236/clubscore/services/live-service/internal/errors"
)

type dynamoRegistry struct {
	db  *database.DynamoDBClient
	ttl time.Duration
}

// NewDynamoRegistry stores connections in the shared table. A positive ttl
// sets expires_at so the table's TTL sweeps sockets whose disconnect never
// arrived.
func NewDynamoRegistry(db *database.DynamoDBClient, ttl time.Duration) Registry {
	return &dynamoRegistry{db: db, ttl: ttl}
}

func (r *dynamoRegistry) Add(ctx context.Context, conn *models.Connection) *apperrors.AppError {
	if conn.ConnectionId == "" {
		return liveerrors.ConnectionIdRequired()
	}
	conn.ClubId = NormalizeClubID(conn.ClubId)
	conn.ConnectedAt = conn.ConnectedAt.UTC()

	conn.PK = models.ConnectionPK(conn.ConnectionId)
	conn.SK = models.MetaSK()
	conn.GSI1PK = models.ClubPK(conn.ClubId)
	conn.GSI1SK = models.ConnectionGSI1SK(conn.ConnectedAt, conn.ConnectionId)
	if r.ttl > 0 {
		conn.ExpiresAt = conn.ConnectedAt.Add(r.ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(conn)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal connection")
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})
	if err != nil {
		return liveerrors.WrapRegistryError(err, "failed to register connection")
	}

	return nil
}

func (r *dynamoRegistry) Remove(ctx context.Context, connectionId string) *apperrors.AppError {
	if connectionId == "" {
		return liveerrors.ConnectionIdRequired()
	}

	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.db.Table()),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: models.ConnectionPK(connectionId)},
			"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
		},
	})
	if err != nil {
		return liveerrors.WrapRegistryError(err, "failed to remove connection")
	}

	return nil
}

// ListByClub reads GSI1, where connections share the CLUB# partition with
// matches and are told apart by the CONN# sort key prefix.
func (r *dynamoRegistry) ListByClub(ctx context.Context, clubId string) ([]*models.Connection, *apperrors.AppError) {
	clubId = NormalizeClubID(clubId)

	conns := make([]*models.Connection, 0)
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			IndexName:              aws.String(database.GSI1),
			KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: models.ClubPK(clubId)},
				":prefix": &types.AttributeValueMemberS{Value: models.ConnectionGSI1SKPrefix()},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, liveerrors.WrapRegistryError(err, "failed to list connections")
		}

		var page []*models.Connection
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal connections")
		}
		conns = append(conns, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return conns, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
