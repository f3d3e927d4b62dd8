package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/burakmert236/clubscore/common/database"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
)

// Unprocessed batch items are resubmitted this many times in total.
const maxBatchAttempts = 3

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) *apperrors.AppError
	GetById(ctx context.Context, matchId string) (*models.Match, *apperrors.AppError)
	ListByClub(ctx context.Context, clubId string) ([]*models.Match, *apperrors.AppError)
	ListIdsByClub(ctx context.Context, clubId string) ([]string, *apperrors.AppError)
	// UpdateScore writes the exact value for one side; fails with NOT_LIVE
	// unless the match is still LIVE.
	UpdateScore(ctx context.Context, matchId string, team models.Team, value int, now time.Time) (*models.Match, *apperrors.AppError)
	// Finalize moves a LIVE match to FINAL; fails with NOT_LIVE otherwise.
	Finalize(ctx context.Context, matchId string, now time.Time) (*models.Match, *apperrors.AppError)
	DeleteBatch(ctx context.Context, matchIds []string) *apperrors.AppError
}

type matchRepo struct {
	db *database.DynamoDBClient
}

func NewMatchRepository(db *database.DynamoDBClient) MatchRepository {
	return &matchRepo{db: db}
}

func matchKey(matchId string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.MatchPK(matchId)},
		"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
	}
}

func (r *matchRepo) Create(ctx context.Context, match *models.Match) *apperrors.AppError {
	match.PK = models.MatchPK(match.MatchId)
	match.SK = models.MetaSK()
	match.GSI1PK = models.ClubPK(match.ClubId)
	match.GSI1SK = models.MatchGSI1SK(match.StartedAt, match.MatchId)

	item, err := attributevalue.MarshalMap(match)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal match")
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return apperrors.New(apperrors.CodeConflict, "match id already exists")
		}
		return cluberrors.WrapDatabaseError(err, "failed to create match")
	}

	return nil
}

func (r *matchRepo) GetById(ctx context.Context, matchId string) (*models.Match, *apperrors.AppError) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.db.Table()),
		Key:            matchKey(matchId),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, cluberrors.WrapDatabaseError(err, "failed to get match")
	}

	if result.Item == nil {
		return nil, cluberrors.MatchNotFound()
	}

	return unmarshalMatch(result.Item)
}

// ListByClub returns the club's matches newest first by startedAt.
func (r *matchRepo) ListByClub(ctx context.Context, clubId string) ([]*models.Match, *apperrors.AppError) {
	matches := make([]*models.Match, 0)

	err := r.queryClubMatches(ctx, clubId, nil, func(items []map[string]types.AttributeValue) error {
		var page []*models.Match
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return err
		}
		matches = append(matches, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

func (r *matchRepo) ListIdsByClub(ctx context.Context, clubId string) ([]string, *apperrors.AppError) {
	ids := make([]string, 0)

	err := r.queryClubMatches(ctx, clubId, aws.String("match_id"), func(items []map[string]types.AttributeValue) error {
		for _, item := range items {
			var row struct {
				MatchId string `dynamodbav:"match_id"`
			}
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return err
			}
			if row.MatchId != "" {
				ids = append(ids, row.MatchId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *matchRepo) queryClubMatches(
	ctx context.Context,
	clubId string,
	projection *string,
	page func([]map[string]types.AttributeValue) error,
) *apperrors.AppError {
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			IndexName:              aws.String(database.GSI1),
			KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: models.ClubPK(clubId)},
				":prefix": &types.AttributeValueMemberS{Value: models.MatchGSI1SKPrefix()},
			},
			ProjectionExpression: projection,
			ScanIndexForward:     aws.Bool(false),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return cluberrors.WrapDatabaseError(err, "failed to query club matches")
		}

		if err := page(result.Items); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal matches")
		}

		if len(result.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func (r *matchRepo) UpdateScore(
	ctx context.Context,
	matchId string,
	team models.Team,
	value int,
	now time.Time,
) (*models.Match, *apperrors.AppError) {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal timestamp")
	}

	result, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.db.Table()),
		Key:                 matchKey(matchId),
		UpdateExpression:    aws.String("SET #score.#team = :value, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #status = :live"),
		ExpressionAttributeNames: map[string]string{
			"#score":  "score",
			"#team":   string(team),
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", value)},
			":now":   updatedAt,
			":live":  &types.AttributeValueMemberS{Value: string(models.MatchStatusLive)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return nil, cluberrors.MatchNotLive()
		}
		return nil, cluberrors.WrapDatabaseError(err, "failed to update score")
	}

	return unmarshalMatch(result.Attributes)
}

func (r *matchRepo) Finalize(ctx context.Context, matchId string, now time.Time) (*models.Match, *apperrors.AppError) {
	finalizedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal timestamp")
	}

	result, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.db.Table()),
		Key:                 matchKey(matchId),
		UpdateExpression:    aws.String("SET #status = :final, updated_at = :now, finalized_at = :now"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #status = :live"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":final": &types.AttributeValueMemberS{Value: string(models.MatchStatusFinal)},
			":live":  &types.AttributeValueMemberS{Value: string(models.MatchStatusLive)},
			":now":   finalizedAt,
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return nil, cluberrors.MatchNotLive()
		}
		return nil, cluberrors.WrapDatabaseError(err, "failed to finalize match")
	}

	return unmarshalMatch(result.Attributes)
}

// DeleteBatch deletes matches in chunks of database.BatchWriteLimit.
// Items still unprocessed after maxBatchAttempts fail the call.
func (r *matchRepo) DeleteBatch(ctx context.Context, matchIds []string) *apperrors.AppError {
	for _, chunk := range database.Chunk(matchIds, database.BatchWriteLimit) {
		requests := make([]types.WriteRequest, 0, len(chunk))
		for _, id := range chunk {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: matchKey(id)},
			})
		}

		pending := map[string][]types.WriteRequest{r.db.Table(): requests}
		for attempt := 0; attempt < maxBatchAttempts && len(pending) > 0; attempt++ {
			result, err := r.db.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return cluberrors.WrapDatabaseError(err, "failed to delete matches")
			}
			pending = result.UnprocessedItems
		}

		if left := len(pending[r.db.Table()]); left > 0 {
			return apperrors.New(apperrors.CodeInternal, fmt.Sprintf("failed to delete %d matches", left))
		}
	}

	return nil
}

func unmarshalMatch(item map[string]types.AttributeValue) (*models.Match, *apperrors.AppError) {
	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal match")
	}
	return &match, nil
}
