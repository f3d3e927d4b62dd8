package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/burakmert236/clubscore/common/database"
	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/burakmert236/clubscore/common/models"
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) *apperrors.AppError
	GetById(ctx context.Context, clubId string) (*models.Club, *apperrors.AppError)
	List(ctx context.Context) ([]*models.Club, *apperrors.AppError)
	Delete(ctx context.Context, clubId string) *apperrors.AppError
}

type clubRepo struct {
	db *database.DynamoDBClient
}

func NewClubRepository(db *database.DynamoDBClient) ClubRepository {
	return &clubRepo{db: db}
}

func clubKey(clubId string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ClubPK(clubId)},
		"SK": &types.AttributeValueMemberS{Value: models.MetaSK()},
	}
}

func (r *clubRepo) Create(ctx context.Context, club *models.Club) *apperrors.AppError {
	club.PK = models.ClubPK(club.ClubId)
	club.SK = models.MetaSK()
	club.GSI1PK = models.ClubsGSI1PK()
	club.GSI1SK = models.ClubCreatedGSI1SK(club.CreatedAt)

	item, err := attributevalue.MarshalMap(club)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal club")
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return apperrors.New(apperrors.CodeConflict, "club id already exists")
		}
		return cluberrors.WrapDatabaseError(err, "failed to create club")
	}

	return nil
}

func (r *clubRepo) GetById(ctx context.Context, clubId string) (*models.Club, *apperrors.AppError) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       clubKey(clubId),
	})
	if err != nil {
		return nil, cluberrors.WrapDatabaseError(err, "failed to get club")
	}

	if result.Item == nil {
		return nil, cluberrors.ClubNotFound()
	}

	var club models.Club
	if err := attributevalue.UnmarshalMap(result.Item, &club); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal club")
	}

	return &club, nil
}

// List returns clubs newest first.
func (r *clubRepo) List(ctx context.Context) ([]*models.Club, *apperrors.AppError) {
	clubs := make([]*models.Club, 0)
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			IndexName:              aws.String(database.GSI1),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: models.ClubsGSI1PK()},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, cluberrors.WrapDatabaseError(err, "failed to list clubs")
		}

		var page []*models.Club
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal clubs")
		}
		clubs = append(clubs, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return clubs, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// Delete removes the club record only if it exists.
func (r *clubRepo) Delete(ctx context.Context, clubId string) *apperrors.AppError {
	_, err := r.db.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.db.Table()),
		Key:                 clubKey(clubId),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return cluberrors.ClubNotFound()
		}
		return cluberrors.WrapDatabaseError(err, "failed to delete club")
	}

	return nil
}
