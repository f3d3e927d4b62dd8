package repository

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
	cluberrors "github.com/burakmert236/clubscore/services/club-service/internal/errors"
)

type UserRepository interface {
	// Create reports false when a profile already existed.
	Create(ctx context.Context, user *models.UserProfile) (bool, *apperrors.AppError)
	GetById(ctx context.Context, userId string) (*models.UserProfile, *apperrors.AppError)
	// GetByIds returns the profiles that exist, keyed by user id.
	GetByIds(ctx context.Context, userIds []string) (map[string]*models.UserProfile, *apperrors.AppError)
	UpdateDisplayName(ctx context.Context, userId, displayName string, now time.Time) (*models.UserProfile, *apperrors.AppError)
}

type userRepo struct {
	db *database.DynamoDBClient
}

func NewUserRepository(db *database.DynamoDBClient) UserRepository {
	return &userRepo{db: db}
}

func userKey(userId string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.UserPK(userId)},
		"SK": &types.AttributeValueMemberS{Value: models.ProfileSK()},
	}
}

func (r *userRepo) Create(ctx context.Context, user *models.UserProfile) (bool, *apperrors.AppError) {
	user.PK = models.UserPK(user.UserId)
	user.SK = models.ProfileSK()

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal user")
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return false, nil
		}
		return false, cluberrors.WrapDatabaseError(err, "failed to create user")
	}

	return true, nil
}

func (r *userRepo) GetById(ctx context.Context, userId string) (*models.UserProfile, *apperrors.AppError) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       userKey(userId),
	})
	if err != nil {
		return nil, cluberrors.WrapDatabaseError(err, "failed to get user")
	}

	if result.Item == nil {
		return nil, cluberrors.ProfileNotFound()
	}

	var user models.UserProfile
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal user")
	}

	return &user, nil
}

func (r *userRepo) GetByIds(ctx context.Context, userIds []string) (map[string]*models.UserProfile, *apperrors.AppError) {
	profiles := make(map[string]*models.UserProfile, len(userIds))
	table := r.db.Table()

	for _, chunk := range database.Chunk(userIds, database.BatchGetLimit) {
		keys := make([]map[string]types.AttributeValue, 0, len(chunk))
		for _, id := range chunk {
			keys = append(keys, userKey(id))
		}

		pending := map[string]types.KeysAndAttributes{table: {Keys: keys}}
		for attempt := 0; attempt < maxBatchAttempts && len(pending) > 0; attempt++ {
			result, err := r.db.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return nil, cluberrors.WrapDatabaseError(err, "failed to batch get users")
			}

			var page []*models.UserProfile
			if err := attributevalue.UnmarshalListOfMaps(result.Responses[table], &page); err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal users")
			}
			for _, p := range page {
				profiles[p.UserId] = p
			}

			pending = result.UnprocessedKeys
		}

		if len(pending[table].Keys) > 0 {
			return nil, apperrors.New(apperrors.CodeInternal, "failed to load all user profiles")
		}
	}

	return profiles, nil
}

func (r *userRepo) UpdateDisplayName(ctx context.Context, userId, displayName string, now time.Time) (*models.UserProfile, *apperrors.AppError) {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal timestamp")
	}

	result, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.db.Table()),
		Key:                 userKey(userId),
		UpdateExpression:    aws.String("SET display_name = :name, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: displayName},
			":now":  updatedAt,
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return nil, cluberrors.ProfileNotFound()
		}
		return nil, cluberrors.WrapDatabaseError(err, "failed to update profile")
	}

	var user models.UserProfile
	if err := attributevalue.UnmarshalMap(result.Attributes, &user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal user")
	}

	return &user, nil
}
