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

type MemberRepository interface {
	// Create reports false when the membership already existed.
	Create(ctx context.Context, member *models.ClubMember) (bool, *apperrors.AppError)
	ListByClub(ctx context.Context, clubId string) ([]*models.ClubMember, *apperrors.AppError)
}

type memberRepo struct {
	db *database.DynamoDBClient
}

func NewMemberRepository(db *database.DynamoDBClient) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *models.ClubMember) (bool, *apperrors.AppError) {
	member.PK = models.ClubPK(member.ClubId)
	member.SK = models.MemberSK(member.UserId)

	item, err := attributevalue.MarshalMap(member)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal membership")
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		if database.IsConditionalCheckFailed(err) {
			return false, nil
		}
		return false, cluberrors.WrapDatabaseError(err, "failed to join club")
	}

	return true, nil
}

// ListByClub returns memberships in user id order.
func (r *memberRepo) ListByClub(ctx context.Context, clubId string) ([]*models.ClubMember, *apperrors.AppError) {
	members := make([]*models.ClubMember, 0)
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.db.Table()),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: models.ClubPK(clubId)},
				":prefix": &types.AttributeValueMemberS{Value: models.MemberSKPrefix()},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, cluberrors.WrapDatabaseError(err, "failed to list members")
		}

		var page []*models.ClubMember
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to unmarshal members")
		}
		members = append(members, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return members, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
