package models

import "time"

type Club struct {
	ClubId    string    `dynamodbav:"club_id" json:"clubId"`
	Name      string    `dynamodbav:"name" json:"name"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	CreatedBy string    `dynamodbav:"created_by" json:"createdBy"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

type ClubMember struct {
	ClubId   string    `dynamodbav:"club_id" json:"clubId"`
	UserId   string    `dynamodbav:"user_id" json:"userId"`
	JoinedAt time.Time `dynamodbav:"joined_at" json:"joinedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

// Member is a membership resolved against the user's profile.
type Member struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}
