package models

import (
	"time"
)

type UserProfile struct {
	UserId      string    `dynamodbav:"user_id" json:"userId"`
	Email       string    `dynamodbav:"email" json:"email"`
	Username    string    `dynamodbav:"username" json:"username"`
	DisplayName string    `dynamodbav:"display_name" json:"displayName"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

// ResolvedName falls back from display name to username to the user id.
func (u *UserProfile) ResolvedName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.UserId
}
