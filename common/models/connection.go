package models

import "time"

type Connection struct {
	ConnectionId string    `dynamodbav:"connection_id" json:"connectionId"`
	ClubId       string    `dynamodbav:"club_id" json:"clubId"`
	ConnectedAt  time.Time `dynamodbav:"connected_at" json:"connectedAt"`
	ExpiresAt    int64     `dynamodbav:"expires_at,omitempty" json:"-"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`

	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}
