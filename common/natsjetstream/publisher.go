package natsjetstream

import (
	"context"
	"encoding/json"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamPublisher is the part of jetstream.JetStream the publisher needs.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type Publisher struct {
	js JetStreamPublisher
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{js: client.js}
}

func NewPublisherWith(js JetStreamPublisher) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) PublishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal event payload")
	}

	return p.Publish(ctx, subject, data)
}

func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to publish message")
	}
	return nil
}
