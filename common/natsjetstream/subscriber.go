package natsjetstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/burakmert236/clubscore/common/logger"
	"github.com/nats-io/nats.go/jetstream"
)

type Subscriber struct {
	client *Client
	logger *logger.Logger
}

type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

func NewSubscriber(client *Client, log *logger.Logger) *Subscriber {
	return &Subscriber{client: client, logger: log}
}

// Subscribe starts consuming until the returned context is stopped.
func (s *Subscriber) Subscribe(ctx context.Context, cfg ConsumerConfig, handler MessageHandler) (jetstream.ConsumeContext, error) {
	consumer, err := s.client.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, consumerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg); err != nil {
			s.logger.Error("failed to handle message", "subject", msg.Subject(), "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return cc, nil
}

func consumerConfig(cfg ConsumerConfig) jetstream.ConsumerConfig {
	out := jetstream.ConsumerConfig{
		Name:          cfg.ConsumerName,
		Durable:       cfg.Durable,
		FilterSubject: cfg.FilterSubject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		MaxAckPending: cfg.MaxAckPending,

		InactiveThreshold: cfg.InactiveThreshold,
	}

	switch cfg.AckPolicy {
	case "none":
		out.AckPolicy = jetstream.AckNonePolicy
	case "all":
		out.AckPolicy = jetstream.AckAllPolicy
	default:
		out.AckPolicy = jetstream.AckExplicitPolicy
	}

	switch cfg.DeliverPolicy {
	case "new":
		out.DeliverPolicy = jetstream.DeliverNewPolicy
	case "last":
		out.DeliverPolicy = jetstream.DeliverLastPolicy
	default:
		out.DeliverPolicy = jetstream.DeliverAllPolicy
	}

	return out
}

func UnmarshalJSON(msg jetstream.Msg, v any) error {
	return json.Unmarshal(msg.Data(), v)
}
