package natsjetstream

import (
	"time"

	"github.com/burakmert236/clubscore/common/config"
)

type Config struct {
	Name          string
	URL           string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// ConfigFrom names the connection after the service so it can be told apart
// in the server's connection list.
func ConfigFrom(cfg config.NATSConfig, clientName string) *Config {
	return &Config{
		Name:          clientName,
		URL:           cfg.URL,
		MaxReconnect:  cfg.MaxReconnect,
		ReconnectWait: time.Duration(cfg.ReconnectWaitSeconds) * time.Second,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

type ConsumerConfig struct {
	StreamName    string
	ConsumerName  string
	Durable       string
	FilterSubject string
	// DeliverPolicy is "all" or "new"; empty means all.
	DeliverPolicy string
	AckPolicy     string
	AckWait       time.Duration
	MaxDeliver    int
	MaxAckPending int

	// InactiveThreshold reaps ephemeral consumers left behind by dead instances.
	InactiveThreshold time.Duration
}
