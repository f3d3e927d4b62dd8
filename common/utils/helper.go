package utils

import (
	"context"
	"encoding/base64"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/burakmert236/clubscore/common/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// NewID returns prefix + "_" + 12 base64url characters (72 random bits).
// The bytes come from a v4 UUID with the version and variant bytes skipped.
func NewID(prefix string) string {
	u := uuid.New()
	b := make([]byte, 0, 9)
	b = append(b, u[0:6]...)
	b = append(b, u[9:12]...)
	return prefix + "_" + base64.RawURLEncoding.EncodeToString(b)
}

func NewConnectionID() string {
	return uuid.NewString()
}

func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("gRPC call failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
			return resp, err
		}
		log.Debug("gRPC call", "method", info.FullMethod, "duration", time.Since(start))
		return resp, err
	}
}

func WaitForGracefulShutdown(log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c

	log.Info("Shutting down...", "signal", sig.String())
}
