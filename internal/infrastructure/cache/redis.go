package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const (
	progressKeyPrefix     = "meeting:progress:"
	progressChannelPrefix = "meeting-progress:"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
	}
	return client, nil
}

// ProgressKey is the key holding a meeting's latest snapshot
func ProgressKey(meetingID uuid.UUID) string {
	return progressKeyPrefix + meetingID.String()
}

// ProgressChannel is the pub/sub channel snapshots are published on
func ProgressChannel(meetingID uuid.UUID) string {
	return progressChannelPrefix + meetingID.String()
}

// RedisProgressStore keeps snapshots under a TTL and publishes every write
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProgressStore creates a Redis-backed ProgressStore
func NewRedisProgressStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProgressStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProgressStore{client: client, ttl: ttl, logger: logger}
}

// SetProgress stores the snapshot and publishes it in one round trip
func (s *RedisProgressStore) SetProgress(ctx context.Context, progress entities.ProcessingProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ProgressKey(progress.MeetingID), payload, s.ttl)
	pipe.Publish(ctx, ProgressChannel(progress.MeetingID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store progress: %w", err)
	}

	s.logger.Debug("progress stored",
		zap.String("meeting_id", progress.MeetingID.String()),
		zap.String("stage", string(progress.Stage)),
		zap.Int("progress", progress.Progress),
	)
	return nil
}

// GetProgress returns entities.ErrProgressNotFound when the key is absent
func (s *RedisProgressStore) GetProgress(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingProgress, error) {
	val, err := s.client.Get(ctx, ProgressKey(meetingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entities.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	var p entities.ProcessingProgress
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}
	return &p, nil
}

// Subscribe streams snapshots published for the meeting until ctx is done
func (s *RedisProgressStore) Subscribe(ctx context.Context, meetingID uuid.UUID) (<-chan entities.ProcessingProgress, error) {
	sub := s.client.Subscribe(ctx, ProgressChannel(meetingID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan entities.ProcessingProgress)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var p entities.ProcessingProgress
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					s.logger.Warn("⚠️ Dropping malformed progress event", zap.Error(err))
					continue
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
