package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names.
const (
	StreamMissingTeams = "footyguess.teams.missing"
	StreamRoundsGraded = "footyguess.rounds.graded"
)

// streamAdder is the slice of the Redis client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// MissingTeamEvent is published when a team first falls back to a placeholder.
type MissingTeamEvent struct {
	Team       string    `json:"team"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RoundGradedEvent is published for every graded quiz round.
type RoundGradedEvent struct {
	GameID   string      `json:"game_id"`
	Round    int         `json:"round"`
	Points   int         `json:"points"`
	Total    int         `json:"total"`
	Result   interface{} `json:"result"`
	GradedAt time.Time   `json:"graded_at"`
}

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client  streamAdder
	closer  func() error
	maxLen  int64
	timeout time.Duration
	logger  *log.Logger
}

// NewRedisPublisher connects to redisURL and checks the connection
func NewRedisPublisher(redisURL string, logger *log.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	p := newPublisher(client, logger)
	p.closer = client.Close
	return p, nil
}

func newPublisher(client streamAdder, logger *log.Logger) *RedisPublisher {
	if logger == nil {
		logger = log.New(log.Writer(), "[publisher] ", log.LstdFlags)
	}
	return &RedisPublisher{
		client:  client,
		maxLen:  10000,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	if rp.closer == nil {
		return nil
	}
	return rp.closer()
}

// PublishMissingTeam appends a missing-team event
func (rp *RedisPublisher) PublishMissingTeam(ctx context.Context, team string) error {
	return rp.publish(ctx, StreamMissingTeams, MissingTeamEvent{Team: team, RecordedAt: time.Now().UTC()})
}

// PublishRoundGraded appends a graded-round event
func (rp *RedisPublisher) PublishRoundGraded(ctx context.Context, ev RoundGradedEvent) error {
	if ev.GradedAt.IsZero() {
		ev.GradedAt = time.Now().UTC()
	}
	return rp.publish(ctx, StreamRoundsGraded, ev)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// MissingTeamHook returns a ledger callback that publishes in the background,
// so a slow Redis never holds up badge resolution.
func (rp *RedisPublisher) MissingTeamHook() func(team string) {
	return func(team string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), rp.timeout)
			defer cancel()
			if err := rp.PublishMissingTeam(ctx, team); err != nil {
				rp.logger.Printf("⚠️  publish missing team %q: %v", team, err)
			}
		}()
	}
}

// PublishAsync publishes a graded round in the background.
func (rp *RedisPublisher) PublishAsync(ev RoundGradedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), rp.timeout)
		defer cancel()
		if err := rp.PublishRoundGraded(ctx, ev); err != nil {
			rp.logger.Printf("⚠️  publish round for game %s: %v", ev.GameID, err)
		}
	}()
}
