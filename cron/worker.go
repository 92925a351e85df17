package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"fundihub/config"

	"github.com/hibiken/asynq"
)

// Task types processed by the background worker.
const (
	TypeMatchExpire = "match:expire"
	TypeFeeRelease  = "booking:release_fee"
)

type matchExpirePayload struct {
	MatchID string `json:"matchId"`
}

type feeReleasePayload struct {
	BookingID string `json:"bookingId"`
}

// NewMatchExpiryTask builds the task that finalizes a stale match.
func NewMatchExpiryTask(matchID string) (*asynq.Task, error) {
	payload, err := json.Marshal(matchExpirePayload{MatchID: matchID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMatchExpire, payload), nil
}

// NewFeeReleaseTask builds the task that releases an escrowed booking fee
// after verified completion.
func NewFeeReleaseTask(bookingID string) (*asynq.Task, error) {
	payload, err := json.Marshal(feeReleasePayload{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFeeRelease, payload), nil
}

// MatchExpirer finalizes stale matches.
type MatchExpirer interface {
	ExpireMatch(ctx context.Context, matchID string) error
}

// FeeReleaser settles escrowed booking fees.
type FeeReleaser interface {
	ReleaseFee(ctx context.Context, bookingID string) error
}

// RedisOpt returns the asynq Redis connection settings from config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
}

// NewTaskClient returns an asynq client for enqueueing tasks.
func NewTaskClient() *asynq.Client {
	return asynq.NewClient(RedisOpt())
}

// InitWorker runs the background worker that expires matches and releases
// escrowed fees.
func InitWorker(expirer MatchExpirer, releaser FeeReleaser) {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMatchExpire, handleMatchExpire(expirer))
	mux.HandleFunc(TypeFeeRelease, handleFeeRelease(releaser))

	go func() {
		log.Println("[Worker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Printf("[Worker] worker stopped: %v", err)
		}
	}()
}

func handleMatchExpire(expirer MatchExpirer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p matchExpirePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid match expiry payload: %w", err)
		}
		return expirer.ExpireMatch(ctx, p.MatchID)
	}
}

func handleFeeRelease(releaser FeeReleaser) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p feeReleasePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid fee release payload: %w", err)
		}
		return releaser.ReleaseFee(ctx, p.BookingID)
	}
}
