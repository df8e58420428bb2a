// Package jobstate tracks report generation jobs in Redis. Each requested
// report owns a short-lived lock keyed by its parameters so concurrent
// requests for the same report collapse into one generation, and a result
// cell recording the artifact once a worker finishes.
package jobstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result records a finished generation: where the artifact landed and when.
type Result struct {
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	ContextID   int64  `json:"context_id"`
	CompletedAt int64  `json:"completed_at"` // Unix timestamp
}

// Manager manages report job state in Redis.
type Manager struct {
	redis     *redis.Client
	lockTTL   time.Duration
	resultTTL time.Duration
}

// NewManager creates a new job state manager.
func NewManager(redisClient *redis.Client, lockTTL, resultTTL time.Duration) *Manager {
	return &Manager{
		redis:     redisClient,
		lockTTL:   lockTTL,
		resultTTL: resultTTL,
	}
}

// ReportKey derives the state key identifying one report request. Two
// requests with the same subject and period share a key and therefore a
// lock and a result cell.
func ReportKey(userID, start, end int64) string {
	return fmt.Sprintf("report:%d:%d:%d", userID, start, end)
}

// AcquireLock claims the generation lock for a report key. Returns false
// when another worker already holds it; the caller should drop the job
// rather than generate the same report twice.
func (m *Manager) AcquireLock(ctx context.Context, key string) (bool, error) {
	ok, err := m.redis.SetNX(ctx, lockKey(key), time.Now().Unix(), m.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire job lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock releases the generation lock for a report key. Releasing a
// lock that expired or was never held is not an error.
func (m *Manager) ReleaseLock(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, lockKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release job lock: %w", err)
	}
	return nil
}

// SetResult records the artifact of a finished generation. The cell is
// written at most once per key while it lives; a second completion for the
// same report leaves the first result in place.
func (m *Manager) SetResult(ctx context.Context, key string, result *Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	if err := m.redis.SetNX(ctx, resultKey(key), data, m.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}
	return nil
}

// GetResult returns the recorded result for a report key, or nil when the
// generation has not completed (or the cell expired).
func (m *Manager) GetResult(ctx context.Context, key string) (*Result, error) {
	data, err := m.redis.Get(ctx, resultKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
	}
	return &result, nil
}

// ClearResult removes the result cell for a report key. Called when a new
// generation is requested for a period that already has an artifact, so
// polls do not report the stale file while the new one is being built.
func (m *Manager) ClearResult(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, resultKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear job result: %w", err)
	}
	return nil
}

func lockKey(key string) string {
	return "lock:" + key
}

func resultKey(key string) string {
	return "result:" + key
}
