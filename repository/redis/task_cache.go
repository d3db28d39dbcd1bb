package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

const statisticsKey = "statistics"

var fillScript = redislib.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

type taskCache struct {
	client  redislib.Cmdable
	breaker *gobreaker.CircuitBreaker
	prefix  string
	ttl     time.Duration
}

// NewTaskCache creates a Redis-backed TaskCache. Calls go through a circuit
// breaker so an unreachable Redis is skipped instead of slowing every request.
func NewTaskCache(client redislib.Cmdable, ttl time.Duration, logger *zap.Logger) repository.TaskCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "task-cache",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &taskCache{
		client:  client,
		breaker: breaker,
		prefix:  "tasks:",
		ttl:     ttl,
	}
}

func (c *taskCache) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	found, err := c.get(ctx, c.taskKey(id), &task)
	if err != nil || !found {
		return nil, err
	}
	return &task, nil
}

func (c *taskCache) TaskGeneration(ctx context.Context, id int64) (int64, error) {
	return c.generation(ctx, c.generationKey(c.taskKey(id)))
}

func (c *taskCache) SetTask(ctx context.Context, task *domain.Task, generation int64) error {
	if task == nil || task.ID == 0 {
		return domain.ErrInvalidPayload
	}
	key := c.taskKey(task.ID)
	return c.fill(ctx, c.generationKey(key), key, task, generation)
}

func (c *taskCache) GetStatistics(ctx context.Context) (*domain.TaskStatistics, error) {
	var stats domain.TaskStatistics
	found, err := c.get(ctx, c.prefix+statisticsKey, &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

func (c *taskCache) StatisticsGeneration(ctx context.Context) (int64, error) {
	return c.generation(ctx, c.generationKey(c.prefix+statisticsKey))
}

func (c *taskCache) SetStatistics(ctx context.Context, stats *domain.TaskStatistics, generation int64) error {
	if stats == nil {
		return domain.ErrInvalidPayload
	}
	key := c.prefix + statisticsKey
	return c.fill(ctx, c.generationKey(key), key, stats, generation)
}

// Invalidate bumps the generations of the task and the statistics snapshot,
// then drops both values.
func (c *taskCache) Invalidate(ctx context.Context, id int64) error {
	taskKey, statsKey := c.taskKey(id), c.prefix+statisticsKey
	_, err := c.breaker.Execute(func() (interface{}, error) {
		for _, key := range []string{taskKey, statsKey} {
			if err := c.client.Incr(ctx, c.generationKey(key)).Err(); err != nil {
				return nil, err
			}
		}
		return nil, c.client.Del(ctx, taskKey, statsKey).Err()
	})
	return err
}

func (c *taskCache) generation(ctx context.Context, key string) (int64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		value, err := c.client.Get(ctx, key).Int64()
		if errors.Is(err, redislib.Nil) {
			return int64(0), nil
		}
		return value, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// fill writes value under key only while generationKey still holds generation.
func (c *taskCache) fill(ctx context.Context, generationKey, key string, value interface{}, generation int64) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, fillScript.Run(ctx, c.client,
			[]string{generationKey, key},
			strconv.FormatInt(generation, 10), string(payload), c.ttl.Milliseconds(),
		).Err()
	})
	return err
}

func (c *taskCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		payload, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return payload, err
	})
	if err != nil {
		return false, err
	}
	payload, _ := result.([]byte)
	if payload == nil {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *taskCache) taskKey(id int64) string {
	return fmt.Sprintf("%stask:%d", c.prefix, id)
}

func (c *taskCache) generationKey(key string) string {
	return key + ":gen"
}
