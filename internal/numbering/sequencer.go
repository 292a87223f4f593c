package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BookingCounter считает бронирования, созданные в полуинтервале [from, to).
type BookingCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// CountSequencer: прочитать количество за месяц и прибавить 1.
// Не атомарен: две одновременные заявки могут получить один номер,
// тогда вторая упадёт на уникальном индексе booking_number.
type CountSequencer struct {
	counter BookingCounter
}

func NewCountSequencer(counter BookingCounter) *CountSequencer {
	return &CountSequencer{counter: counter}
}

func (s *CountSequencer) Next(ctx context.Context, now time.Time) (int64, error) {
	from, to := MonthRange(now)
	n, err := s.counter.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// redisCounter: подмножество *redis.Client, нужное секвенсору.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Ключ месяца живёт дольше самого месяца, чтобы пережить сдвиг часовых поясов.
const redisKeyTTL = 40 * 24 * time.Hour

// RedisSequencer: атомарный счётчик на месяц через INCR.
type RedisSequencer struct {
	client redisCounter
	prefix string
}

func NewRedisSequencer(client redisCounter, prefix string) *RedisSequencer {
	if prefix == "" {
		prefix = "booking_seq"
	}
	return &RedisSequencer{client: client, prefix: prefix}
}

func (s *RedisSequencer) Key(now time.Time) string {
	return fmt.Sprintf("%s:%02d%02d", s.prefix, now.Year()%100, int(now.Month()))
}

func (s *RedisSequencer) Next(ctx context.Context, now time.Time) (int64, error) {
	key := s.Key(now)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, redisKeyTTL).Err(); err != nil {
			return 0, fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return n, nil
}
