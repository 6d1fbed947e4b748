package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter storing each key's window as a sorted set scored by
// request time in microseconds.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedis(rdb redis.Cmdable, prefix string, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{rdb: rdb, prefix: prefix, now: now}
}

func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := r.now()
	nowScore := now.UnixMicro()
	cutoff := now.Add(-window).UnixMicro()
	redisKey := r.prefix + key
	member := strconv.FormatInt(nowScore, 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowScore), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if card.Val() <= int64(limit) {
		return true, 0, nil
	}

	// Over the limit: the rejected request does not count.
	if err := r.rdb.ZRem(ctx, redisKey, member).Err(); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	oldest, err := r.rdb.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(oldest) == 0 {
		return false, window, nil
	}
	first := time.UnixMicro(int64(oldest[0].Score))
	return false, first.Add(window).Sub(now), nil
}
