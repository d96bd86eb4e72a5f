package stats

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "bucketshot:stats:"

// ConnectRedis parses url, connects and pings.
func ConnectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisStore keeps each player's record in a hash.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(player string) string {
	return redisKeyPrefix + player
}

func (s *RedisStore) Load(ctx context.Context, player string) (Record, error) {
	res := s.rdb.HGetAll(ctx, redisKey(player))
	fields, err := res.Result()
	if err != nil {
		return Record{}, fmt.Errorf("load stats for %s: %w", player, err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}
	var r Record
	if err := res.Scan(&r); err != nil {
		return Record{}, fmt.Errorf("scan stats for %s: %w", player, err)
	}
	return r, nil
}

// Save never lowers the stored best: a second session with a shorter streak racing
// this one must not overwrite it.
func (s *RedisStore) Save(ctx context.Context, player string, r Record) error {
	key := redisKey(player)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "lifetime", r.Lifetime)
		bestScript.Eval(ctx, pipe, []string{key}, r.Best)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save stats for %s: %w", player, err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, player string) error {
	if err := s.rdb.Del(ctx, redisKey(player)).Err(); err != nil {
		return fmt.Errorf("reset stats for %s: %w", player, err)
	}
	return nil
}

var bestScript = redis.NewScript(`
local cur = tonumber(redis.call("HGET", KEYS[1], "best") or "0")
local nxt = tonumber(ARGV[1])
if nxt > cur then
	redis.call("HSET", KEYS[1], "best", nxt)
	return nxt
end
return cur
`)
