package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis persists state as one JSON value per account key. A single SET is
// atomic on the server side, satisfying the Store contract.
type Redis struct {
	rdb *redis.Client
	key string
}

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
}

// NewRedis connects to Redis and scopes state to the given account key.
func NewRedis(ctx context.Context, opts RedisOptions, account string) (*Redis, error) {
	if account == "" {
		return nil, fmt.Errorf("redis store: account must not be empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{
		rdb: rdb,
		key: "riskgate:throttle:" + account,
	}, nil
}

func (r *Redis) Load(ctx context.Context) (StateRecord, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return StateRecord{}, ErrNotFound
	}
	if err != nil {
		return StateRecord{}, fmt.Errorf("load state from redis: %w", err)
	}

	var rec StateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return StateRecord{}, fmt.Errorf("parse state at %s: %w", r.key, err)
	}
	return rec, nil
}

func (r *Redis) Save(ctx context.Context, rec StateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save state to redis: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
