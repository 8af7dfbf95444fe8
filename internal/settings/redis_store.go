package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"gateconsole/pkg/models"
)

// RedisConfig configures Redis access for the settings store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps the setting as a JSON string under <prefix>:engine-config.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore constructs a Redis-backed settings store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "gateconsole"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis settings store: %w", err)
	}

	return &RedisStore{client: client, key: redisKey(cfg.KeyPrefix)}, nil
}

func redisKey(prefix string) string {
	return strings.TrimSpace(prefix) + ":" + Key
}

// Load reads the saved setting.
func (s *RedisStore) Load(ctx context.Context) (*models.EngineConfig, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings key: %w", err)
	}
	var cfg models.EngineConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse settings key: %w", err)
	}
	return &cfg, nil
}

// Save replaces the saved setting.
func (s *RedisStore) Save(ctx context.Context, cfg models.EngineConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write settings key: %w", err)
	}
	return nil
}

// Close closes Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
