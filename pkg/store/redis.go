package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onboardhub/onboardhub/pkg/utils/idgen"
)

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	// KeyPrefix namespaces all keys written by this store.
	KeyPrefix string `json:"key_prefix"`
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "onboardhub",
	}
}

// RedisStore implements Store on Redis. Records are stored as JSON
// values under per-entity key namespaces, with a set per entity tracking
// member ids for List.
type RedisStore struct {
	client         *redis.Client
	prefix         string
	externalClient bool
}

// NewRedisStore creates a Redis store with internal connection management.
func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

// NewRedisStoreWithClient creates a Redis store on an externally managed client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "onboardhub"
	}
	return &RedisStore{client: client, prefix: keyPrefix, externalClient: true}
}

func (s *RedisStore) recordKey(entity EntityType, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, entity, id)
}

func (s *RedisStore) indexKey(entity EntityType) string {
	return fmt.Sprintf("%s:%s:ids", s.prefix, entity)
}

// Create inserts a record and assigns a UUID id.
func (s *RedisStore) Create(ctx context.Context, entity EntityType, data map[string]any) (*Record, error) {
	now := time.Now()
	record := &Record{
		ID:        idgen.MustNewV4().String(),
		Type:      entity,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", entity, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(entity, record.ID), payload, 0)
	pipe.SAdd(ctx, s.indexKey(entity), record.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store %s record: %w", entity, err)
	}
	return record, nil
}

// Get fetches one record by id.
func (s *RedisStore) Get(ctx context.Context, entity EntityType, id string) (*Record, error) {
	payload, err := s.client.Get(ctx, s.recordKey(entity, id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s record %s not found", entity, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s record: %w", entity, err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", entity, err)
	}
	return &record, nil
}

// Update merges data into an existing record.
func (s *RedisStore) Update(ctx context.Context, entity EntityType, id string, data map[string]any) (*Record, error) {
	record, err := s.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		record.Data[k] = v
	}
	record.UpdatedAt = time.Now()

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", entity, err)
	}
	if err := s.client.Set(ctx, s.recordKey(entity, id), payload, 0).Err(); err != nil {
		return nil, fmt.Errorf("store %s record: %w", entity, err)
	}
	return record, nil
}

// Delete removes one record by id.
func (s *RedisStore) Delete(ctx context.Context, entity EntityType, id string) error {
	removed, err := s.client.Del(ctx, s.recordKey(entity, id)).Result()
	if err != nil {
		return fmt.Errorf("delete %s record: %w", entity, err)
	}
	if removed == 0 {
		return fmt.Errorf("%s record %s not found", entity, id)
	}
	if err := s.client.SRem(ctx, s.indexKey(entity), id).Err(); err != nil {
		return fmt.Errorf("update %s index: %w", entity, err)
	}
	return nil
}

// List returns records matching the filter. Filtering and ordering are
// applied client-side over the entity's id set.
func (s *RedisStore) List(ctx context.Context, entity EntityType, filter Filter) ([]*Record, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(entity)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch %s index: %w", entity, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(entity, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", entity, err)
	}

	var result []*Record
	for _, value := range values {
		str, ok := value.(string)
		if !ok {
			continue // id indexed but record expired or removed
		}
		var record Record
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", entity, err)
		}
		if matches(&record, filter) {
			result = append(result, &record)
		}
	}

	sortRecords(result, filter)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Close closes the Redis connection unless it is externally managed.
func (s *RedisStore) Close() error {
	if s.externalClient {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
