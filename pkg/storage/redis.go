package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisPrefix namespaces document keys so a shared redis instance can
// host other applications.
const redisPrefix = "nest:map:"

// RedisStore persists documents in a redis instance, one key per
// document. The zero value is not usable - use [NewRedisStore].
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the redis instance described by cfg and
// verifies the connection before returning.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(name string) string {
	return redisPrefix + name
}

// Load retrieves a document by name.
func (s *RedisStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading map %q: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding map %q: %w", name, err)
	}
	return &doc, nil
}

// Save stores a document, overwriting any previous version.
func (s *RedisStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateName(doc.Name); err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding map %q: %w", doc.Name, err)
	}
	if err := s.client.Set(ctx, redisKey(doc.Name), data, 0).Err(); err != nil {
		return fmt.Errorf("writing map %q: %w", doc.Name, err)
	}
	return nil
}

// Delete removes a document. Deleting an absent name is a no-op.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKey(name)).Err(); err != nil {
		return fmt.Errorf("deleting map %q: %w", name, err)
	}
	return nil
}

// List returns summaries of all stored documents, sorted by name.
func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	infos := make([]Info, 0)
	iter := s.client.Scan(ctx, 0, redisPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // raced with a delete
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      strings.TrimPrefix(key, redisPrefix),
			UpdatedAt: doc.UpdatedAt,
			Nodes:     len(doc.Map.Nodes),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning maps: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
