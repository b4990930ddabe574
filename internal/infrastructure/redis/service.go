package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/config"
)

const (
	connectTimeout = 5 * time.Second
	// Namespace prefixes every key this process writes.
	Namespace = "chatbot:"
)

// Service is a namespaced key store over a single Redis connection.
type Service struct {
	client *redis.Client
}

// NewService returns nil when Redis is not configured or not reachable.
func NewService(cfg config.Config) *Service {
	if cfg.RedisURL == "" {
		log.Info().Msg("Redis URL not configured - sessions will be kept in memory")
		return nil
	}

	client := redis.NewClient(clientOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", client.Options().Addr).
			Msg("Redis unreachable at startup")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", client.Options().Addr).Int("db", client.Options().DB).Msg("Connected to Redis")
	return &Service{client: client}
}

// clientOptions accepts either a redis:// URL or a bare host:port address.
func clientOptions(cfg config.Config) *redis.Options {
	if strings.Contains(cfg.RedisURL, "://") {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err == nil {
			if cfg.RedisPassword != "" {
				opt.Password = cfg.RedisPassword
			}
			return opt
		}
		log.Warn().Err(err).Msg("Failed to parse Redis URL, treating it as an address")
	}

	return &redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
	}
}

// Key joins parts under the process namespace.
func Key(parts ...string) string {
	return Namespace + strings.Join(parts, ":")
}

// Store writes value under key, expiring after ttl.
func (s *Service) Store(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Dur("ttl", ttl).Msg("Redis store failed")
		return err
	}
	return nil
}

// Load reads key. A missing or expired key reports found=false with no error.
func (s *Service) Load(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = s.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		log.Error().Err(err).Str("key", key).Msg("Redis load failed")
		return "", false, err
	}
	return value, true, nil
}

// Forget removes key. Removing a missing key is not an error.
func (s *Service) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.client.Close()
}
