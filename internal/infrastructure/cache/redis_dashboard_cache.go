// Package cache implementa ports.DashboardCache sobre Redis, más una variante nula.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/leads-api/internal/application/dto"
	"github.com/jhoicas/leads-api/internal/application/ports"
)

// KeyPrefix prefijo de todas las claves del tablero.
const KeyPrefix = "dashboard:"

var (
	_ ports.DashboardCache = (*RedisDashboardCache)(nil)
	_ ports.DashboardCache = NoopCache{}
)

// NewClient crea el cliente Redis desde una URL redis:// y verifica la conexión.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisDashboardCache guarda el JSON del tablero en dashboard:<día>:<rango> con TTL.
type RedisDashboardCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisDashboardCache construye la caché; ttl <= 0 usa un minuto.
func NewRedisDashboardCache(rdb redis.UniversalClient, ttl time.Duration) *RedisDashboardCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisDashboardCache{rdb: rdb, ttl: ttl}
}

// Get devuelve (nil, false, nil) si la clave no existe.
func (c *RedisDashboardCache) Get(ctx context.Context, key string) (*dto.DashboardResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var out dto.DashboardResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}
	return &out, true, nil
}

// Set guarda value serializado con el TTL configurado.
func (c *RedisDashboardCache) Set(ctx context.Context, key string, value *dto.DashboardResponse) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}
	if err := c.rdb.Set(ctx, KeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate borra todas las claves dashboard:* recorriéndolas con SCAN.
func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// NoopCache desactiva la caché (REDIS_URL vacío).
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*dto.DashboardResponse, bool, error) {
	return nil, false, nil
}
func (NoopCache) Set(context.Context, string, *dto.DashboardResponse) error { return nil }
func (NoopCache) Invalidate(context.Context) error                          { return nil }
