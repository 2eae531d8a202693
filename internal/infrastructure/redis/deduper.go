// Package redis guarda los ids de eventos de pago ya procesados.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/pkg/config"
)

var _ subscription.EventDeduper = (*EventDeduper)(nil)

const (
	defaultPrefix = "crm:webhook:event:"
	defaultTTL    = 7 * 24 * time.Hour
)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// EventDeduper implementa subscription.EventDeduper con claves con TTL.
type EventDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewEventDeduper ttl <= 0 usa 7 días.
func NewEventDeduper(client *redis.Client, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &EventDeduper{client: client, prefix: defaultPrefix, ttl: ttl}
}

// Seen indica si el evento ya fue procesado.
func (d *EventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Mark registra el evento como procesado. Volver a marcarlo no renueva el TTL.
func (d *EventDeduper) Mark(ctx context.Context, eventID string) error {
	if err := d.client.SetNX(ctx, d.prefix+eventID, time.Now().UTC().Format(time.RFC3339), d.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}
