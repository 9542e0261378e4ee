package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

type recordedEvent struct {
	Type      string
	EntityRef string
	Summary   string
}

type capturePublisher struct {
	events []recordedEvent
}

func (p *capturePublisher) Publish(_ context.Context, eventType, entityRef, summary string, data map[string]interface{}) dto.FeedEvent {
	p.events = append(p.events, recordedEvent{Type: eventType, EntityRef: entityRef, Summary: summary})
	return dto.FeedEvent{Type: eventType, EntityRef: entityRef, Summary: summary, Data: data}
}
