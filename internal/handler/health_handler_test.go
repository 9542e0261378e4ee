package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/noah-isme/dsbe-portal-api/internal/config"
	"github.com/noah-isme/dsbe-portal-api/internal/handler"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

func healthApp(db *gorm.DB, cache *redis.Client) *fiber.App {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "DSBE Portal API", AppEnv: "test"}, db, cache))
	return app
}

func TestHealthCheck_ReportsHealthyDependencies(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectPing()

	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	resp, err := healthApp(db, cache).Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &health))
	require.Equal(t, "ok", health.Checks["database"])
	require.Equal(t, "ok", health.Checks["cache"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_DatabaseDownIsUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	resp, err := healthApp(db, nil).Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.False(t, env.Success)
	require.Equal(t, "service degraded", env.Message)

	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "down", health.Checks["database"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_CacheDownStaysHealthy(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = cache.Close() })
	server.Close()

	resp, err := healthApp(nil, cache).Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &health))
	require.Equal(t, "down", health.Checks["cache"])
}
