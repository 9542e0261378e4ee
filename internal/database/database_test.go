package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "dsn")
	require.Error(t, err)
}

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := Connect("postgres", "")
	require.Error(t, err)
}

func TestConnectSQLiteDefaultsToMemory(t *testing.T) {
	db, err := Connect("sqlite", "")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
}

func TestConnectRedisValidatesURL(t *testing.T) {
	_, err := ConnectRedis("")
	require.Error(t, err)

	_, err = ConnectRedis("://bad")
	require.Error(t, err)
}

func TestConnectNATSRequiresURL(t *testing.T) {
	_, err := ConnectNATS("", "test")
	require.Error(t, err)
}

func TestConnectRedisPingsServer(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := ConnectRedis("redis://" + server.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "admin:dashboard:v1", "{}", 0).Err())
	require.True(t, server.Exists("admin:dashboard:v1"))
}
