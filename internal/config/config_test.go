package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DSBE_JWT_SECRET", "secret")
	t.Setenv("DSBE_ADMIN_EMAIL", " Admin@DSBE.test ")
	t.Setenv("DSBE_ADMIN_PASSWORD", "admin123")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "admin@dsbe.test", cfg.AdminEmail)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, 5, cfg.MeritListSize)
	require.Equal(t, 5, cfg.UploadMaxSizeMB)
	require.Equal(t, "dsbe-imports", cfg.MinIOBucket)
	require.False(t, cfg.ArchiveEnabled())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DSBE_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DSBE_JWT_SECRET", "secret")
	t.Setenv("DSBE_ADMIN_EMAIL", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	setRequired(t)
	t.Setenv("DSBE_DATABASE_DRIVER", "mysql")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DSBE_DATABASE_DRIVER", "sqlite")
	t.Setenv("DSBE_ARCHIVE_BACKEND", "s3")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("DSBE_JWT_TTL", "soon")
	t.Setenv("DSBE_ARCHIVE_BACKEND", "")
	_, err = Load()
	require.Error(t, err)
}

func TestArchiveProvider(t *testing.T) {
	cloudinary := Config{CloudinaryCloudName: "demo", CloudinaryAPIKey: "key", CloudinaryAPISecret: "secret"}
	require.Equal(t, ArchiveCloudinary, cloudinary.ArchiveProvider())

	minio := Config{ArchiveBackend: ArchiveMinIO, MinIOEndpoint: "localhost:9000", MinIOBucket: "dsbe-imports"}
	require.Equal(t, ArchiveMinIO, minio.ArchiveProvider())

	minio.MinIOEndpoint = ""
	require.Empty(t, minio.ArchiveProvider())

	disabled := cloudinary
	disabled.ArchiveBackend = "none"
	require.Empty(t, disabled.ArchiveProvider())
}
