package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Archive stores uploaded CSV sheets as raw Cloudinary assets.
type Archive struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Cloudinary archive.
func New(cfg Config, logger zerolog.Logger) (*Archive, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Archive{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary_archive").Logger(),
		now:    time.Now,
	}, nil
}

// Store uploads the sheet under <folder>/<kind>/ and returns its secure URL.
func (a *Archive) Store(ctx context.Context, kind, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       path.Join(a.folder, kind),
		PublicID:     BuildPublicID(name, a.now()),
		ResourceType: "raw",
	}

	result, err := a.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to archive %s sheet: %w", kind, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to archive %s sheet: %s", kind, result.Error.Message)
	}

	a.logger.Info().Str("public_id", result.PublicID).Str("kind", kind).Msg("csv sheet archived")

	return result.SecureURL, nil
}

// BuildPublicID derives a unique raw asset id. Raw assets keep their
// extension in the id so downloads open as CSV.
func BuildPublicID(name string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".csv"
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "sheet"
	}

	return fmt.Sprintf("%s-%d%s", base, at.Unix(), ext)
}
