package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestBuildPublicID(t *testing.T) {
	at := time.Unix(1700000000, 0)

	require.Equal(t, "Results-2024--final-1700000000.csv", BuildPublicID("Results 2024 (final).CSV", at))
	require.Equal(t, "sheet-1700000000.csv", BuildPublicID("###", at))
	require.Equal(t, "applications-1700000000.csv", BuildPublicID("../uploads/applications", at))
}
