package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
	require.NotNil(t, CSVImports())
	require.NotNil(t, FeedClients())
}

func TestMetricsHandlerExposesPortalSeries(t *testing.T) {
	Submissions().WithLabelValues("form").Inc()
	CSVImports().WithLabelValues("result", "applied").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `portal_submissions_total{kind="form"}`)
	require.Contains(t, string(body), `portal_csv_imports_total{kind="result",outcome="applied"}`)
}
