package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

const messageLookupFieldsMissing = "Please fill all search fields"

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parsePaging reads page and page_size, rejecting non-numeric values.
func parsePaging(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page_size")
	}
	return page, pageSize, nil
}

func userEmailFromContext(c *fiber.Ctx) string {
	if email, ok := c.Locals(middleware.LocalUserEmail).(string); ok {
		return strings.TrimSpace(email)
	}
	return ""
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		return role
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		Email: userEmailFromContext(c),
		Role:  userRoleFromContext(c),
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendValidationError answers 400 with per-field messages when err carries them.
func sendValidationError(c *fiber.Ctx, err error) (bool, error) {
	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		return false, nil
	}
	return true, utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), validationErr.Fields)
}

func sendCSV(c *fiber.Ctx, file dto.ExportFile) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Content)
}

func kindFromParams(c *fiber.Ctx) (csvimport.Kind, error) {
	return csvimport.ParseKind(c.Params("kind"))
}
