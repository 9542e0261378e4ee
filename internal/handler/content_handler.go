package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// ContentHandler serves the informational pages of the public site.
type ContentHandler struct {
	content service.ContentService
	courses service.CourseService
	logger  zerolog.Logger
}

// NewContentHandler constructs a content handler.
func NewContentHandler(content service.ContentService, courses service.CourseService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		courses: courses,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register wires content routes.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Get("/content/about", h.about)
	router.Get("/courses", h.catalog)
	router.Get("/courses/subjects", h.subjects)
}

func (h *ContentHandler) about(c *fiber.Ctx) error {
	response, err := h.content.About(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build about page")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load content")
	}
	return utils.SendSuccess(c, "about", response)
}

func (h *ContentHandler) catalog(c *fiber.Ctx) error {
	var filter dto.CourseFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	return utils.SendSuccess(c, "courses", h.courses.Catalog(filter))
}

func (h *ContentHandler) subjects(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "subjects", h.courses.Subjects())
}
