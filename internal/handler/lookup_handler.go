package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// LookupHandler serves application tracking and result lookups.
type LookupHandler struct {
	applications service.ApplicationService
	results      service.ResultService
	logger       zerolog.Logger
}

// NewLookupHandler constructs a lookup handler.
func NewLookupHandler(applications service.ApplicationService, results service.ResultService, logger zerolog.Logger) *LookupHandler {
	return &LookupHandler{
		applications: applications,
		results:      results,
		logger:       logger.With().Str("component", "lookup_handler").Logger(),
	}
}

// Register wires lookup routes.
func (h *LookupHandler) Register(router fiber.Router) {
	router.Get("/applications/status", h.trackApplication)
	router.Get("/results", h.result)
	router.Get("/results/merit", h.merit)
}

func (h *LookupHandler) trackApplication(c *fiber.Ctx) error {
	var query dto.ApplicationTrackRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	status, err := h.applications.Track(requestContext(c), query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLookupFieldsMissing):
			return utils.SendError(c, fiber.StatusBadRequest, "Please enter both Application ID and Date of Birth")
		case errors.Is(err, service.ErrApplicationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "No matching record found. Please check your details.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("application lookup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to look up application")
		}
	}

	return utils.SendSuccess(c, "application status", status)
}

func (h *LookupHandler) result(c *fiber.Ctx) error {
	var query dto.ResultLookupRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.results.Lookup(requestContext(c), query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLookupFieldsMissing):
			return utils.SendError(c, fiber.StatusBadRequest, messageLookupFieldsMissing)
		case errors.Is(err, service.ErrResultNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "No matching record found. Please check your details.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("result lookup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to look up result")
		}
	}

	return utils.SendSuccess(c, "result", result)
}

func (h *LookupHandler) merit(c *fiber.Ctx) error {
	list, err := h.results.MeritList(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build merit list")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load merit list")
	}
	return utils.SendSuccess(c, "merit list", list)
}
