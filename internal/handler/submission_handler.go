package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// SubmissionHandler accepts the public forms: student applications,
// verification requests and instant certificate checks.
type SubmissionHandler struct {
	forms         service.FormService
	verifications service.VerificationService
	limit         fiber.Handler
	logger        zerolog.Logger
}

// NewSubmissionHandler constructs a submission handler. limit throttles the write endpoints.
func NewSubmissionHandler(forms service.FormService, verifications service.VerificationService, limit fiber.Handler, logger zerolog.Logger) *SubmissionHandler {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &SubmissionHandler{
		forms:         forms,
		verifications: verifications,
		limit:         limit,
		logger:        logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires public submission routes.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/forms", h.limit, h.submitForm)
	router.Post("/verifications/requests", h.limit, h.requestVerification)
	router.Post("/verifications/search", h.verify)
}

func (h *SubmissionHandler) submitForm(c *fiber.Ctx) error {
	var payload dto.ApplicationFormRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	receipt, err := h.forms.Submit(requestContext(c), payload)
	if err != nil {
		if handled, sendErr := sendValidationError(c, err); handled {
			return sendErr
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to store application form")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit form")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Application submitted successfully!", receipt)
}

func (h *SubmissionHandler) requestVerification(c *fiber.Ctx) error {
	var payload dto.VerificationRequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	receipt, err := h.verifications.Request(requestContext(c), payload)
	if err != nil {
		if handled, sendErr := sendValidationError(c, err); handled {
			return sendErr
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to store verification request")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit verification request")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Verification request submitted!", receipt)
}

func (h *SubmissionHandler) verify(c *fiber.Ctx) error {
	var payload dto.InstantVerifyRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.verifications.Verify(requestContext(c), payload)
	if err != nil {
		if errors.Is(err, service.ErrLookupFieldsMissing) {
			return utils.SendError(c, fiber.StatusBadRequest, messageLookupFieldsMissing)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("instant verification failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "verification failed")
	}

	message := "Record verified"
	if !response.Found {
		message = "No matching record found. Please check your details or request official verification."
	}
	return utils.SendSuccess(c, message, response)
}
