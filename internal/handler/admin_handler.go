package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// AdminHandler serves the admin console overview and submission review.
type AdminHandler struct {
	admin     service.AdminService
	activity  service.ActivityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(admin service.AdminService, activity service.ActivityService, validate *validator.Validate, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes. The router must already enforce the admin role.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)

	router.Get("/forms", h.listForms)
	router.Get("/forms/export", h.exportForms)
	router.Patch("/forms/:id/status", h.updateFormStatus)
	router.Delete("/forms/:id", h.deleteForm)

	router.Get("/verifications", h.listVerifications)
	router.Get("/verifications/export", h.exportVerifications)
	router.Patch("/verifications/:id/status", h.updateVerificationStatus)
	router.Delete("/verifications/:id", h.deleteVerification)

	router.Get("/activity", h.listActivity)
}

func (h *AdminHandler) dashboard(c *fiber.Ctx) error {
	response, err := h.admin.Dashboard(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	return utils.SendSuccess(c, "dashboard", response)
}

func (h *AdminHandler) listRequest(c *fiber.Ctx) (dto.AdminListRequest, error) {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return dto.AdminListRequest{}, err
	}
	return dto.AdminListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Class:    c.Query("class"),
	}, nil
}

func (h *AdminHandler) listForms(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.admin.ListForms(requestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list forms")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list forms")
	}
	return utils.OK(c, response.Items, "forms", response.Pagination)
}

func (h *AdminHandler) statusPayload(c *fiber.Ctx) (string, error) {
	var payload dto.StatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return "", errors.New("invalid payload")
	}
	payload.Status = strings.TrimSpace(payload.Status)
	if err := h.validator.Struct(payload); err != nil {
		return "", errors.New("status is required")
	}
	return payload.Status, nil
}

func (h *AdminHandler) updateFormStatus(c *fiber.Ctx) error {
	status, err := h.statusPayload(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.admin.UpdateFormStatus(requestContext(c), activityActorFromContext(c), c.Params("id"), status)
	if err != nil {
		return h.mutationError(c, err, "failed to update form status")
	}
	return utils.SendSuccess(c, "Status updated", updated)
}

func (h *AdminHandler) deleteForm(c *fiber.Ctx) error {
	if err := h.admin.DeleteForm(requestContext(c), activityActorFromContext(c), c.Params("id")); err != nil {
		return h.mutationError(c, err, "failed to delete form")
	}
	return utils.SendSuccess(c, "Form deleted", fiber.Map{"id": c.Params("id")})
}

func (h *AdminHandler) exportForms(c *fiber.Ctx) error {
	file, err := h.admin.ExportForms(requestContext(c))
	if err != nil {
		return h.exportError(c, err)
	}
	return sendCSV(c, file)
}

func (h *AdminHandler) listVerifications(c *fiber.Ctx) error {
	req, err := h.listRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.admin.ListVerifications(requestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list verification requests")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list verification requests")
	}
	return utils.OK(c, response.Items, "verification requests", response.Pagination)
}

func (h *AdminHandler) updateVerificationStatus(c *fiber.Ctx) error {
	status, err := h.statusPayload(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.admin.UpdateVerificationStatus(requestContext(c), activityActorFromContext(c), c.Params("id"), status)
	if err != nil {
		return h.mutationError(c, err, "failed to update verification status")
	}
	return utils.SendSuccess(c, "Status updated", updated)
}

func (h *AdminHandler) deleteVerification(c *fiber.Ctx) error {
	if err := h.admin.DeleteVerification(requestContext(c), activityActorFromContext(c), c.Params("id")); err != nil {
		return h.mutationError(c, err, "failed to delete verification request")
	}
	return utils.SendSuccess(c, "Verification request deleted", fiber.Map{"id": c.Params("id")})
}

func (h *AdminHandler) exportVerifications(c *fiber.Ctx) error {
	file, err := h.admin.ExportVerifications(requestContext(c))
	if err != nil {
		return h.exportError(c, err)
	}
	return sendCSV(c, file)
}

func (h *AdminHandler) listActivity(c *fiber.Ctx) error {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.activity.List(requestContext(c), dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Actor:      c.Query("actor"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity")
	}
	return utils.OK(c, response.Items, "activity", response.Pagination)
}

func (h *AdminHandler) mutationError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid status")
	case errors.Is(err, service.ErrFormNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "form submission not found")
	case errors.Is(err, service.ErrVerificationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "verification request not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func (h *AdminHandler) exportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNothingToExport) {
		return utils.SendError(c, fiber.StatusNotFound, "No data to download")
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("export failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "failed to export data")
}
