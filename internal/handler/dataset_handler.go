package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// DatasetHandler manages CSV uploads of applications, results and verification data.
type DatasetHandler struct {
	service service.DatasetService
	logger  zerolog.Logger
}

// NewDatasetHandler constructs a dataset handler.
func NewDatasetHandler(service service.DatasetService, logger zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{
		service: service,
		logger:  logger.With().Str("component", "dataset_handler").Logger(),
	}
}

// Register wires dataset routes. The router must already enforce the admin role.
func (h *DatasetHandler) Register(router fiber.Router) {
	router.Get("/datasets/:kind", h.list)
	router.Post("/datasets/:kind/import", h.upload)
	router.Get("/datasets/:kind/sample", h.sample)
	router.Get("/datasets/:kind/export", h.export)
	router.Get("/imports", h.history)
}

func (h *DatasetHandler) list(c *fiber.Ctx) error {
	kind, err := kindFromParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "unknown dataset")
	}

	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(requestContext(c), kind, dto.DatasetListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("kind", string(kind)).Msg("failed to list dataset")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list dataset")
	}
	return utils.OK(c, response.Items, response.Kind, response.Pagination)
}

func (h *DatasetHandler) upload(c *fiber.Ctx) error {
	kind, err := kindFromParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "unknown dataset")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	handle, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read upload")
	}
	defer handle.Close()

	content, err := io.ReadAll(handle)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read upload")
	}

	actor := activityActorFromContext(c)
	response, err := h.service.Import(requestContext(c), actor, kind, dto.ImportUpload{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  content,
		Actor:    actor.Email,
	})
	if err != nil {
		var importErr *service.ImportValidationError
		switch {
		case errors.As(err, &importErr):
			return utils.Fail(c, fiber.StatusUnprocessableEntity, importErr.Error(), dto.ImportErrorResponse{
				Kind:   kind.Slug(),
				Errors: importErr.Errors,
			})
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrFileRequired):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("kind", string(kind)).Msg("dataset import failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to import dataset")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, response.Message, response)
}

func (h *DatasetHandler) sample(c *fiber.Ctx) error {
	kind, err := kindFromParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "unknown dataset")
	}
	return sendCSV(c, h.service.Sample(kind))
}

func (h *DatasetHandler) export(c *fiber.Ctx) error {
	kind, err := kindFromParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "unknown dataset")
	}

	file, err := h.service.Export(requestContext(c), kind)
	if err != nil {
		if errors.Is(err, service.ErrNothingToExport) {
			return utils.SendError(c, fiber.StatusNotFound, "No data to download")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("kind", string(kind)).Msg("dataset export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export dataset")
	}
	return sendCSV(c, file)
}

func (h *DatasetHandler) history(c *fiber.Ctx) error {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.History(requestContext(c), dto.ImportHistoryRequest{
		Page:     page,
		PageSize: pageSize,
		Kind:     c.Query("kind"),
		Status:   c.Query("status"),
	})
	if err != nil {
		if errors.Is(err, csvimport.ErrUnknownKind) {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown dataset")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list imports")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list imports")
	}
	return utils.OK(c, response.Items, "imports", response.Pagination)
}
