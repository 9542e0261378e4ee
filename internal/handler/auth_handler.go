package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// AuthHandler exposes login, registration and the current principal.
type AuthHandler struct {
	service service.AuthService
	protect fiber.Handler
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler. protect guards the /me route.
func NewAuthHandler(service service.AuthService, protect fiber.Handler, logger zerolog.Logger) *AuthHandler {
	if protect == nil {
		protect = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AuthHandler{
		service: service,
		protect: protect,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Get("/me", h.protect, middleware.WithAuth(h.me, middleware.AuthOptions{RequireUser: true}))
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return h.authError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Registration successful", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		return h.authError(c, err)
	}
	return utils.SendSuccess(c, "Login successful", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(requestContext(c), userEmailFromContext(c), userRoleFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusUnauthorized, "account no longer exists")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve current user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load account")
	}
	return utils.SendSuccess(c, "current user", user)
}

func (h *AuthHandler) authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrAuthFieldsMissing):
		return utils.SendError(c, fiber.StatusBadRequest, "All fields are required")
	case errors.Is(err, service.ErrInvalidEmail):
		return utils.SendError(c, fiber.StatusBadRequest, "Please enter a valid email")
	case errors.Is(err, service.ErrPasswordTooShort):
		return utils.SendError(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "Email already registered")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("authentication failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "authentication failed")
	}
}
