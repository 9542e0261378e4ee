package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
)

const feedPingInterval = 30 * time.Second

// FeedHandler streams admin events over a websocket.
type FeedHandler struct {
	events       service.EventService
	logger       zerolog.Logger
	pingInterval time.Duration
}

// NewFeedHandler constructs the live feed handler. A zero ping interval uses the default.
func NewFeedHandler(events service.EventService, logger zerolog.Logger, pingInterval time.Duration) *FeedHandler {
	if pingInterval <= 0 {
		pingInterval = feedPingInterval
	}
	return &FeedHandler{
		events:       events,
		logger:       logger.With().Str("component", "feed_handler").Logger(),
		pingInterval: pingInterval,
	}
}

// Register binds the websocket route. Authentication runs before this router.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	email, _ := conn.Locals(middleware.LocalUserEmail).(string)
	logger := h.logger.With().Str("actor", email).Logger()

	events, cleanup := h.events.Subscribe()
	defer cleanup()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello := dto.FeedEvent{
		ID:        uuid.NewString(),
		Type:      service.EventFeedConnected,
		Summary:   "Connected to admin live feed",
		CreatedAt: time.Now().UTC(),
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Debug().Err(err).Msg("feed greeting failed")
		return
	}
	logger.Info().Msg("admin feed connected")

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("feed write loop terminated")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				logger.Debug().Err(err).Msg("feed ping failed")
				return
			}
		case <-closed:
			logger.Info().Msg("admin feed disconnected")
			return
		}
	}
}
