package handler

import (
	"citation-engine-be/internal/config"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/pkg/serverutils"
	"citation-engine-be/internal/service"
	internalWS "citation-engine-be/internal/websocket"
	pktNats "citation-engine-be/pkg/nats"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type SuggestHandler struct {
	suggestionService service.ISuggestionService
	publisher         *pktNats.Publisher
	hub               *internalWS.Hub
	validate          *validator.Validate
	suggestConfig     config.SuggestConfig
	logger            logger.ILogger
}

func NewSuggestHandler(
	suggestionService service.ISuggestionService,
	pub *pktNats.Publisher,
	hub *internalWS.Hub,
	validate *validator.Validate,
	suggestConfig config.SuggestConfig,
	log logger.ILogger,
) *SuggestHandler {
	return &SuggestHandler{
		suggestionService: suggestionService,
		publisher:         pub,
		hub:               hub,
		validate:          validate,
		suggestConfig:     suggestConfig,
		logger:            log,
	}
}

// ServeWs authenticates the handshake and upgrades it to a suggestion
// session. Identity comes from a "token" query parameter (the browser
// path) or a Bearer header (tooling).
func (h *SuggestHandler) ServeWs(c *fiber.Ctx) error {
	userID, err := serverutils.IdentityFromRequest(c)
	if err != nil {
		h.logger.Warn("SuggestHandler", "Rejected WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or missing token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SuggestHandler", "Starting suggestion session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID, h.suggestionService, h.validate, h.publisher, h.suggestConfig, h.logger)
			h.logger.Info("SuggestHandler", "Suggestion session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *SuggestHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/suggest", h.ServeWs)
}
