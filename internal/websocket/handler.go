package websocket

import (
	"context"

	"citation-engine-be/internal/config"
	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/service"
	"citation-engine-be/pkg/events"
	pktNats "citation-engine-be/pkg/nats"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ServeWs runs one suggestion connection to completion. Each connection
// gets its own token-bucket limiter so a single aggressive editor cannot
// starve the index.
func ServeWs(
	hub *Hub,
	conn *websocket.Conn,
	userID uuid.UUID,
	suggestionService service.ISuggestionService,
	validate *validator.Validate,
	eventPublisher *pktNats.Publisher,
	cfg config.SuggestConfig,
	log logger.ILogger,
) {
	client := &Client{
		Hub:               hub,
		Conn:              conn,
		UserID:            userID,
		Send:              make(chan []byte, 256),
		suggestionService: suggestionService,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst),
		validate:          validate,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
	client.Hub.register <- client

	if eventPublisher != nil {
		if err := eventPublisher.Publish(context.Background(), events.NewConnectionOpened(userID.String())); err != nil {
			log.Warn("WsHandler", "Failed to publish connection event", map[string]interface{}{"error": err.Error()})
		}
	}

	go client.writePump()
	client.readPump() // runs in the upgrade handler's goroutine
}
