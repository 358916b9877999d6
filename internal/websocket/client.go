package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/internal/service"
	"citation-engine-be/pkg/events"
	pktNats "citation-engine-be/pkg/nats"
	"citation-engine-be/pkg/protocol"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // suggest frames carry surrounding paragraphs
)

// Client is a middleman between one websocket connection and the
// suggestion service.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID uuid.UUID

	// Buffered channel of outbound frames.
	Send chan []byte

	suggestionService service.ISuggestionService
	limiter           *rate.Limiter
	validate          *validator.Validate
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

// readPump pumps frames from the websocket connection to the suggestion
// service. One suggest frame in, one suggestions (or error) frame out,
// always echoing the request id.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WsClient", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		// A malformed frame poisons only itself, never the connection.
		c.logger.Warn("WsClient", "Malformed frame dropped", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
		c.enqueue(protocol.NewError("", "malformed message"))
		return
	}

	switch m := msg.(type) {
	case *protocol.SuggestMessage:
		if err := c.validate.Struct(m); err != nil {
			c.enqueue(protocol.NewError(m.RequestId, "invalid suggest payload"))
			return
		}
		if !c.limiter.Allow() {
			c.enqueue(protocol.NewError(m.RequestId, "rate limit exceeded"))
			return
		}
		// Served off the read loop so a slow index never blocks ping
		// handling on this connection.
		go c.serveSuggestion(m)

	case *protocol.PingMessage:
		c.enqueue(protocol.NewPong())

	case *protocol.PongMessage:
		// Client answered a protocol ping; nothing to do.

	default:
		c.enqueue(protocol.NewError("", "unsupported message type"))
	}
}

func (c *Client) serveSuggestion(m *protocol.SuggestMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := c.suggestionService.Suggest(ctx, m.Text, m.Context)
	if err != nil {
		if errors.Is(err, service.ErrIndexUnavailable) {
			c.enqueue(protocol.NewError(m.RequestId, "suggestion index unavailable"))
		} else {
			c.enqueue(protocol.NewError(m.RequestId, "internal error"))
		}
		return
	}

	c.enqueue(protocol.NewSuggestions(m.RequestId, results))

	if c.eventPublisher != nil {
		topConfidence := 0.0
		if len(results) > 0 {
			topConfidence = results[0].Confidence
		}
		evt := events.NewSuggestionServed(c.UserID.String(), m.RequestId, len(results), topConfidence)
		if err := c.eventPublisher.Publish(context.Background(), evt); err != nil {
			c.logger.Warn("WsClient", "Failed to publish analytics event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// enqueue serializes v and hands it to the write pump. Frames to a slow
// consumer are dropped; the client re-requests on its debounce cadence.
func (c *Client) enqueue(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("WsClient", "Failed to marshal frame", map[string]interface{}{"error": err.Error()})
		return
	}
	select {
	case c.Send <- data:
	default:
		c.logger.Warn("WsClient", "Send buffer full, dropping frame", map[string]interface{}{"user_id": c.UserID})
	}
}

// writePump pumps frames from the Send channel to the websocket
// connection and keeps the transport alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
