package wsclient

import (
	"context"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
)

// Transport is one live message channel to the suggestion server. The
// Manager owns exactly one at a time; a new one is never opened before the
// previous one is closed.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens a Transport. Tests substitute an in-memory implementation.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Transport, error)
}

type websocketTransport struct {
	conn *websocket.Conn
}

func (t *websocketTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *websocketTransport) WriteMessage(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *websocketTransport) Close() error {
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return t.conn.Close()
}

// WebsocketDialer dials the real server. The handshake either completes
// within the timeout or the attempt counts as failed.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

func (d *WebsocketDialer) Dial(ctx context.Context, url string, header http.Header) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return &websocketTransport{conn: conn}, nil
}
