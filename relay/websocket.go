package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit    = 1 << 20
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// wsTransport adapts a websocket connection to Transport. Data frames are
// written by the session writer only; control frames may come from any
// goroutine, which gorilla permits.
type wsTransport struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) WriteFrame(frame []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *wsTransport) Close() error {
	return t.closeWith(websocket.CloseNormalClosure, "")
}

func (t *wsTransport) closeWith(code int, text string) error {
	t.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, text)
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// ServeWebSocket runs a relay session over an upgraded connection until the
// peer goes away. It blocks; the connection is closed on return. A handshake
// with an unknown identity is closed with a policy violation.
func (r *Relay) ServeWebSocket(conn *websocket.Conn, identity string) error {
	t := newWSTransport(conn)
	s, err := r.Connect(identity, t)
	if err != nil {
		_ = t.closeWith(websocket.ClosePolicyViolation, err.Error())
		return err
	}
	defer r.Disconnect(s)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		r.Touch(s)
		return nil
	})

	go r.keepalive(s, conn)

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.log.Debug("websocket read", zap.String("session", s.id), zap.Error(err))
			}
			return nil
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		r.HandleFrame(s, payload)
	}
}

func (r *Relay) keepalive(s *Session, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				r.Disconnect(s)
				return
			}
		}
	}
}
