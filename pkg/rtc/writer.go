package rtc

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// outboundFrame is one queued socket write: a JSON envelope as text, or a
// raw audio frame as binary.
type outboundFrame struct {
	text   []byte
	binary []byte
}

type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// outboundWriter owns all writes to the socket. gorilla/websocket permits a
// single concurrent writer, so every producer funnels through the frames
// channel and this goroutine.
type outboundWriter struct {
	conn         wsConn
	ctx          context.Context
	frames       <-chan outboundFrame
	pingInterval time.Duration
	writeTimeout time.Duration
}

func (w *outboundWriter) Run() error {
	pingInterval := w.pingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	writeTimeout := w.writeTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			deadline := time.Now().Add(writeTimeout)
			_ = w.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = w.conn.Close()
			return nil
		case <-pingTicker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := w.conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return err
			}
		case frame, ok := <-w.frames:
			if !ok {
				return nil
			}
			if err := w.writeFrame(frame, writeTimeout); err != nil {
				return err
			}
		}
	}
}

func (w *outboundWriter) writeFrame(frame outboundFrame, writeTimeout time.Duration) error {
	deadline := time.Now().Add(writeTimeout)
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if len(frame.text) > 0 {
		return w.conn.WriteMessage(websocket.TextMessage, frame.text)
	}
	if len(frame.binary) > 0 {
		return w.conn.WriteMessage(websocket.BinaryMessage, frame.binary)
	}
	return nil
}
