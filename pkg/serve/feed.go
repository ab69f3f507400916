package serve

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vgv/pkg/protocol"
)

const writeWait = 10 * time.Second

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client messages so close frames are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		images, err := s.feed(ctx, conn)
		if err != nil {
			s.logger.Debug("websocket feed stopped", "error", err)
			return
		}
		if !s.loop {
			break
		}
		// A pass without images still holds one tick before restarting.
		if images == 0 {
			if err := wait(ctx, s.interval); err != nil {
				return
			}
		}
	}

	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "end of stream"), deadline)
}

// feed writes the header and every frame line to conn, waiting one tick per
// output image after each frame. It returns the number of images sent.
func (s *Server) feed(ctx context.Context, conn *websocket.Conn) (int, error) {
	if err := s.send(conn, protocol.Magic); err != nil {
		return 0, err
	}

	images := 0
	for _, f := range s.frames {
		if err := s.send(conn, protocol.EncodeFrame(f)); err != nil {
			return images, err
		}
		n := protocol.Images(f)
		if n == 0 {
			continue
		}
		images += n
		if err := wait(ctx, time.Duration(n)*s.interval); err != nil {
			return images, err
		}
	}
	return images, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) send(conn *websocket.Conn, line string) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(line))
}
