package lsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.lsp.dev/jsonrpc2"
)

// NewWebSocketStream adapts a WebSocket connection to a jsonrpc2.Stream.
func NewWebSocketStream(ws *websocket.Conn) jsonrpc2.Stream {
	return &wsStream{conn: ws}
}

type wsStream struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (s *wsStream) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return nil, 0, err
	}
	msg, err := jsonrpc2.DecodeMessage(data)
	return msg, int64(len(data)), err
}

func (s *wsStream) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("lsclient: marshal message: %w", err)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
