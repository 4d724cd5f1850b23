package broker

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

var errListenerClosed = errors.New("listener is closed")

// websocketListener exposes upgraded websocket connections as a net.Listener, which is
// what the go-stomp server consumes. Connections come in through HttpNegotiationHandleFunc.
type websocketListener struct {
	connChan chan net.Conn
	closed   bool
	lock     *sync.RWMutex
	conf     *WebSocketConfig
	logger   *zap.Logger
}

func newWebSocketListener(conf *WebSocketConfig, logger *zap.Logger) *websocketListener {
	return &websocketListener{
		connChan: make(chan net.Conn),
		closed:   false,
		lock:     &sync.RWMutex{},
		conf:     conf,
		logger:   logger,
	}
}

func (w *websocketListener) HttpNegotiationHandleFunc() func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		w.lock.RLock()
		if w.closed {
			w.lock.RUnlock()
			http.Error(writer, "websocket listener is closed, negotiation endpoint no longer accepts connections", http.StatusServiceUnavailable)
			return
		}
		w.lock.RUnlock()

		client, err := websocket.Accept(writer, request, &websocket.AcceptOptions{
			Subprotocols:       w.conf.AcceptedSubProtocols,
			InsecureSkipVerify: w.conf.InsecureSkipVerify,
			OriginPatterns:     w.conf.OriginPatterns,
		})
		if err != nil {
			w.logger.Error("failed to upgrade to websocket", zap.Error(err))
			return
		}
		client.SetReadLimit(int64(w.conf.MaxReadLimit))

		conn := websocket.NetConn(context.Background(), client, websocket.MessageText)
		w.lock.RLock()
		defer w.lock.RUnlock()
		if w.closed {
			_ = conn.Close()
			return
		}
		select {
		case w.connChan <- conn:
			return
		case <-time.After(5 * time.Second):
			_ = conn.Close()
			w.logger.Warn("websocket connection upgraded successfully but the stomp server has not claimed it before timeout")
		}
	}
}

func (w *websocketListener) Accept() (net.Conn, error) {
	conn, ok := <-w.connChan
	if !ok {
		return nil, errListenerClosed
	}
	return conn, nil
}

func (w *websocketListener) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.closed {
		return errors.New("already closed")
	}
	w.closed = true
	close(w.connChan)
	return nil
}

func (w *websocketListener) Addr() net.Addr {
	return websocketAddr{}
}

type websocketAddr struct {
}

func (a websocketAddr) Network() string {
	return "websocket"
}

func (a websocketAddr) String() string {
	return "websocket/unknown-addr"
}
