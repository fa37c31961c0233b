/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ccnlabs/ccnd/core"
)

// WebSocketListener accepts browser/JS client connections over HTTP
// upgrade, the same role create_local_listener plays for Unix-stream
// clients but for a transport gorilla/websocket owns end to end -
// there is no raw fd to unix.Poll, so accepted connections come back
// as bridged Faces (spec.md §6 "an additional listener kind may be
// registered without changing the matching engine or content store").
type WebSocketListener struct {
	upgrader websocket.Upgrader
	accepted chan *Face
}

// NewWebSocketListener builds a listener ready to be mounted on an
// http.ServeMux; Accept drains connections as they complete their
// upgrade handshake.
func NewWebSocketListener() *WebSocketListener {
	return &WebSocketListener{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		accepted: make(chan *Face, 16),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and wraps it
// as a bridged Face, one per accepted connection like accept_new_client
// mints one Face per accepted stream fd.
func (l *WebSocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.LogWarn("websocket-listener", "upgrade failed: "+err.Error())
		return
	}

	wf := &webSocketFace{conn: conn, quit: make(chan struct{}, 1)}
	f := &Face{
		Fd:           -1,
		Kind:         KindWebSocket,
		IsDatagram:   false,
		IsLinkFramed: true,
		PeerAddr:     conn.RemoteAddr(),
		bridgeIn:     make(chan []byte, 64),
		bridgeOut:    wf.send,
		closeFn:      wf.close,
	}
	go wf.runReceive(f.bridgeIn)

	select {
	case l.accepted <- f:
	default:
		core.LogWarn("websocket-listener", "accept backlog full - drop")
		wf.close()
	}
}

// Accept returns the next fully-established WebSocket face, or nil if
// none is queued.
func (l *WebSocketListener) Accept() *Face {
	select {
	case f := <-l.accepted:
		return f
	default:
		return nil
	}
}

// webSocketFace bridges one gorilla/websocket connection's own
// blocking ReadMessage loop into the daemon's channel-fed I/O model.
type webSocketFace struct {
	conn *websocket.Conn
	quit chan struct{}
}

func (wf *webSocketFace) send(frame []byte) error {
	return wf.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (wf *webSocketFace) runReceive(out chan<- []byte) {
	defer close(out)
	for {
		kind, data, err := wf.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case out <- data:
		case <-wf.quit:
			return
		}
	}
}

func (wf *webSocketFace) close() {
	select {
	case wf.quit <- struct{}{}:
	default:
	}
	wf.conn.Close()
}
