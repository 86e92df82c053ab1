package eventbus

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
)

// upgrader uses 1 KiB read/write buffers and accepts every origin. The
// Control API mounts the WebSocket route outside its x-api-key group, so
// the handshake is not authenticated either.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sinkBuffer bounds how many queued events a slow subscriber can fall
// behind by before Publish starts dropping for it.
const sinkBuffer = 64

// ServeWS upgrades the request to a WebSocket, subscribes it to runID on
// bus, and pumps every published event to the connection until the client
// disconnects or a write fails. The handler also drains inbound frames
// (the client is not expected to send any) purely to detect the close
// frame the way the Python implementation's receive-loop-until-disconnect
// does.
func ServeWS(bus *Bus, runID int64, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sink := make(Sink, sinkBuffer)
	bus.Subscribe(runID, sink)
	defer bus.Unsubscribe(runID, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload := <-sink:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		case <-done:
			return nil
		}
	}
}

// RunIDFromPath parses the {run_id} path segment into an int64, returning
// the same (0, error) shape chi handlers use for the other run routes.
func RunIDFromPath(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
