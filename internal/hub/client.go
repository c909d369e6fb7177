package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one attached connection. It is bound to a single document for
// its whole lifetime; reads and writes run as two goroutines that are torn
// down together once either side of the transport fails.
type Client struct {
	id   string
	user string // set by the room loop on join
	room *Room
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades the request and attaches the connection to the document
// named by the {id} path variable, creating the document if needed. The new
// connection receives the current content as a snapshot before any live
// edits.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed for document %s: %v", docID, err)
		return
	}
	room := h.room(docID)
	c := &Client{id: uuid.NewString(), room: room, conn: conn, send: make(chan []byte, 256)}
	room.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.room.unregister <- c
		c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			// malformed frames are reported back, not fatal; the room loop
			// owns the send channel, so the reply goes through it
			c.room.inbound <- event{origin: c, at: time.Now(), err: err}
			continue
		}
		c.room.inbound <- event{origin: c, msg: msg, at: time.Now()}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		msg, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// closing the conn unblocks the read pump, which unregisters
			return
		}
	}
}
