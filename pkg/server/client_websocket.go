package server

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"codeberg.org/tslocum/tavla"
	"github.com/coder/websocket"
)

var acceptOptions = &websocket.AcceptOptions{
	InsecureSkipVerify: true,
	CompressionMode:    websocket.CompressionContextTakeover,
}

var _ tavla.Client = &webSocketClient{}

// webSocketClient carries one command per text message and writes each
// event as a text message.
type webSocketClient struct {
	conn       *websocket.Conn
	address    string
	events     chan []byte
	commands   chan<- []byte
	terminated atomic.Bool
	wgEvents   sync.WaitGroup
	verbose    bool
}

func newWebSocketClient(r *http.Request, w http.ResponseWriter, address string, commands chan<- []byte, events chan []byte, verbose bool) *webSocketClient {
	conn, err := websocket.Accept(w, r, acceptOptions)
	if err != nil {
		log.Printf("failed to accept WebSocket connection from %s: %s", address, err)
		return nil
	}

	return &webSocketClient{
		conn:     conn,
		address:  address,
		events:   events,
		commands: commands,
		verbose:  verbose,
	}
}

func (c *webSocketClient) Address() string {
	return c.address
}

func (c *webSocketClient) HandleReadWrite() {
	if c.Terminated() {
		return
	}

	done := make(chan struct{})
	go c.writeEvents(done)
	c.readCommands()
	close(done)
}

func (c *webSocketClient) Write(message []byte) {
	if c.Terminated() {
		return
	}

	c.wgEvents.Add(1)
	c.events <- message
}

func (c *webSocketClient) readCommands() {
	for !c.Terminated() {
		ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
		msgType, msg, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			c.Terminate(err.Error())
			return
		} else if msgType != websocket.MessageText {
			continue
		}

		for _, line := range bytes.Split(msg, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			c.commands <- bytes.Clone(line)

			if c.verbose {
				logClientRead(line)
			}
		}
	}
}

func (c *webSocketClient) writeEvents(done chan struct{}) {
	for {
		var event []byte
		select {
		case <-done:
			c.drainEvents()
			return
		case event = <-c.events:
		}

		if !c.Terminated() {
			c.writeEvent(event)
		}
		c.wgEvents.Done()
	}
}

func (c *webSocketClient) writeEvent(event []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	err := c.conn.Write(ctx, websocket.MessageText, event)
	if err != nil {
		c.Terminate(err.Error())
		return
	}

	if c.verbose && !bytes.HasPrefix(event, []byte(`{"Type":"ping"`)) && !bytes.HasPrefix(event, []byte(`{"Type":"list"`)) {
		log.Printf("-> %s", event)
	}
}

// drainEvents discards events queued after the connection closed.
func (c *webSocketClient) drainEvents() {
	for {
		select {
		case <-c.events:
			c.wgEvents.Done()
		default:
			return
		}
	}
}

func (c *webSocketClient) Terminate(reason string) {
	if !c.terminated.CompareAndSwap(false, true) {
		return
	}
	if reason == "" {
		c.conn.Close(websocket.StatusNormalClosure, "")
		return
	}
	c.conn.CloseNow()
}

func (c *webSocketClient) Terminated() bool {
	return c.terminated.Load()
}
