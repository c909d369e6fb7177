package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"

	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/hub"
)

// Local mirror of the document. Snapshots and edits replace it wholesale.
var (
	document string
	docMutex sync.Mutex
)

func main() {
	doc := os.Getenv("SUMMAI_DOC")
	if doc == "" {
		doc = "test-doc"
	}
	user := os.Getenv("SUMMAI_USER")
	if user == "" {
		user, _ = os.Hostname()
	}
	addr := os.Getenv("SUMMAI_ADDR")
	if addr == "" {
		addr = discover()
	}
	url := fmt.Sprintf("ws://%s/ws/%s", addr, doc)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // reconnection is the agent's job; never give up
	err := backoff.Retry(func() error {
		return mirror(url, user, b)
	}, b)
	log.Fatalf("Mirror loop ended: %v", err)
}

// mirror attaches to the document and applies every snapshot and edit to the
// local copy until the transport fails. The backoff is reset once a
// connection is established so the next failure starts a fresh schedule.
func mirror(url, user string, b *backoff.ExponentialBackOff) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Printf("Dial %s failed: %v", url, err)
		return err
	}
	defer conn.Close()
	b.Reset()
	log.Printf("Attached to %s as %s", url, user)

	join := hub.Message{Type: "join", User: user}
	buf, _ := json.Marshal(join)
	if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Connection lost: %v", err)
			return err
		}
		var msg hub.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error decoding message: %v", err)
			continue
		}
		switch msg.Type {
		case "snapshot", "edit":
			docMutex.Lock()
			document = msg.Content
			docMutex.Unlock()
			log.Printf("Document is now %d bytes (%s)", len(msg.Content), msg.Type)
		case "state":
			log.Printf("Room state: users=%v locked=%v", msg.Users, msg.Lock != nil)
		case "error":
			log.Printf("Server reported: %s", msg.Error)
		}
	}
}

// discover browses mDNS for a SummAI server on the local network, falling
// back to localhost when none answers in time.
func discover() string {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		log.Fatalf("Failed to initialize mDNS resolver: %v", err)
	}
	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)
	go func() {
		for entry := range entries {
			if len(entry.AddrIPv4) > 0 {
				select {
				case found <- fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port):
				default:
				}
			}
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := resolver.Browse(ctx, "_summai._tcp", "local.", entries); err != nil {
		log.Fatalf("Failed to browse for mDNS services: %v", err)
	}
	select {
	case addr := <-found:
		log.Printf("mDNS discovered server at %s", addr)
		return addr
	case <-ctx.Done():
		log.Println("No server discovered via mDNS, using localhost:8081")
		return "localhost:8081"
	}
}
