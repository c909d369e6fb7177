package hub

import (
	"sync"

	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/store"
)

// Hub tracks which room serves each document. Rooms are created on first
// attach and kept for the life of the process, like the documents they
// serve; an idle room is just a parked goroutine.
type Hub struct {
	mu    sync.Mutex
	store *store.Store
	rooms map[string]*Room
}

func New(s *store.Store) *Hub {
	return &Hub{store: s, rooms: make(map[string]*Room)}
}

func (h *Hub) room(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	if !ok {
		r = newRoom(id, h.store)
		h.rooms[id] = r
		go r.run()
	}
	return r
}

// Peers reports how many connections are currently attached to the document.
func (h *Hub) Peers(id string) int {
	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return int(r.peers.Load())
}

// IsEmpty reports whether the document has no attached connections.
func (h *Hub) IsEmpty(id string) bool {
	return h.Peers(id) == 0
}

// Lock returns the document's current advisory lock, or nil.
func (h *Hub) Lock(id string) *LockInfo {
	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if !ok {
		return nil
	}
	return r.lockState.Load()
}
