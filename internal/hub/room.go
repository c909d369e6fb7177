package hub

import (
	"encoding/json"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/store"
)

// An advisory lock that hasn't been released within this window is treated
// as abandoned and handed to the next requester.
const lockTimeout = 10 * time.Minute

// event is one inbound frame from an attached connection. err is set when
// the frame didn't parse; msg is then meaningless.
type event struct {
	origin *Client
	msg    Message
	at     time.Time
	err    error
}

// Room fans out edits for one document. All room state is owned by the run
// goroutine; register, unregister and inbound are its only inputs, so edits
// on the same document are applied and broadcast strictly one at a time
// while different documents proceed in parallel.
type Room struct {
	id    string
	store *store.Store

	register   chan *Client
	unregister chan *Client
	inbound    chan event

	clients    map[*Client]bool
	users      map[string]bool
	focus      map[string]string
	lock       *LockInfo
	lockHolder *Client

	// read from outside the run goroutine
	peers     atomic.Int32
	lockState atomic.Pointer[LockInfo]
}

func newRoom(id string, s *store.Store) *Room {
	return &Room{
		id:         id,
		store:      s,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan event),
		clients:    make(map[*Client]bool),
		users:      make(map[string]bool),
		focus:      make(map[string]string),
	}
}

func (r *Room) run() {
	for {
		select {
		case c := <-r.register:
			if r.clients[c] {
				break
			}
			r.clients[c] = true
			r.peers.Store(int32(len(r.clients)))
			doc := r.store.Get(r.id)
			r.sendOrDetach(c, Message{Type: "snapshot", Content: doc.Content, Lock: r.lock, Users: r.userList(), Focus: r.focusCopy()})
			log.Printf("doc %s: connection %s attached (%d active)", r.id, c.id, len(r.clients))
		case c := <-r.unregister:
			if !r.clients[c] {
				break
			}
			r.detach(c)
			r.pushState()
		case ev := <-r.inbound:
			if !r.clients[ev.origin] {
				// lost the race against its own detach
				break
			}
			r.handle(ev)
		}
	}
}

func (r *Room) handle(ev event) {
	if ev.err != nil {
		r.sendOrDetach(ev.origin, Message{Type: "error", Error: "malformed message: " + ev.err.Error()})
		return
	}
	switch ev.msg.Type {
	case "join":
		user := ev.msg.User
		if user == "" {
			user = "anon"
		}
		ev.origin.user = user
		r.users[user] = true
		r.pushState()
	case "edit":
		doc := r.store.ApplyEdit(r.id, ev.msg.Content)
		r.broadcast(Message{Type: "edit", Content: doc.Content, By: ev.origin.user}, ev.origin)
	case "lock":
		if r.lock != nil && ev.at.Sub(r.lock.Since) > lockTimeout {
			r.setLock(nil, nil)
		}
		if r.lock == nil {
			r.setLock(&LockInfo{By: ev.origin.user, Since: ev.at}, ev.origin)
			r.broadcast(Message{Type: "lock", By: ev.origin.user}, nil)
			r.pushState()
		} else {
			r.sendOrDetach(ev.origin, Message{Type: "lock-denied", Lock: r.lock})
		}
	case "unlock":
		// only the holding connection may release, regardless of username
		if r.lockHolder == ev.origin {
			r.setLock(nil, nil)
			r.broadcast(Message{Type: "unlock"}, nil)
			r.pushState()
		}
	case "focus":
		if ev.msg.Element != "" {
			r.focus[ev.msg.Element] = ev.origin.user
			r.pushState()
		}
	case "blur":
		if _, ok := r.focus[ev.msg.Element]; ok {
			delete(r.focus, ev.msg.Element)
			r.pushState()
		}
	default:
		log.Printf("doc %s: ignoring unknown message type %q from %s", r.id, ev.msg.Type, ev.origin.id)
	}
}

// broadcast queues msg on every client except the given one. A client whose
// buffer is full has stopped draining its connection and is detached so the
// rest of the room keeps moving.
func (r *Room) broadcast(msg Message, except *Client) {
	buf := marshal(msg)
	var dead []*Client
	for c := range r.clients {
		if c == except {
			continue
		}
		if !r.trySend(c, buf) {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		r.detach(c)
	}
	if len(dead) > 0 {
		r.pushState()
	}
}

func (r *Room) pushState() {
	if len(r.clients) == 0 {
		return
	}
	r.broadcast(Message{Type: "state", Lock: r.lock, Users: r.userList(), Focus: r.focusCopy()}, nil)
}

// detach removes the client and closes its send channel, which stops its
// write pump and in turn tears down the connection. Only the run goroutine
// writes to or closes send channels.
func (r *Room) detach(c *Client) {
	delete(r.clients, c)
	close(c.send)
	r.peers.Store(int32(len(r.clients)))
	if c.user != "" {
		delete(r.users, c.user)
	}
	if r.lockHolder == c {
		r.setLock(nil, nil)
	}
	log.Printf("doc %s: connection %s detached (%d active)", r.id, c.id, len(r.clients))
}

func (r *Room) trySend(c *Client, buf []byte) bool {
	select {
	case c.send <- buf:
		return true
	default:
		return false
	}
}

func (r *Room) sendOrDetach(c *Client, msg Message) {
	if !r.trySend(c, marshal(msg)) {
		r.detach(c)
	}
}

func (r *Room) setLock(l *LockInfo, holder *Client) {
	r.lock = l
	r.lockHolder = holder
	r.lockState.Store(l)
}

func (r *Room) userList() []string {
	users := make([]string, 0, len(r.users))
	for u := range r.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func (r *Room) focusCopy() map[string]string {
	if len(r.focus) == 0 {
		return nil
	}
	focus := make(map[string]string, len(r.focus))
	for k, v := range r.focus {
		focus[k] = v
	}
	return focus
}

func marshal(msg Message) []byte {
	buf, err := json.Marshal(msg)
	if err != nil {
		// Message contains nothing unmarshalable
		panic(err)
	}
	return buf
}
