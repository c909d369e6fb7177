package hub

import "time"

// Message is the single frame shape exchanged over a document connection.
// Type decides which fields matter; the rest are omitted on the wire.
//
// Inbound types: "join", "edit", "lock", "unlock", "focus", "blur".
// Outbound types: "snapshot" (initial full content, new connection only),
// "edit" (fan-out, never echoed to its origin), "state" (presence/lock/focus
// push to everyone), "lock", "lock-denied", "unlock", "error".
type Message struct {
	Type    string            `json:"type"`
	User    string            `json:"user,omitempty"`
	Content string            `json:"content,omitempty"`
	By      string            `json:"by,omitempty"`
	Element string            `json:"element,omitempty"`
	Users   []string          `json:"users,omitempty"`
	Focus   map[string]string `json:"focus,omitempty"`
	Lock    *LockInfo         `json:"lock,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// LockInfo describes who holds a document's advisory edit lock and since
// when. The lock coordinates clients; it does not gate the edit path.
type LockInfo struct {
	By    string    `json:"by"`
	Since time.Time `json:"since"`
}
