package store

import (
	"errors"
	"sync"
	"time"
)

// ErrExists is returned by Create when the document id is already taken.
var ErrExists = errors.New("document already exists")

// Document is the unit of collaborative editing. Content is always the full
// text; edits replace it wholesale.
type Document struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	LastModified time.Time `json:"lastModified"`
}

// Info is one entry of a listing snapshot.
type Info struct {
	ID           string    `json:"id"`
	LastModified time.Time `json:"lastModified"`
	Size         int       `json:"size"`
}

// Store holds every known document in memory. Documents live until the
// process exits; nothing is ever persisted or deleted.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func New() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Get returns the document for id, creating an empty one if it doesn't
// exist yet. An unknown id is never an error.
func (s *Store) Get(id string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreate(id)
}

// Create adds a new document with the given initial content. Returns
// ErrExists if the id is already taken.
func (s *Store) Create(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; ok {
		return ErrExists
	}
	s.docs[id] = &Document{ID: id, Content: content, LastModified: time.Now()}
	return nil
}

// Lookup returns the document for id without creating it.
func (s *Store) Lookup(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// ApplyEdit replaces the document's content and bumps its timestamp,
// creating the document first if needed. The payload is opaque text; the
// store doesn't understand edit semantics, it only records resulting state.
func (s *Store) ApplyEdit(id, content string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.getOrCreate(id)
	doc.Content = content
	doc.LastModified = time.Now()
	return *doc
}

// List returns a point-in-time snapshot of all documents. Safe to call
// while edits are being applied; the result never aliases live state.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, Info{ID: doc.ID, LastModified: doc.LastModified, Size: len(doc.Content)})
	}
	return infos
}

func (s *Store) getOrCreate(id string) *Document {
	doc, ok := s.docs[id]
	if !ok {
		doc = &Document{ID: id, LastModified: time.Now()}
		s.docs[id] = doc
	}
	return doc
}
