package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/hub"
	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/store"
)

// Server holds the REST handlers for the file surface.
type Server struct {
	store *store.Store
	hub   *hub.Hub
}

// NewRouter wires the REST endpoints and the realtime endpoint onto one
// router.
func NewRouter(s *store.Store, h *hub.Hub) *mux.Router {
	srv := &Server{store: s, hub: h}
	r := mux.NewRouter()
	r.Use(cors)
	r.HandleFunc("/files", srv.listFiles).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/files", srv.createFile).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/files/{id}", srv.getFile).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/files/{id}", srv.saveFile).Methods(http.MethodPut, http.MethodOptions)
	r.HandleFunc("/ws/{id}", h.ServeWS)
	return r
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) createFile(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	id := strings.TrimSpace(payload.Name)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "name cannot be empty"})
		return
	}
	if err := s.store.Create(id, payload.Content); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "file already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	doc, ok := s.store.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "file not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          doc.ID,
		"content":     doc.Content,
		"lock":        s.hub.Lock(id),
		"connections": s.hub.Peers(id),
	})
}

func (s *Server) saveFile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	if _, ok := s.store.Lookup(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "file not found"})
		return
	}
	s.store.ApplyEdit(id, payload.Content)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
