// Package supabasetest runs an in-process stand-in for the parts of a
// Supabase project the backend talks to. It serves PostgREST for log_entries,
// a private Storage bucket, Realtime broadcasts and the GoTrue user endpoint.
package supabasetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"logbook-backend/internal/config"
	"logbook-backend/internal/models"
)

const AnonKey = "test-anon-key"

type Broadcast struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

type Request struct {
	Method        string
	Path          string
	Authorization string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	rows       []models.LogEntry
	objects    map[string][]byte
	broadcasts []Broadcast
	requests   []Request
	users      map[string]uuid.UUID
	failNext   int
	clock      time.Time
}

func NewServer() *Server {
	s := &Server{
		objects: make(map[string][]byte),
		users:   make(map[string]uuid.UUID),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/log_entries", s.handleLogEntries)
	mux.HandleFunc("/storage/v1/object/", s.handleStorage)
	mux.HandleFunc("/realtime/v1/api/broadcast", s.handleBroadcast)
	mux.HandleFunc("/auth/v1/user", s.handleUser)

	s.Server = httptest.NewServer(mux)
	return s
}

// ClientConfig returns a configured Config pointing at the fake.
func (s *Server) ClientConfig() *config.Config {
	return &config.Config{
		SupabaseURL:           s.URL,
		SupabaseAnonKey:       AnonKey,
		SupabaseStorageBucket: "log-exports",
		SupabaseConfigured:    true,
		Port:                  "8080",
		Environment:           "test",
		DefaultPageSize:       20,
	}
}

// AddUser registers an access token accepted by the user endpoint.
func (s *Server) AddUser(token string, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = userID
}

// Seed inserts rows directly, bypassing the REST API.
func (s *Server) Seed(userID uuid.UUID, key string, value string) models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(userID, key, json.RawMessage(value))
}

// FailNext makes the next REST request fail with the given status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

func (s *Server) Rows() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LogEntry(nil), s.rows...)
}

func (s *Server) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	return data, ok
}

func (s *Server) Broadcasts() []Broadcast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Broadcast(nil), s.broadcasts...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) insertLocked(userID uuid.UUID, key string, value json.RawMessage) models.LogEntry {
	s.clock = s.clock.Add(time.Second)
	entry := models.LogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Key:       key,
		Value:     value,
		CreatedAt: s.clock,
		UpdatedAt: s.clock,
	}
	s.rows = append(s.rows, entry)
	return entry
}

func (s *Server) record(r *http.Request) {
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRESTError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"code":    "XX000",
		"message": message,
		"details": "",
		"hint":    "",
	})
}

func eqFilter(r *http.Request, column string) (string, bool) {
	value := r.URL.Query().Get(column)
	if value == "" {
		return "", false
	}
	return strings.TrimPrefix(value, "eq."), true
}

func (s *Server) matches(r *http.Request, entry models.LogEntry) bool {
	if id, ok := eqFilter(r, "id"); ok && entry.ID.String() != id {
		return false
	}
	if userID, ok := eqFilter(r, "user_id"); ok && entry.UserID.String() != userID {
		return false
	}
	if key, ok := eqFilter(r, "key"); ok && entry.Key != key {
		return false
	}
	return true
}

func (s *Server) handleLogEntries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	if s.failNext != 0 {
		status := s.failNext
		s.failNext = 0
		writeRESTError(w, status, "injected failure")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.selectLocked(w, r)
	case http.MethodPost:
		var row struct {
			UserID uuid.UUID       `json:"user_id"`
			Key    string          `json:"key"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeRESTError(w, http.StatusBadRequest, err.Error())
			return
		}
		entry := s.insertLocked(row.UserID, row.Key, row.Value)
		writeJSON(w, http.StatusCreated, []models.LogEntry{entry})
	case http.MethodPatch:
		var patch map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeRESTError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated := []models.LogEntry{}
		for i := range s.rows {
			if !s.matches(r, s.rows[i]) {
				continue
			}
			if raw, ok := patch["key"]; ok {
				json.Unmarshal(raw, &s.rows[i].Key)
			}
			if raw, ok := patch["value"]; ok {
				s.rows[i].Value = raw
			}
			s.clock = s.clock.Add(time.Second)
			s.rows[i].UpdatedAt = s.clock
			updated = append(updated, s.rows[i])
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		deleted := []models.LogEntry{}
		kept := s.rows[:0]
		for _, entry := range s.rows {
			if s.matches(r, entry) {
				deleted = append(deleted, entry)
				continue
			}
			kept = append(kept, entry)
		}
		s.rows = kept
		writeJSON(w, http.StatusOK, deleted)
	default:
		writeRESTError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) selectLocked(w http.ResponseWriter, r *http.Request) {
	matched := []models.LogEntry{}
	for _, entry := range s.rows {
		if s.matches(r, entry) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset, limit := pageBounds(r, len(matched))
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := []models.LogEntry{}
	if offset < len(matched) {
		page = matched[offset:end]
	}

	if strings.Contains(r.Header.Get("Prefer"), "count=exact") {
		if len(page) == 0 {
			w.Header().Set("Content-Range", fmt.Sprintf("*/%d", len(matched)))
		} else {
			w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, offset+len(page)-1, len(matched)))
		}
	}
	writeJSON(w, http.StatusOK, page)
}

// pageBounds reads offset/limit query parameters, falling back to a Range
// header.
func pageBounds(r *http.Request, total int) (int, int) {
	offset, limit := 0, total
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if rng := r.Header.Get("Range"); rng != "" && r.URL.Query().Get("limit") == "" {
		var from, to int
		if _, err := fmt.Sscanf(rng, "%d-%d", &from, &to); err == nil {
			offset, limit = from, to-from+1
		}
	}
	return offset, limit
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	rest := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")

	if r.Method == http.MethodGet && strings.HasPrefix(rest, "sign/") {
		s.serveSignedLocked(w, r, strings.TrimPrefix(rest, "sign/"))
		return
	}

	// The bucket is private: objects are only reachable with a user token.
	if auth := r.Header.Get("Authorization"); auth == "" || auth == "Bearer "+AnonKey {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":   "Unauthorized",
			"message": "new row violates row-level security policy",
		})
		return
	}

	switch {
	case r.Method == http.MethodPost && strings.HasPrefix(rest, "sign/"):
		objectPath := strings.TrimPrefix(rest, "sign/")
		if _, ok := s.objects[objectPath]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Object not found"})
			return
		}
		var body struct {
			ExpiresIn int `json:"expiresIn"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]string{
			"signedURL": fmt.Sprintf("/object/sign/%s?token=%s", objectPath, signToken(objectPath, body.ExpiresIn)),
		})
	case r.Method == http.MethodPost && strings.HasPrefix(rest, "list/"):
		var body struct {
			Prefix string `json:"prefix"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		bucket := strings.TrimPrefix(rest, "list/")
		prefix := bucket + "/" + body.Prefix

		names := []string{}
		for path := range s.objects {
			if strings.HasPrefix(path, prefix) {
				names = append(names, strings.TrimPrefix(path, prefix))
			}
		}
		sort.Strings(names)

		files := make([]map[string]interface{}, 0, len(names))
		for _, name := range names {
			files = append(files, map[string]interface{}{"name": name})
		}
		writeJSON(w, http.StatusOK, files)
	case r.Method == http.MethodPost || r.Method == http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.objects[rest] = data
		writeJSON(w, http.StatusOK, map[string]string{"Key": rest})
	case r.Method == http.MethodDelete:
		var body struct {
			Prefixes []string `json:"prefixes"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		removed := []map[string]string{}
		for _, p := range body.Prefixes {
			path := rest + "/" + p
			if _, ok := s.objects[path]; ok {
				delete(s.objects, path)
				removed = append(removed, map[string]string{"name": p})
			}
		}
		writeJSON(w, http.StatusOK, removed)
	case r.Method == http.MethodGet:
		data, ok := s.objects[strings.TrimPrefix(rest, "authenticated/")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Object not found"})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func signToken(objectPath string, expiresIn int) string {
	return fmt.Sprintf("%x-%d", []byte(objectPath), expiresIn)
}

func (s *Server) serveSignedLocked(w http.ResponseWriter, r *http.Request, objectPath string) {
	data, ok := s.objects[objectPath]
	if !ok || !strings.HasPrefix(r.URL.Query().Get("token"), fmt.Sprintf("%x-", []byte(objectPath))) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "InvalidJWT", "message": "invalid signature"})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	var body struct {
		Messages []Broadcast `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.broadcasts = append(s.broadcasts, body.Messages...)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	userID, ok := s.users[token]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"code": http.StatusUnauthorized,
			"msg":  "invalid JWT",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":   userID.String(),
		"aud":  "authenticated",
		"role": "authenticated",
	})
}
