// Package fakeservice serves the remote execution API from an in-memory
// backend so clients and commands can be tested end to end.
package fakeservice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/asfe/pkg/adapters/alchemiscale"
	"github.com/aretw0/asfe/pkg/adapters/memory"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/network"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Service is an http.Handler speaking the service's JSON API.
type Service struct {
	Backend *memory.Client

	mu       sync.Mutex
	users    map[string]string
	tokens   map[string]string
	requests atomic.Int64
	router   chi.Router
}

// New creates a service over backend. A nil backend gets a fresh memory client.
func New(backend *memory.Client) *Service {
	if backend == nil {
		backend = memory.NewClient()
	}
	s := &Service{
		Backend: backend,
		users:   make(map[string]string),
		tokens:  make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Use(middleware.Recoverer)
	r.Post("/token", s.handleToken)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/networks", s.handleCreateNetwork)
		r.Get("/networks/{key}", s.handleGetNetwork)
		r.Get("/networks/{key}/transformations", s.handleNetworkTransformations)
		r.Get("/networks/{key}/tasks", s.handleNetworkTasks)
		r.Get("/networks/{key}/status", s.handleNetworkStatus)
		r.Get("/transformations/{key}", s.handleGetTransformation)
		r.Get("/transformations/{key}/results", s.handleTransformationResults)
		r.Post("/bulk/tasks/status/set", s.handleSetTaskStatus)
	})
	s.router = r
	return s
}

// AddUser registers credentials accepted by /token.
func (s *Service) AddUser(id, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = key
}

// Requests counts every request received, authenticated or not.
func (s *Service) Requests() int64 {
	return s.requests.Load()
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Service) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, key := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	want, ok := s.users[id]
	token := ""
	if ok && want == key {
		token = uuid.NewString()
		s.tokens[token] = id
	}
	s.mu.Unlock()

	if token == "" {
		writeError(w, http.StatusUnauthorized, "Incorrect identity or key")
		return
	}
	writeJSON(w, http.StatusOK, alchemiscale.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Service) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req alchemiscale.CreateNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Network == nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	n, err := network.FromDocument(req.Network, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sk, err := s.Backend.CreateNetwork(r.Context(), n, scope)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sk.String())
}

func (s *Service) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	n, err := s.Backend.GetNetwork(r.Context(), sk)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	doc, err := network.ToDocument(n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleNetworkTransformations(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	keys, err := s.Backend.GetNetworkTransformations(r.Context(), sk)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keyStrings(keys))
}

func (s *Service) handleNetworkTasks(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	status, err := domain.ParseTaskStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	keys, err := s.Backend.GetNetworkTasks(r.Context(), sk, status)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keyStrings(keys))
}

func (s *Service) handleNetworkStatus(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	status, err := s.Backend.GetNetworkStatus(r.Context(), sk)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	counts := make(map[string]int, len(status))
	for k, v := range status {
		counts[string(k)] = v
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Service) handleGetTransformation(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	t, err := s.Backend.GetTransformation(r.Context(), sk)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	data, err := network.EncodeTransformation(t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Service) handleTransformationResults(w http.ResponseWriter, r *http.Request) {
	sk, ok := pathKey(w, r)
	if !ok {
		return
	}
	full := false
	if v := r.URL.Query().Get("return_protocoldagresults"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		full = b
	}
	results, err := s.Backend.GetTransformationResults(r.Context(), sk, full)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if results == nil {
		results = []domain.DAGResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Service) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req alchemiscale.SetTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	keys := make([]domain.ScopedKey, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		k, err := domain.ParseScopedKey(t)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		keys = append(keys, k)
	}
	accepted, err := s.Backend.SetTasksStatus(r.Context(), keys, status)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	// One entry per requested task, null where the service refused.
	ok := make(map[string]bool, len(accepted))
	for _, k := range accepted {
		ok[k.String()] = true
	}
	out := make([]*string, len(req.Tasks))
	for i, t := range req.Tasks {
		if ok[t] {
			out[i] = &req.Tasks[i]
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func pathKey(w http.ResponseWriter, r *http.Request) (domain.ScopedKey, bool) {
	sk, err := domain.ParseScopedKey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return domain.ScopedKey{}, false
	}
	return sk, true
}

func keyStrings(keys []domain.ScopedKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func writeBackendError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("Backend failure", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
