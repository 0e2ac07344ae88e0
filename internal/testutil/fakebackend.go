package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"todo/internal/service"
)

// Request is a request observed by FakeBackend.
type Request struct {
	Method string
	// URI is the escaped request path and query, e.g. /api/todos/type/ACME%20Corp.
	URI    string
	Header http.Header
	// Body is the decoded JSON body, nil when empty.
	Body map[string]any
}

// FakeBackend is an httptest server implementing the todo REST API in memory.
type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	todos      map[string]service.Todo
	nextID     int
	requests   []Request
	failStatus int
	delay      time.Duration
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{todos: make(map[string]service.Todo), nextID: 1}

	r := mux.NewRouter().UseEncodedPath()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/todos", b.listAll).Methods(http.MethodGet)
	api.HandleFunc("/todos", b.create).Methods(http.MethodPost)
	api.HandleFunc("/todos/type/{label}", b.listByType).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id}", b.get).Methods(http.MethodGet)
	api.HandleFunc("/todos/{id}", b.update).Methods(http.MethodPut)
	api.HandleFunc("/todos/{id}", b.remove).Methods(http.MethodDelete)
	r.Use(b.record)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// FailWith makes every following request fail with status. Zero restores
// normal handling.
func (b *FakeBackend) FailWith(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failStatus = status
}

// SetDelay sleeps d before each following response.
func (b *FakeBackend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// URL returns the API root including the /api prefix.
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

// AddTodo seeds a todo and returns its ID.
func (b *FakeBackend) AddTodo(todo service.Todo) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if todo.ID == "" {
		todo.ID = service.ID(strconv.Itoa(b.nextID))
		b.nextID++
	}
	b.todos[string(todo.ID)] = todo
	return string(todo.ID)
}

// Todo returns a stored todo.
func (b *FakeBackend) Todo(id string) (service.Todo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	todo, ok := b.todos[id]
	return todo, ok
}

// Requests returns the requests seen so far.
func (b *FakeBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request. It fails the test if none.
func (b *FakeBackend) LastRequest(t *testing.T) Request {
	t.Helper()
	reqs := b.Requests()
	if len(reqs) == 0 {
		t.Fatal("expected a backend request, got none")
	}
	return reqs[len(reqs)-1]
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		r.Body.Close()

		req := Request{Method: r.Method, URI: r.RequestURI, Header: r.Header.Clone()}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &req.Body)
		}

		b.mu.Lock()
		b.requests = append(b.requests, req)
		fail, delay := b.failStatus, b.delay
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail != 0 {
			writeJSON(w, fail, map[string]any{
				"error": map[string]any{"code": fail, "message": http.StatusText(fail)},
			})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(data))
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) listAll(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedLocked(func(service.Todo) bool { return true }))
}

func (b *FakeBackend) listByType(w http.ResponseWriter, r *http.Request) {
	label, err := url.PathUnescape(mux.Vars(r)["label"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedLocked(func(t service.Todo) bool { return t.ListType == label }))
}

func (b *FakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content  string `json:"content"`
		ListType string `json:"listType"`
		Creator  string `json:"creator"`
		IsRepeat bool   `json:"isRepeat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	todo := service.Todo{
		ID:       service.ID(strconv.Itoa(b.nextID)),
		Content:  in.Content,
		Status:   "pending",
		Creator:  in.Creator,
		IsRepeat: in.IsRepeat,
		ListType: in.ListType,
	}
	b.nextID++
	b.todos[string(todo.ID)] = todo
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, todo)
}

func (b *FakeBackend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	todo, ok := b.todos[mux.Vars(r)["id"]]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "todo not found"}})
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// update applies the fields present in the body. Like the real backend it
// resets isRepeat when a partial update omits it.
func (b *FakeBackend) update(w http.ResponseWriter, r *http.Request) {
	var in map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id := mux.Vars(r)["id"]
	todo, ok := b.todos[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "todo not found"}})
		return
	}
	todo.IsRepeat = false
	for key, raw := range in {
		switch key {
		case "content":
			_ = json.Unmarshal(raw, &todo.Content)
		case "status":
			_ = json.Unmarshal(raw, &todo.Status)
		case "creator":
			_ = json.Unmarshal(raw, &todo.Creator)
		case "isRepeat":
			_ = json.Unmarshal(raw, &todo.IsRepeat)
		}
	}
	b.todos[id] = todo
	writeJSON(w, http.StatusOK, todo)
}

func (b *FakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := b.todos[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "todo not found"}})
		return
	}
	delete(b.todos, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) sortedLocked(keep func(service.Todo) bool) []service.Todo {
	out := []service.Todo{}
	for _, t := range b.todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, _ := strconv.Atoi(string(out[i].ID))
		nj, _ := strconv.Atoi(string(out[j].ID))
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
