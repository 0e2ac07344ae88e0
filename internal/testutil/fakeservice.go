// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"todo/internal/categories"
	"todo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Todos are matched to lists by label, like the backend does.
type FakeService struct {
	mu     sync.RWMutex
	todos  []service.Todo
	nextID int
	cats   *categories.Map

	// Error injection for testing
	ListTodosErr      error
	CreateTodoErr     error
	UpdateTodoErr     error
	DeleteTodoErr     error
	GetTodoErr        error
	ToggleRepeatErr   error
	AddCategoryErr    error
	RemoveCategoryErr error

	// Calls records method names in call order.
	Calls []string
}

// NewFakeService creates a FakeService with the built-in categories.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1, cats: categories.New("")}
}

// AddTodo seeds a todo in the list with the given ID and returns its ID.
func (f *FakeService) AddTodo(listID, content, status string, repeat bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	label, _ := f.cats.Resolve(listID)
	id := strconv.Itoa(f.nextID)
	f.nextID++
	f.todos = append(f.todos, service.Todo{
		ID:       service.ID(id),
		Content:  content,
		Status:   status,
		Creator:  "tester",
		IsRepeat: repeat,
		ListType: label,
	})
	return id
}

// Todo returns a stored todo by ID.
func (f *FakeService) Todo(id string) (service.Todo, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.todos {
		if string(t.ID) == id {
			return t, true
		}
	}
	return service.Todo{}, false
}

func (f *FakeService) called(name string) {
	f.Calls = append(f.Calls, name)
}

func notFound(op, id string) error {
	return &service.BackendError{Op: op, StatusCode: 404, Err: fmt.Errorf("todo %s not found", id)}
}

// ListTodos implements service.Service.
func (f *FakeService) ListTodos(ctx context.Context, listID string) ([]service.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("ListTodos")
	if f.ListTodosErr != nil {
		return nil, f.ListTodosErr
	}

	label := ""
	if listID != service.Overview {
		var ok bool
		label, ok = f.cats.Resolve(listID)
		if !ok {
			return nil, &service.UsageError{Op: "list", ListID: listID, Reason: "unknown list"}
		}
	}

	var out []service.Todo
	for _, t := range f.todos {
		if listID == service.Overview || t.ListType == label {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTodo implements service.Service.
func (f *FakeService) CreateTodo(ctx context.Context, content, listID string) (service.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("CreateTodo")
	if listID == service.Overview {
		return service.Todo{}, &service.UsageError{Op: "create", ListID: listID, Reason: "cannot create a todo in list"}
	}
	label, ok := f.cats.Resolve(listID)
	if !ok {
		return service.Todo{}, &service.UsageError{Op: "create", ListID: listID, Reason: "unknown list"}
	}
	if f.CreateTodoErr != nil {
		return service.Todo{}, f.CreateTodoErr
	}

	todo := service.Todo{
		ID:       service.ID(strconv.Itoa(f.nextID)),
		Content:  content,
		Status:   "pending",
		Creator:  "tester",
		ListType: label,
	}
	f.nextID++
	f.todos = append(f.todos, todo)
	return todo, nil
}

// UpdateTodo implements service.Service.
func (f *FakeService) UpdateTodo(ctx context.Context, id string, u service.Update) (service.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("UpdateTodo")
	if f.UpdateTodoErr != nil {
		return service.Todo{}, f.UpdateTodoErr
	}
	for i, t := range f.todos {
		if string(t.ID) != id {
			continue
		}
		if u.Content != nil && *u.Content != "" {
			t.Content = *u.Content
		}
		t.Status = u.Status
		t.IsRepeat = u.IsRepeat
		f.todos[i] = t
		return t, nil
	}
	return service.Todo{}, notFound("update", id)
}

// DeleteTodo implements service.Service.
func (f *FakeService) DeleteTodo(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("DeleteTodo")
	if f.DeleteTodoErr != nil {
		return f.DeleteTodoErr
	}
	for i, t := range f.todos {
		if string(t.ID) == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return notFound("delete", id)
}

// GetTodo implements service.Service.
func (f *FakeService) GetTodo(ctx context.Context, id string) (service.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetTodo")
	if f.GetTodoErr != nil {
		return service.Todo{}, f.GetTodoErr
	}
	for _, t := range f.todos {
		if string(t.ID) == id {
			return t, nil
		}
	}
	return service.Todo{}, notFound("get", id)
}

// ToggleRepeat implements service.Service.
func (f *FakeService) ToggleRepeat(ctx context.Context, id string, currentIsRepeat bool, currentStatus string) (service.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("ToggleRepeat")
	if f.ToggleRepeatErr != nil {
		return service.Todo{}, f.ToggleRepeatErr
	}
	for i, t := range f.todos {
		if string(t.ID) == id {
			t.IsRepeat = !currentIsRepeat
			t.Status = currentStatus
			f.todos[i] = t
			return t, nil
		}
	}
	return service.Todo{}, notFound("toggle repeat", id)
}

// ListCategories implements service.Service.
func (f *FakeService) ListCategories() []service.Category {
	entries := f.cats.Entries()
	out := make([]service.Category, 0, len(entries))
	for _, e := range entries {
		out = append(out, service.Category{ID: e.ID, Label: e.Label, BuiltIn: categories.IsDefault(e.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddCategory implements service.Service.
func (f *FakeService) AddCategory(id, label string) error {
	if f.AddCategoryErr != nil {
		return f.AddCategoryErr
	}
	if id == service.Overview {
		return &service.UsageError{Op: "add list", ListID: id, Reason: "reserved list id"}
	}
	return f.cats.Add(id, label)
}

// RemoveCategory implements service.Service.
func (f *FakeService) RemoveCategory(id string) error {
	if f.RemoveCategoryErr != nil {
		return f.RemoveCategoryErr
	}
	return f.cats.Remove(id)
}
