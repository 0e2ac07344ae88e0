// Package service defines the backend-agnostic interface for todo operations.
package service

import "context"

// Overview is the reserved list identifier meaning "no category filter".
const Overview = "overview"

// Service defines the interface for todo backend operations.
// All REST calls go through this interface.
// Commands never build HTTP requests directly.
type Service interface {
	// ListTodos returns the todos of a list.
	// listID is Overview (all todos) or a key of the category map.
	ListTodos(ctx context.Context, listID string) ([]Todo, error)

	// CreateTodo creates a todo in the given list.
	// Fails with *UsageError for Overview or an unknown list, before any request.
	CreateTodo(ctx context.Context, content, listID string) (Todo, error)

	// UpdateTodo replaces or patches a todo, see Update.
	UpdateTodo(ctx context.Context, id string, u Update) (Todo, error)

	// DeleteTodo deletes a todo.
	DeleteTodo(ctx context.Context, id string) error

	// GetTodo fetches a single todo.
	GetTodo(ctx context.Context, id string) (Todo, error)

	// ToggleRepeat flips isRepeat based on the caller's snapshot.
	// The status is resent unchanged.
	ToggleRepeat(ctx context.Context, id string, currentIsRepeat bool, currentStatus string) (Todo, error)

	// ListCategories returns the category map sorted by list ID.
	ListCategories() []Category

	// AddCategory maps a list ID to a category label and persists the map.
	AddCategory(id, label string) error

	// RemoveCategory removes a list ID and persists the map.
	// Removing an unknown ID is not an error.
	RemoveCategory(id string) error
}
