// Package service defines the backend-agnostic interface for todo operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Todo represents a single todo item as returned by the backend.
// The client never validates its shape.
type Todo struct {
	ID       ID     `json:"id"`
	Content  string `json:"content"`
	Status   string `json:"status"`
	Creator  string `json:"creator"`
	IsRepeat bool   `json:"isRepeat"`
	ListType string `json:"listType,omitempty"`
}

// Update holds the fields of an UpdateTodo call.
// A nil or empty Content sends only status and isRepeat.
type Update struct {
	Content  *string
	Status   string
	IsRepeat bool
}

// Category maps a list ID to the label the backend filters by.
type Category struct {
	ID      string
	Label   string
	BuiltIn bool
}

// ID is a backend todo identifier. It decodes from a JSON string or number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid todo id %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as text.
func (id ID) String() string { return string(id) }
