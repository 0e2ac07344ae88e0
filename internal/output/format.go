// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// RepeatMarker is appended to repeating todos.
	RepeatMarker = " (repeat)"
)

// FormatTodo formats a todo line.
// Format: "{ID:>6}  {STATUS:<10} {CONTENT}[ (repeat)]\n"
func FormatTodo(w io.Writer, todo service.Todo) {
	suffix := ""
	if todo.IsRepeat {
		suffix = RepeatMarker
	}
	fmt.Fprintf(w, "%6s  %-10s %s%s\n", todo.ID, normalizeStatus(todo.Status), normalizeContent(todo.Content), suffix)
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeLabel(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatCategory formats a category line for the lists command.
func FormatCategory(w io.Writer, c service.Category) {
	line := fmt.Sprintf("%-16s %s", c.ID, normalizeLabel(c.Label))
	if c.BuiltIn {
		line += " [built-in]"
	}
	fmt.Fprintln(w, line)
}

// FormatTodoDetail formats every field of a todo, one per line.
func FormatTodoDetail(w io.Writer, todo service.Todo) {
	repeat := "no"
	if todo.IsRepeat {
		repeat = "yes"
	}
	fmt.Fprintf(w, "id:       %s\n", todo.ID)
	fmt.Fprintf(w, "content:  %s\n", normalizeContent(todo.Content))
	fmt.Fprintf(w, "status:   %s\n", normalizeStatus(todo.Status))
	fmt.Fprintf(w, "creator:  %s\n", todo.Creator)
	fmt.Fprintf(w, "list:     %s\n", normalizeLabel(todo.ListType))
	fmt.Fprintf(w, "repeat:   %s\n", repeat)
}

// normalizeContent normalizes todo content for display.
// - Empty or whitespace-only content becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")
	if strings.TrimSpace(content) == "" {
		return "(untitled)"
	}
	return content
}

func normalizeStatus(status string) string {
	if strings.TrimSpace(status) == "" {
		return "-"
	}
	return status
}

// normalizeLabel normalizes a category label for display.
func normalizeLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return "(uncategorized)"
	}
	return label
}
