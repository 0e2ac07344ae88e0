package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ErrTodoRefRequired indicates no todo reference was provided.
var ErrTodoRefRequired = errors.New("todo reference required")

// ParseTodoRef parses a todo reference from args.
//
// A reference is the backend ID, optionally prefixed with '#'
// (e.g. 12, #12, a1b2). Extra arguments are rejected.
func ParseTodoRef(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTodoRefRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if ref == "" {
		return "", ErrTodoRefRequired
	}
	for _, r := range ref {
		if unicode.IsSpace(r) || r == '/' || r == '?' || r == '#' {
			return "", fmt.Errorf("invalid todo reference: %s", args[0])
		}
	}
	return ref, nil
}

// parseRef parses args and prints the error, returning ok=false on failure.
func parseRef(args []string, errOut io.Writer) (string, bool) {
	ref, err := ParseTodoRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return "", false
	}
	return ref, true
}
