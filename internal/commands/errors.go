package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"todo/internal/exitcode"
	"todo/internal/service"
)

// reportError prints err as a single "error:" line and returns the exit code
// for its kind.
func reportError(errOut io.Writer, err error) int {
	var ue *service.UsageError
	if errors.As(err, &ue) {
		fmt.Fprintf(errOut, "error: %v\n", ue)
		return exitcode.UserError
	}

	switch service.StatusCode(err) {
	case 0:
	case http.StatusUnauthorized, http.StatusForbidden:
		fmt.Fprintf(errOut, "error: auth error: %v (run: todo login)\n", err)
		return exitcode.AuthError
	case http.StatusNotFound:
		fmt.Fprintf(errOut, "error: not found: %v\n", err)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
