package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// DoneStatus is the status set by the done command.
const DoneStatus = "done"

func init() {
	Register(&StatusCmd{})
	Register(&DoneCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Set a todo's status" }
func (c *StatusCmd) Usage() string      { return "todo status <id> <status>" }
func (c *StatusCmd) NeedsService() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		if len(args) == 0 {
			fmt.Fprintf(errOut, "error: %v\n", ErrTodoRefRequired)
		} else {
			fmt.Fprintln(errOut, "error: status required")
		}
		return exitcode.UserError
	}
	id, ok := parseRef(args[:1], errOut)
	if !ok {
		return exitcode.UserError
	}
	status := strings.TrimSpace(strings.Join(args[1:], " "))
	return runSetStatus(ctx, cfg, svc, id, status, out, errOut)
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a todo done" }
func (c *DoneCmd) Usage() string      { return "todo done <id>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, ok := parseRef(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	return runSetStatus(ctx, cfg, svc, id, DoneStatus, out, errOut)
}

// runSetStatus is the shared implementation for status and done.
// isRepeat is resent from the current todo so the partial update keeps it.
func runSetStatus(ctx context.Context, cfg *config.Config, svc service.Service, id, status string, out, errOut io.Writer) int {
	current, err := svc.GetTodo(ctx, id)
	if err != nil {
		return reportError(errOut, err)
	}

	if _, err := svc.UpdateTodo(ctx, id, service.Update{Status: status, IsRepeat: current.IsRepeat}); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
