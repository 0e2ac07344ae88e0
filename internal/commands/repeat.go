package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&RepeatCmd{})
}

// RepeatCmd implements the repeat command.
type RepeatCmd struct{}

func (c *RepeatCmd) Name() string       { return "repeat" }
func (c *RepeatCmd) Aliases() []string  { return nil }
func (c *RepeatCmd) Synopsis() string   { return "Toggle whether a todo repeats" }
func (c *RepeatCmd) Usage() string      { return "todo repeat <id>" }
func (c *RepeatCmd) NeedsService() bool { return true }

func (c *RepeatCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RepeatCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, ok := parseRef(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	current, err := svc.GetTodo(ctx, id)
	if err != nil {
		return reportError(errOut, err)
	}

	updated, err := svc.ToggleRepeat(ctx, id, current.IsRepeat, current.Status)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		state := "off"
		if updated.IsRepeat {
			state = "on"
		}
		fmt.Fprintf(out, "ok repeat %s\n", state)
	}
	return exitcode.Success
}
