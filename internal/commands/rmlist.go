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

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Remove a list id mapping" }
func (c *RmListCmd) Usage() string      { return "todo rmlist [--force] <list-id>" }
func (c *RmListCmd) NeedsService() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.force, "force", "f", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	id := strings.TrimSpace(args[0])

	var found, builtIn bool
	for _, cat := range svc.ListCategories() {
		if cat.ID == id {
			found, builtIn = true, cat.BuiltIn
			break
		}
	}
	if !found && !c.force {
		fmt.Fprintf(errOut, "error: list not found: %s\n", id)
		return exitcode.UserError
	}

	// Built-ins come back on the next start, so removing one needs --force.
	if builtIn && !c.force {
		fmt.Fprintln(errOut, "error: cannot remove built-in list (use --force)")
		return exitcode.UserError
	}

	if err := svc.RemoveCategory(id); err != nil {
		fmt.Fprintf(errOut, "error: failed to save lists: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
