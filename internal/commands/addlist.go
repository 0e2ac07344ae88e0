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
	Register(&AddListCmd{})
}

// AddListCmd implements the addlist command.
type AddListCmd struct{}

func (c *AddListCmd) Name() string       { return "addlist" }
func (c *AddListCmd) Aliases() []string  { return []string{"createlist"} }
func (c *AddListCmd) Synopsis() string   { return "Map a list id to a category label" }
func (c *AddListCmd) Usage() string      { return "todo addlist [common flags] <list-id> <label...>" }
func (c *AddListCmd) NeedsService() bool { return true }

func (c *AddListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	id := strings.TrimSpace(args[0])

	label := strings.TrimSpace(strings.Join(args[1:], " "))
	if label == "" {
		fmt.Fprintln(errOut, "error: label required")
		return exitcode.UserError
	}

	if err := svc.AddCategory(id, label); err != nil {
		if service.IsUsage(err) {
			return reportError(errOut, err)
		}
		fmt.Fprintf(errOut, "error: failed to save lists: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
