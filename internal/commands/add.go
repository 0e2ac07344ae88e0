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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listID string
}

// SetListID sets the list ID (for testing).
func (c *AddCmd) SetListID(id string) {
	c.listID = id
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a todo" }
func (c *AddCmd) Usage() string      { return "todo add --list <list-id> <content...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.listID, "list", "l", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	content := strings.TrimSpace(strings.Join(args, " "))
	if content == "" {
		fmt.Fprintln(errOut, "error: content required")
		return exitcode.UserError
	}

	listID := strings.TrimSpace(c.listID)
	if listID == "" {
		fmt.Fprintln(errOut, "error: list id required (use --list)")
		return exitcode.UserError
	}

	todo, err := svc.CreateTodo(ctx, content, listID)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", todo.ID)
	}
	return exitcode.Success
}
