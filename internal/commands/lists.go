package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print the list to category mapping" }
func (c *ListsCmd) Usage() string      { return "todo lists [common flags]" }
func (c *ListsCmd) NeedsService() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	for _, cat := range svc.ListCategories() {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}
