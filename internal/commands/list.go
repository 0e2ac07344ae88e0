package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list <list-id>`.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List todos" }
func (c *ListCmd) Usage() string      { return "todo list [<list-id>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	listID := service.Overview
	if len(args) == 1 {
		listID = strings.TrimSpace(args[0])
		if listID == "" {
			fmt.Fprintln(errOut, "error: list id required")
			return exitcode.UserError
		}
	}

	todos, err := svc.ListTodos(ctx, listID)
	if err != nil {
		return reportError(errOut, err)
	}

	if listID == service.Overview {
		return c.printOverview(cfg, todos, out)
	}

	output.FormatListHeader(out, labelFor(svc, listID))
	for _, todo := range todos {
		output.FormatTodo(out, todo)
	}
	return exitcode.Success
}

// printOverview groups todos by category, in order of first appearance.
func (c *ListCmd) printOverview(cfg *config.Config, todos []service.Todo, out io.Writer) int {
	if len(todos) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no todos found")
		}
		return exitcode.Success
	}

	var order []string
	groups := make(map[string][]service.Todo)
	for _, todo := range todos {
		if _, seen := groups[todo.ListType]; !seen {
			order = append(order, todo.ListType)
		}
		groups[todo.ListType] = append(groups[todo.ListType], todo)
	}

	for _, label := range order {
		output.FormatListHeader(out, label)
		for _, todo := range groups[label] {
			output.FormatTodo(out, todo)
		}
	}
	return exitcode.Success
}

// labelFor returns the category label of listID, or listID itself.
func labelFor(svc service.Service, listID string) string {
	for _, cat := range svc.ListCategories() {
		if cat.ID == listID {
			return cat.Label
		}
	}
	return listID
}
