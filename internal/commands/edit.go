package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalBool is a bool flag that remembers whether it was given.
type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) String() string { return strconv.FormatBool(b.value) }
func (b *optionalBool) Type() string   { return "bool" }

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	content string
	status  string
	repeat  optionalBool
}

// SetContent sets the new content (for testing).
func (c *EditCmd) SetContent(content string) { c.content = content }

// SetStatus sets the new status (for testing).
func (c *EditCmd) SetStatus(status string) { c.status = status }

// SetRepeat sets the new repeat flag (for testing).
func (c *EditCmd) SetRepeat(repeat bool) { c.repeat = optionalBool{set: true, value: repeat} }

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"update"} }
func (c *EditCmd) Synopsis() string   { return "Change a todo's content, status or repeat flag" }
func (c *EditCmd) Usage() string      { return "todo edit [--content <text>] [--status <s>] [--repeat[=bool]] <id>" }
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.repeat = optionalBool{}
	fs.StringVarP(&c.content, "content", "c", "", "")
	fs.StringVarP(&c.status, "status", "s", "", "")
	fs.Var(&c.repeat, "repeat", "")
	fs.Lookup("repeat").NoOptDefVal = "true"
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, ok := parseRef(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	content := strings.TrimSpace(c.content)
	status := strings.TrimSpace(c.status)
	if content == "" && status == "" && !c.repeat.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --content, --status or --repeat)")
		return exitcode.UserError
	}

	// The backend needs the fields we are not changing, so start from the
	// current todo.
	current, err := svc.GetTodo(ctx, id)
	if err != nil {
		return reportError(errOut, err)
	}

	u := service.Update{Status: current.Status, IsRepeat: current.IsRepeat}
	if content != "" {
		u.Content = &content
	}
	if status != "" {
		u.Status = status
	}
	if c.repeat.set {
		u.IsRepeat = c.repeat.value
	}

	if _, err := svc.UpdateTodo(ctx, id, u); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
