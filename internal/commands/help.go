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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                         List all todos (overview)
  todo list [common flags] [<list-id>]         List todos of one list
  todo add [common flags] --list <list-id> <content...>
  todo create [common flags] --list <list-id> <content...>
  todo edit [common flags] [--content <text>] [--status <s>] [--repeat[=bool]] <id>
  todo status [common flags] <id> <status>
  todo done [common flags] <id>
  todo repeat [common flags] <id>
  todo show [common flags] <id>
  todo rm [common flags] <id>
  todo lists [common flags]
  todo addlist [common flags] <list-id> <label...>
  todo rmlist [common flags] [--force] <list-id>
  todo login [common flags] [--force] --token <token|->
  todo logout [common flags]
  todo help
  todo version

Lists:
  "overview" means all todos. Other list ids map to the category label the
  backend filters by; see "todo lists".

Common flags:
  --config <dir>      Override config directory
  --base-url <url>    Override the backend API root
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
