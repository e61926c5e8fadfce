package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/m4xw311/review-mcp/errors"
	mcpclient "github.com/m4xw311/review-mcp/tools/mcp"
	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "review-mcp-call",
		Usage:   "Call the tools of an MCP server over stdio",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "MCP server `COMMAND` to spawn",
				Value:   "review-mcp",
			},
			&cli.StringSliceFlag{
				Name:  "server-arg",
				Usage: "argument passed to the server command (repeatable)",
			},
		},
		Commands: []*cli.Command{
			toolsCommand(),
			callCommand(),
		},
	}
}

func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List the tools the server provides",
		Action: func(c *cli.Context) error {
			client, err := connect(c)
			if err != nil {
				return err
			}
			defer client.Stop()

			for _, t := range client.Tools() {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", t.Name(), t.Description())
			}
			return nil
		},
	}
}

func callCommand() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Call a tool and print its result",
		ArgsUsage: "TOOL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "args",
				Aliases: []string{"a"},
				Usage:   "tool arguments as a JSON object",
				Value:   "{}",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected exactly one tool name, got %d arguments", c.NArg())
			}
			args, err := parseArgs(c.String("args"))
			if err != nil {
				return err
			}

			client, err := connect(c)
			if err != nil {
				return err
			}
			defer client.Stop()

			name := c.Args().First()
			tool, ok := client.GetTool(name)
			if !ok {
				return errors.New("server does not provide tool '%s'", name)
			}
			out, err := tool.Execute(c.Context, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, out)
			return nil
		},
	}
}

func connect(c *cli.Context) (*mcpclient.MCPClient, error) {
	command := c.String("server")
	return mcpclient.NewMCPClient(c.Context, command, command, c.StringSlice("server-arg"))
}

// parseArgs decodes the --args flag, which must be a JSON object.
func parseArgs(raw string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, errors.Wrapf(err, "--args must be a JSON object")
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
