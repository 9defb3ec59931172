package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/tour-desk/pkg/core/tours"
	"github.com/jakechorley/tour-desk/pkg/db"
)

type sessionCommand struct {
	usage string
	short string
	args  int
	run   func(ctx context.Context, c *tours.Controller, args []string)
}

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start a live session: the tour list stays subscribed until you exit",
		Long: `Start an interactive session that keeps the tour list subscribed to changes.
Mutations made here or elsewhere are picked up on the next re-fetch.

Type 'help' to see available commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.Out, "\nStarting interactive session...")

			c := app.NewController()
			mount(app.Ctx, app, c)
			defer c.Stop()

			fmt.Fprintln(app.Out, "Type 'help' for available commands, 'exit' or 'quit' to leave")
			return runSession(app.Ctx, app.Out, app.In, c)
		},
	}
}

func sessionCommands(out io.Writer) map[string]sessionCommand {
	return map[string]sessionCommand{
		"list": {
			usage: "list",
			short: "Show the current tour list",
			run: func(ctx context.Context, c *tours.Controller, args []string) {
				printTours(out, c.Tours())
			},
		},
		"refresh": {
			usage: "refresh",
			short: "Re-fetch the tour list now",
			run: func(ctx context.Context, c *tours.Controller, args []string) {
				c.Refresh(ctx)
				printTours(out, c.Tours())
			},
		},
		"checkIn": {
			usage: "checkIn <client_id> <checked-in|no-show>",
			short: "Set a client's check-in status",
			args:  2,
			run: func(ctx context.Context, c *tours.Controller, args []string) {
				c.UpdateClientStatus(ctx, args[0], db.CheckInStatus(args[1]))
			},
		},
		"assignGuide": {
			usage: "assignGuide <tour_id> <guide_id>",
			short: "Assign a guide to a tour",
			args:  2,
			run: func(ctx context.Context, c *tours.Controller, args []string) {
				c.AssignGuide(ctx, args[0], args[1])
			},
		},
	}
}

// runSession reads commands line by line until exit, quit or end of input
func runSession(ctx context.Context, out io.Writer, in io.Reader, c *tours.Controller) error {
	commands := sessionCommands(out)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		name, args := parts[0], parts[1:]

		if name == "exit" || name == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		if name == "help" {
			printSessionHelp(out, commands)
			continue
		}

		command, ok := commands[name]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s (type 'help' for available commands)\n\n", name)
			continue
		}
		if len(args) != command.args {
			fmt.Fprintf(out, "Usage: %s\n\n", command.usage)
			continue
		}

		command.run(ctx, c, args)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

func printSessionHelp(out io.Writer, commands map[string]sessionCommand) {
	fmt.Fprintln(out, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %-42s %s\n", commands[name].usage, commands[name].short)
	}

	fmt.Fprintln(out, "\n  help                                       Show this help message")
	fmt.Fprintln(out, "  exit, quit                                 Exit the interactive session")
}
