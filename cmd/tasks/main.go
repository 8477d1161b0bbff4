package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
	"github.com/nick-dorsch/tasks/internal/cli"
	"github.com/nick-dorsch/tasks/internal/manager"
	"github.com/nick-dorsch/tasks/internal/mcp"
	"github.com/nick-dorsch/tasks/internal/store"
	"github.com/nick-dorsch/tasks/internal/ui"
	"github.com/nick-dorsch/tasks/pkg/models"
)

var (
	filePath   string
	configPath string
	useTUI     bool
	verbose    bool
)

// Swapped out in tests.
var (
	stdin    io.Reader = os.Stdin
	runMenu            = ui.RunMenu
	serveMCP           = mcp.Serve
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&filePath, "file", store.DefaultPath, "Path to tasks file")
	fs.StringVar(&configPath, "config", defaultConfigPath, "Path to optional JSON config file")
	fs.BoolVar(&useTUI, "tui", false, "Pick menu actions with the arrow-key menu (needs an interactive terminal)")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: tasks [flags] [command]")
		fmt.Fprintln(stderr, "\nRunning `tasks` with no command starts the interactive menu.")
		fmt.Fprintln(stderr, "\nCommands:")
		fmt.Fprintln(stderr, "  list      Print tasks once (-incomplete to hide completed tasks)")
		fmt.Fprintln(stderr, "  status    Show task counts and upcoming deadlines")
		fmt.Fprintln(stderr, "  mcp       Serve the task list as MCP tools on stdio")
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	defaults, err := loadRunDefaults(configPath)
	if err != nil {
		return err
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	if !explicit["file"] {
		filePath = defaults.File
	}
	if !explicit["tui"] {
		useTUI = defaults.TUI
	}
	logf(stderr, "tasks file: %s", filePath)

	var command string
	var rest []string
	if fs.NArg() > 0 {
		command = fs.Arg(0)
		rest = fs.Args()[1:]
	}

	switch command {
	case "":
		return runInteractive(stdout, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	case "status":
		return runStatus(rest, stdout, stderr)
	case "mcp":
		return runMCP(rest, stderr)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runInteractive(stdout, stderr io.Writer) error {
	ctx := context.Background()

	in := cli.NewConsoleInput(stdin)
	if useTUI {
		// The menu reads the same stream between prompts, so nothing may be
		// buffered past the current line.
		if f, ok := stdin.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return errors.New("-tui requires an interactive terminal")
		}
		in = cli.NewTerminalInput(stdin)
	}

	m := manager.New(store.Open(filePath))
	d := cli.New(m, in, stdout)
	if useTUI {
		d.Chooser = func() (int, error) {
			return runMenu()
		}
	}

	res := d.LoadTasks(ctx)
	logf(stderr, "loaded %d tasks, skipped %d lines", res.Loaded, len(res.Skipped))

	return d.Run(ctx)
}

func runList(args []string, stdout, stderr io.Writer) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	listFlags.SetOutput(stderr)
	incomplete := listFlags.Bool("incomplete", false, "Only show tasks that are not completed")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	m := loadManager(context.Background(), stderr)
	for line := range m.DisplayTasks(!*incomplete) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runStatus(args []string, stdout, stderr io.Writer) error {
	m := loadManager(context.Background(), stderr)
	s := m.Summary()

	fmt.Fprintln(stdout, ui.Header("Task Status"))
	fmt.Fprintln(stdout, ui.CountLine("Total", s.Total, ""))
	fmt.Fprintln(stdout, ui.CountLine("Completed", s.Completed, "done"))
	fmt.Fprintln(stdout, ui.CountLine("Incomplete", s.Incomplete, "pending"))
	fmt.Fprintln(stdout, ui.CountLine("Overdue", s.Overdue, "overdue"))

	type numbered struct {
		n    int
		task *models.Task
	}
	var upcoming []numbered
	for n, t := range m.Numbered(false) {
		upcoming = append(upcoming, numbered{n, t})
	}
	if len(upcoming) == 0 {
		return nil
	}
	slices.SortStableFunc(upcoming, func(a, b numbered) int {
		return a.task.Deadline.Compare(b.task.Deadline)
	})

	fmt.Fprintln(stdout, "\nNext Deadlines:")
	for i, u := range upcoming {
		if i >= 5 {
			break
		}
		fmt.Fprintf(stdout, "  %d. %s (priority: %d, due %s)\n", u.n, u.task.Name, u.task.Priority, u.task.Deadline.Format(models.TimeLayout))
	}
	return nil
}

func runMCP(args []string, stderr io.Writer) error {
	m := loadManager(context.Background(), stderr)
	return serveMCP(mcp.NewServer(m))
}

// loadManager loads the tasks file for the one-shot commands. Problems go to
// stderr so stdout stays clean for MCP.
func loadManager(ctx context.Context, stderr io.Writer) *manager.Manager {
	m := manager.New(store.Open(filePath))
	res, err := m.LoadTasksFromFile(ctx)
	for _, skipped := range res.Skipped {
		fmt.Fprintf(stderr, "Error parsing task from file: %v\n", skipped)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error loading tasks from file: %v\n", err)
		return m
	}
	logf(stderr, "loaded %d tasks, skipped %d lines", res.Loaded, len(res.Skipped))
	return m
}

func logf(stderr io.Writer, format string, args ...any) {
	if !verbose {
		return
	}
	fmt.Fprintf(stderr, "[tasks] "+format+"\n", args...)
}
