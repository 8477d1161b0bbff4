package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	originalStdin := stdin
	originalRunMenu := runMenu
	originalServeMCP := serveMCP
	t.Cleanup(func() {
		stdin = originalStdin
		runMenu = originalRunMenu
		serveMCP = originalServeMCP
		filePath, configPath, useTUI, verbose = "", "", false, false
	})
}

func writeTasks(t *testing.T, path string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write tasks file: %v", err)
	}
}

func TestExecuteInteractiveEndToEnd(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()
	tasksPath := filepath.Join(tmpDir, "tasks.txt")
	configArg := filepath.Join(tmpDir, "config.json")

	tomorrow := time.Now().Add(24 * time.Hour).Format("2006-01-02 15:04")
	stdin = strings.NewReader("1\nBuy milk\n3\n" + tomorrow + "\n6\n7\n")

	var stdout, stderr bytes.Buffer
	if err := execute([]string{"-file", tasksPath, "-config", configArg}, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Error loading tasks from file:") {
		t.Errorf("expected missing file to be reported, got: %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Tasks saved to file.") {
		t.Fatalf("expected save confirmation, got: %s", stdout.String())
	}

	// Fresh run reading the saved file.
	stdin = strings.NewReader("4\n7\n")
	stdout.Reset()
	if err := execute([]string{"-file", tasksPath, "-config", configArg}, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "Tasks loaded from file.") {
		t.Errorf("expected load confirmation, got: %s", output)
	}
	if !strings.Contains(output, "1. Task: Buy milk - Priority: 3 - Completed: No") {
		t.Errorf("expected reloaded task, got: %s", output)
	}
	if strings.Contains(output, "2. Task:") {
		t.Errorf("expected exactly one task, got: %s", output)
	}
}

func TestExecuteTUIUsesMenu(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()

	calls := 0
	runMenu = func() (int, error) {
		calls++
		return 7, nil
	}
	stdin = strings.NewReader("")

	var stdout, stderr bytes.Buffer
	args := []string{"-tui", "-file", filepath.Join(tmpDir, "tasks.txt"), "-config", filepath.Join(tmpDir, "none.json")}
	if err := execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected menu to be shown once, got %d", calls)
	}
	if !strings.Contains(stdout.String(), "Exiting program...") {
		t.Errorf("expected exit message, got: %s", stdout.String())
	}
}

func TestExecuteTUILeavesInputForMenu(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()

	in := strings.NewReader("Buy milk\n3\n2099-01-01 10:00\nleft for menu\n")
	stdin = in
	calls := 0
	runMenu = func() (int, error) {
		calls++
		if calls == 1 {
			return 1, nil
		}
		rest, _ := io.ReadAll(in)
		if string(rest) != "left for menu\n" {
			t.Errorf("expected menu to see unread input, got %q", rest)
		}
		return 7, nil
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-tui", "-file", filepath.Join(tmpDir, "tasks.txt"), "-config", filepath.Join(tmpDir, "none.json")}
	if err := execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Task ADDED!") {
		t.Errorf("expected task to be added, got: %s", stdout.String())
	}
}

func TestExecuteTUIRequiresTerminal(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()

	f, err := os.Create(filepath.Join(tmpDir, "input.txt"))
	if err != nil {
		t.Fatalf("failed to create input file: %v", err)
	}
	defer f.Close()
	stdin = f
	runMenu = func() (int, error) {
		t.Error("menu should not run without a terminal")
		return 7, nil
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-tui", "-file", filepath.Join(tmpDir, "tasks.txt"), "-config", filepath.Join(tmpDir, "none.json")}
	err = execute(args, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Fatalf("expected terminal error, got: %v", err)
	}
}

func TestExecuteList(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()
	tasksPath := filepath.Join(tmpDir, "tasks.txt")
	writeTasks(t, tasksPath,
		"Task: done - Priority: 1 - Completed: Yes - Created At: 2024-05-01 09:30 - Deadline: 2024-05-02 18:00 ✔",
		"Task: open - Priority: 2 - Completed: No - Created At: 2024-05-01 09:30 - Deadline: 2024-05-03 18:00 ✘",
	)

	var stdout, stderr bytes.Buffer
	args := []string{"-file", tasksPath, "-config", filepath.Join(tmpDir, "none.json"), "list", "-incomplete"}
	if err := execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	output := stdout.String()
	if strings.Contains(output, "Task: done") {
		t.Errorf("expected completed task to be hidden: %s", output)
	}
	if !strings.Contains(output, "2. Task: open") {
		t.Errorf("expected open task with number 2: %s", output)
	}
}

func TestExecuteStatus(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()
	tasksPath := filepath.Join(tmpDir, "tasks.txt")
	writeTasks(t, tasksPath,
		"Task: done - Priority: 1 - Completed: Yes - Created At: 2024-05-01 09:30 - Deadline: 2024-05-02 18:00 ✔",
		"Task: later - Priority: 2 - Completed: No - Created At: 2024-05-01 09:30 - Deadline: 2099-05-03 18:00 ✘",
		"Task: sooner - Priority: 4 - Completed: No - Created At: 2024-05-01 09:30 - Deadline: 2098-05-03 18:00 ✘",
		"broken line",
	)

	var stdout, stderr bytes.Buffer
	args := []string{"-file", tasksPath, "-config", filepath.Join(tmpDir, "none.json"), "status"}
	if err := execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"Task Status", "Total:", "3", "Next Deadlines:"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
	if strings.Index(output, "3. sooner") > strings.Index(output, "2. later") {
		t.Errorf("expected earliest deadline first: %s", output)
	}
	if !strings.Contains(stderr.String(), "Error parsing task from file:") {
		t.Errorf("expected skipped line on stderr, got: %s", stderr.String())
	}
}

func TestExecuteMCP(t *testing.T) {
	resetGlobals(t)
	tmpDir := t.TempDir()

	called := false
	serveMCP = func(s *server.MCPServer) error {
		called = true
		if s.GetTool("list_tasks") == nil {
			t.Error("expected list_tasks tool to be registered")
		}
		return nil
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-file", filepath.Join(tmpDir, "tasks.txt"), "-config", filepath.Join(tmpDir, "none.json"), "mcp"}
	if err := execute(args, &stdout, &stderr); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called {
		t.Fatal("expected MCP server to be served")
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got: %s", stdout.String())
	}
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	resetGlobals(t)
	var stdout, stderr bytes.Buffer
	err := execute([]string{"-config", filepath.Join(t.TempDir(), "none.json"), "work"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command: work") {
		t.Fatalf("expected unknown command error, got: %v", err)
	}
}

func TestExecuteHelp(t *testing.T) {
	resetGlobals(t)
	var stdout, stderr bytes.Buffer
	err := execute([]string{"--help"}, &stdout, &stderr)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected help error, got: %v", err)
	}
	output := stderr.String()
	for _, want := range []string{"starts the interactive menu", "-file", "-config", "-tui", "-verbose"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q: %s", want, output)
		}
	}
}
