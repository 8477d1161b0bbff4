package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/tasks/internal/manager"
	"github.com/nick-dorsch/tasks/pkg/models"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// taskView is the JSON shape of one task in list_tasks results.
type taskView struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	Deadline  string `json:"deadline"`
}

// NewServer creates a new MCP server.
func NewServer(m *manager.Manager) *server.MCPServer {
	s := server.NewMCPServer("Tasks", Version)

	// The manager is not safe for concurrent use; every handler holds mu.
	mu := &sync.Mutex{}

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks. Numbers are positions in the full list and stay the same when completed tasks are hidden."),
		mcp.WithBoolean("show_all", mcp.Description("Include completed tasks (defaults to true).")),
	), listTasksHandler(m, mu))

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a new incomplete task. The deadline must not be before the current time."),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithNumber("priority", mcp.Description("Priority (1-5)"), mcp.Required()),
		mcp.WithString("deadline", mcp.Description("Deadline as YYYY-MM-DD HH:mm"), mcp.Required()),
	), addTaskHandler(m, mu))

	s.AddTool(mcp.NewTool("set_task_priority",
		mcp.WithDescription("Set the priority of a task by its number."),
		mcp.WithNumber("task_number", mcp.Description("1-based task number"), mcp.Required()),
		mcp.WithNumber("priority", mcp.Description("New priority"), mcp.Required()),
	), setTaskPriorityHandler(m, mu))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed by its number."),
		mcp.WithNumber("task_number", mcp.Description("1-based task number"), mcp.Required()),
	), completeTaskHandler(m, mu))

	s.AddTool(mcp.NewTool("save_tasks",
		mcp.WithDescription("Overwrite the tasks file with the current list."),
	), saveTasksHandler(m, mu))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listTasksHandler(m *manager.Manager, mu *sync.Mutex) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		showAll := mcp.ParseBoolean(request, "show_all", true)

		mu.Lock()
		views := make([]taskView, 0, m.Len())
		for n, t := range m.Numbered(showAll) {
			views = append(views, taskView{
				Number:    n,
				Name:      t.Name,
				Priority:  t.Priority,
				Completed: t.Completed,
				CreatedAt: t.CreatedAt.Format(models.TimeLayout),
				Deadline:  t.Deadline.Format(models.TimeLayout),
			})
		}
		mu.Unlock()

		data, err := json.Marshal(map[string]interface{}{"tasks": views})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func addTaskHandler(m *manager.Manager, mu *sync.Mutex) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")
		priority := mcp.ParseInt(request, "priority", 0)
		deadline := mcp.ParseString(request, "deadline", "")

		mu.Lock()
		defer mu.Unlock()

		_, err := m.AddTask(name, priority, deadline)
		if errors.Is(err, models.ErrDeadlineBeforeCreation) {
			return mcp.NewToolResultError("Deadline must be after the creation date."), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' added as number %d", name, m.Len())), nil
	}
}

func setTaskPriorityHandler(m *manager.Manager, mu *sync.Mutex) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskNumber := mcp.ParseInt(request, "task_number", 0)
		priority := mcp.ParseInt(request, "priority", 0)

		mu.Lock()
		defer mu.Unlock()

		if err := m.SetTaskPriority(taskNumber, priority); err != nil {
			return mcp.NewToolResultError("Invalid task number."), nil
		}

		return mcp.NewToolResultText("Priority has been set."), nil
	}
}

func completeTaskHandler(m *manager.Manager, mu *sync.Mutex) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskNumber := mcp.ParseInt(request, "task_number", 0)

		mu.Lock()
		defer mu.Unlock()

		if err := m.MarkAsCompleted(taskNumber); err != nil {
			return mcp.NewToolResultError("Invalid task number."), nil
		}

		return mcp.NewToolResultText("Task has been marked as completed."), nil
	}
}

func saveTasksHandler(m *manager.Manager, mu *sync.Mutex) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mu.Lock()
		defer mu.Unlock()

		if err := m.SaveTasksToFile(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error saving tasks to file: %v", err)), nil
		}

		return mcp.NewToolResultText("Tasks saved to file."), nil
	}
}
