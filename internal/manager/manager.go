// Package manager owns the in-memory task list and implements each menu
// action as one operation.
package manager

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/nick-dorsch/tasks/internal/store"
	"github.com/nick-dorsch/tasks/pkg/models"
)

// NoTasksMessage is the only line displayed for an empty list.
const NoTasksMessage = "You have no tasks!"

// ErrInvalidTaskNumber is returned for task numbers outside [1, Len()].
var ErrInvalidTaskNumber = errors.New("invalid task number")

// Manager is not safe for concurrent use.
type Manager struct {
	store *store.Store
	tasks []*models.Task

	// Now returns the creation time for new tasks.
	Now func() time.Time
}

type LoadResult struct {
	Loaded  int
	Skipped []error
}

type Summary struct {
	Total      int
	Completed  int
	Incomplete int
	Overdue    int
}

func New(s *store.Store) *Manager {
	return &Manager{
		store: s,
		Now:   time.Now,
	}
}

// LoadTasksFromFile appends the stored tasks in file order. When the file
// cannot be opened the list is left as it was and the error is returned.
func (m *Manager) LoadTasksFromFile(ctx context.Context) (LoadResult, error) {
	tasks, skipped, err := m.store.Load(ctx)
	m.tasks = append(m.tasks, tasks...)
	return LoadResult{Loaded: len(tasks), Skipped: skipped}, err
}

// AddTask parses deadlineText and appends a new task created now.
func (m *Manager) AddTask(name string, priority int, deadlineText string) (*models.Task, error) {
	deadline, err := models.ParseDeadline(deadlineText)
	if err != nil {
		return nil, err
	}

	task, err := models.NewTask(name, priority, deadline, m.Now())
	if err != nil {
		return nil, err
	}

	m.tasks = append(m.tasks, task)
	return task, nil
}

func (m *Manager) SaveTasksToFile(ctx context.Context) error {
	if err := m.store.Save(ctx, m.tasks); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

// SetTaskPriority overwrites the priority of the 1-based taskNumber. The new
// value is not range checked.
func (m *Manager) SetTaskPriority(taskNumber, newPriority int) error {
	task, err := m.Task(taskNumber)
	if err != nil {
		return err
	}
	task.Priority = newPriority
	return nil
}

// MarkAsCompleted is idempotent.
func (m *Manager) MarkAsCompleted(taskNumber int) error {
	task, err := m.Task(taskNumber)
	if err != nil {
		return err
	}
	task.MarkCompleted()
	return nil
}

// DisplayTasks yields "<n>. <task>" lines. n is the task's position in the
// full list even when completed tasks are filtered out, so the incomplete
// view can skip numbers.
func (m *Manager) DisplayTasks(showAll bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(m.tasks) == 0 {
			yield(NoTasksMessage)
			return
		}
		for i, task := range m.Numbered(showAll) {
			if !yield(fmt.Sprintf("%d. %s", i, task)) {
				return
			}
		}
	}
}

// Numbered yields tasks with their 1-based position in the full list.
func (m *Manager) Numbered(showAll bool) iter.Seq2[int, *models.Task] {
	return func(yield func(int, *models.Task) bool) {
		for i, task := range m.tasks {
			if !showAll && task.Completed {
				continue
			}
			if !yield(i+1, task) {
				return
			}
		}
	}
}

// Task returns the task at the 1-based taskNumber.
func (m *Manager) Task(taskNumber int) (*models.Task, error) {
	if taskNumber < 1 || taskNumber > len(m.tasks) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTaskNumber, taskNumber)
	}
	return m.tasks[taskNumber-1], nil
}

func (m *Manager) Len() int {
	return len(m.tasks)
}

func (m *Manager) Summary() Summary {
	now := m.Now()
	var s Summary
	for _, t := range m.tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Incomplete++
		if t.Deadline.Before(now) {
			s.Overdue++
		}
	}
	return s
}
