// Package cli runs the interactive numbered menu on top of a manager.Manager.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nick-dorsch/tasks/internal/manager"
	"github.com/nick-dorsch/tasks/internal/ui"
	"github.com/nick-dorsch/tasks/pkg/models"
)

const (
	choiceAdd = iota + 1
	choiceSetPriority
	choiceComplete
	choiceDisplayAll
	choiceDisplayIncomplete
	choiceSave
	choiceExit
)

// Chooser returns the next menu number. It replaces the printed menu and
// numeric prompt when set.
type Chooser func() (int, error)

type Driver struct {
	Manager *manager.Manager
	In      Input
	Out     io.Writer
	Chooser Chooser
}

func New(m *manager.Manager, in Input, out io.Writer) *Driver {
	return &Driver{
		Manager: m,
		In:      in,
		Out:     out,
	}
}

// LoadTasks loads the tasks file and reports the outcome. Failures are
// reported and never returned.
func (d *Driver) LoadTasks(ctx context.Context) manager.LoadResult {
	res, err := d.Manager.LoadTasksFromFile(ctx)
	for _, skipped := range res.Skipped {
		d.printf("Error parsing task from file: %v\n", skipped)
	}
	if err != nil {
		d.printf("Error loading tasks from file: %v\n", err)
		return res
	}
	d.println("Tasks loaded from file.")
	return res
}

// Run shows the menu until the user exits or input ends.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := d.choose()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrNotANumber) {
			d.println("Invalid choice, try again.")
			continue
		}
		if err != nil {
			return err
		}

		if choice == choiceExit {
			d.println("Exiting program...")
			return nil
		}

		if err := d.dispatch(ctx, choice); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (d *Driver) choose() (int, error) {
	if d.Chooser != nil {
		return d.Chooser()
	}
	d.showMenu()
	d.println("Enter Your Choice: ")
	return d.In.ReadInt()
}

func (d *Driver) showMenu() {
	for i, item := range ui.MenuItems {
		d.printf("%d. %s\n", i+1, item)
	}
}

func (d *Driver) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceAdd:
		return d.addTask()
	case choiceSetPriority:
		return d.setTaskPriority()
	case choiceComplete:
		return d.markAsCompleted()
	case choiceDisplayAll:
		d.displayTasks(true)
	case choiceDisplayIncomplete:
		d.displayTasks(false)
	case choiceSave:
		d.saveTasks(ctx)
	default:
		d.println("Invalid choice, try again.")
	}
	return nil
}

func (d *Driver) addTask() error {
	d.println("Enter the task name: ")
	name, err := d.In.ReadLine()
	if err != nil {
		return err
	}

	d.println("Enter the priority (1-5): ")
	priority, ok, err := d.readNumber("Invalid priority.")
	if !ok {
		return err
	}

	d.println("Enter the deadline of the task (YYYY-MM-DD HH:mm): ")
	deadline, err := d.In.ReadLine()
	if err != nil {
		return err
	}

	_, err = d.Manager.AddTask(name, priority, deadline)
	switch {
	case errors.Is(err, models.ErrDeadlineBeforeCreation):
		d.println("Deadline must be after the creation date.")
	case err != nil:
		d.printf("Error adding task: %v\n", err)
	default:
		d.println("Task ADDED!")
	}
	return nil
}

func (d *Driver) setTaskPriority() error {
	d.println("These are your tasks: ")
	d.displayTasks(true)

	d.println("Enter the task number to set the priority: ")
	taskNumber, ok, err := d.readNumber("Invalid task number.")
	if !ok {
		return err
	}
	if _, err := d.Manager.Task(taskNumber); err != nil {
		d.println("Invalid task number.")
		return nil
	}

	d.println("Enter the desired priority: ")
	priority, ok, err := d.readNumber("Invalid priority.")
	if !ok {
		return err
	}
	if err := d.Manager.SetTaskPriority(taskNumber, priority); err != nil {
		d.println("Invalid task number.")
		return nil
	}
	d.println("Priority has been set.")
	return nil
}

func (d *Driver) markAsCompleted() error {
	d.println("These are your tasks: ")
	d.displayTasks(false)

	d.println("Enter the task number to mark as completed: ")
	taskNumber, ok, err := d.readNumber("Invalid task number.")
	if !ok {
		return err
	}
	if err := d.Manager.MarkAsCompleted(taskNumber); err != nil {
		d.println("Invalid task number.")
		return nil
	}
	d.println("Task has been marked as completed.")
	return nil
}

func (d *Driver) displayTasks(showAll bool) {
	for line := range d.Manager.DisplayTasks(showAll) {
		d.println(line)
	}
	if d.Manager.Len() > 0 {
		d.println()
	}
}

func (d *Driver) saveTasks(ctx context.Context) {
	if err := d.Manager.SaveTasksToFile(ctx); err != nil {
		d.printf("Error saving tasks to file: %v\n", err)
		return
	}
	d.println("Tasks saved to file.")
}

// readNumber reads an integer. Non-numeric input prints invalidMsg and
// reports ok=false with a nil error.
func (d *Driver) readNumber(invalidMsg string) (n int, ok bool, err error) {
	n, err = d.In.ReadInt()
	if errors.Is(err, ErrNotANumber) {
		d.println(invalidMsg)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (d *Driver) println(a ...any) {
	fmt.Fprintln(d.Out, a...)
}

func (d *Driver) printf(format string, a ...any) {
	fmt.Fprintf(d.Out, format, a...)
}
