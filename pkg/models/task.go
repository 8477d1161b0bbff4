package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// TimeLayout is the minute-precision layout used for both timestamps in the
// tasks file and for interactive deadline entry.
const TimeLayout = "2006-01-02 15:04"

const (
	fieldSeparator = " - "

	namePrefix      = "Task: "
	priorityPrefix  = "Priority: "
	completedPrefix = "Completed: "
	createdAtPrefix = "Created At: "
	deadlinePrefix  = "Deadline: "

	// deadlineSuffixRunes covers the space and status glyph after the deadline.
	deadlineSuffixRunes = 2

	glyphDone    = "✔"
	glyphNotDone = "✘"
)

// MaxLineLength is the longest stored line, in bytes, that is written or read.
const MaxLineLength = 64 * 1024

// ErrDeadlineBeforeCreation is returned when a new task's deadline precedes
// its creation time.
var ErrDeadlineBeforeCreation = errors.New("deadline must be after the creation date")

// ErrLineTooLong is returned for a task whose stored line would exceed
// MaxLineLength.
var ErrLineTooLong = fmt.Errorf("task line exceeds %d bytes", MaxLineLength)

// ParseError reports a stored line or deadline text that could not be parsed.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing task %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Task struct {
	Name      string    `json:"name"`
	Priority  int       `json:"priority"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	Deadline  time.Time `json:"deadline"`
}

// NewTask builds an incomplete task created at now. The deadline is checked
// against now itself; CreatedAt is kept at minute precision so that a saved
// and reloaded task compares equal.
func NewTask(name string, priority int, deadline, now time.Time) (*Task, error) {
	if deadline.Before(now) {
		return nil, ErrDeadlineBeforeCreation
	}
	task := &Task{
		Name:      name,
		Priority:  priority,
		CreatedAt: now.Truncate(time.Minute),
		Deadline:  deadline,
	}
	if len(task.String()) > MaxLineLength {
		return nil, ErrLineTooLong
	}
	return task, nil
}

// RestoreTask rebuilds a task from stored fields without validation.
func RestoreTask(name string, priority int, completed bool, createdAt, deadline time.Time) *Task {
	return &Task{
		Name:      name,
		Priority:  priority,
		Completed: completed,
		CreatedAt: createdAt,
		Deadline:  deadline,
	}
}

func (t *Task) MarkCompleted() {
	t.Completed = true
}

// String renders the task as one line of the tasks file.
func (t *Task) String() string {
	completed, glyph := "No", glyphNotDone
	if t.Completed {
		completed, glyph = "Yes", glyphDone
	}

	var b strings.Builder
	b.WriteString(namePrefix + t.Name)
	b.WriteString(fieldSeparator + priorityPrefix + strconv.Itoa(t.Priority))
	b.WriteString(fieldSeparator + completedPrefix + completed)
	b.WriteString(fieldSeparator + createdAtPrefix + t.CreatedAt.Format(TimeLayout))
	b.WriteString(fieldSeparator + deadlinePrefix + t.Deadline.Format(TimeLayout))
	b.WriteString(" " + glyph)
	return b.String()
}

// ParseTask is the inverse of String.
func ParseTask(line string) (*Task, error) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) != 5 {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("expected 5 fields, got %d", len(parts))}
	}

	name, err := stripPrefix(parts[0], namePrefix)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}

	rawPriority, err := stripPrefix(parts[1], priorityPrefix)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	priority, err := strconv.Atoi(rawPriority)
	if err != nil {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("invalid priority: %w", err)}
	}

	rawCompleted, err := stripPrefix(parts[2], completedPrefix)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}

	rawCreatedAt, err := stripPrefix(parts[3], createdAtPrefix)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	createdAt, err := parseTime(rawCreatedAt)
	if err != nil {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("invalid created at: %w", err)}
	}

	rawDeadline, err := stripPrefix(parts[4], deadlinePrefix)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	rawDeadline, err = trimRunes(rawDeadline, deadlineSuffixRunes)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	deadline, err := parseTime(rawDeadline)
	if err != nil {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("invalid deadline: %w", err)}
	}

	return RestoreTask(name, priority, rawCompleted == "Yes", createdAt, deadline), nil
}

// ParseDeadline parses user-entered deadline text.
func ParseDeadline(text string) (time.Time, error) {
	deadline, err := parseTime(text)
	if err != nil {
		return time.Time{}, &ParseError{Line: text, Err: fmt.Errorf("invalid deadline: %w", err)}
	}
	return deadline, nil
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}

// stripPrefix removes a label by its fixed width. Only the width is checked,
// not the label text, so stored files with altered labels still load.
func stripPrefix(segment, prefix string) (string, error) {
	if len(segment) < len(prefix) {
		return "", fmt.Errorf("field %q shorter than label %q", segment, prefix)
	}
	return segment[len(prefix):], nil
}

func trimRunes(s string, n int) (string, error) {
	if utf8.RuneCountInString(s) < n {
		return "", fmt.Errorf("field %q shorter than %d characters", s, n)
	}
	for range n {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s, nil
}
