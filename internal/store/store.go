// Package store reads and writes the line-oriented tasks file.
package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nick-dorsch/tasks/pkg/models"
)

// DefaultPath is the tasks file used when no other path is configured.
const DefaultPath = "tasks.txt"

// previewLength bounds how much of an over-long line is kept for reporting.
const previewLength = 40

type Store struct {
	Path string
}

// Open returns a store for the given path. The file is not touched until
// Load or Save is called.
func Open(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

// Load reads every line of the tasks file. Lines that fail to parse, or that
// are longer than models.MaxLineLength, are returned in skipped and do not
// stop the load.
func (s *Store) Load(ctx context.Context) (tasks []*models.Task, skipped []error, err error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open tasks file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	for {
		if err := ctx.Err(); err != nil {
			return tasks, skipped, err
		}

		line, tooLong, err := readLine(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tasks, skipped, fmt.Errorf("failed to read tasks file: %w", err)
		}

		if tooLong {
			skipped = append(skipped, &models.ParseError{Line: line + "...", Err: models.ErrLineTooLong})
			continue
		}

		task, err := models.ParseTask(line)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, skipped, nil
}

// readLine returns the next line without its terminator. A line longer than
// models.MaxLineLength is drained to its end and only a short prefix of it
// is returned, with tooLong set.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, readErr := r.ReadLine()
		if errors.Is(readErr, io.EOF) && (len(buf) > 0 || tooLong) {
			return string(buf), tooLong, nil
		}
		if readErr != nil {
			return "", false, readErr
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > models.MaxLineLength {
				tooLong = true
				buf = []byte(strings.ToValidUTF8(string(buf[:previewLength]), ""))
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// Save truncates the tasks file and writes one line per task. A failed
// write can leave the file partially written.
func (s *Store) Save(ctx context.Context, tasks []*models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create tasks directory: %w", err)
		}
	}

	file, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create tasks file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, t := range tasks {
		if _, err := w.WriteString(t.String() + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("failed to write task: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush tasks file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close tasks file: %w", err)
	}

	return nil
}
