package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotANumber is returned by ReadInt when the line holds no integer.
var ErrNotANumber = errors.New("not a number")

// Input is the source of everything the user types.
type Input interface {
	// ReadLine returns the next line without its terminator.
	ReadLine() (string, error)
	// ReadInt reads the next line and parses its first token. The rest of
	// the line, terminator included, is consumed.
	ReadInt() (int, error)
}

type ConsoleInput struct {
	r io.ByteReader
}

func NewConsoleInput(r io.Reader) *ConsoleInput {
	return &ConsoleInput{r: bufio.NewReader(r)}
}

// NewTerminalInput reads r one byte at a time so that nothing past the
// current line is consumed. Use it when another reader, such as the
// arrow-key menu, takes turns on the same stream.
func NewTerminalInput(r io.Reader) *ConsoleInput {
	return &ConsoleInput{r: &unbufferedReader{r: r}}
}

func (c *ConsoleInput) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			// A final line without a terminator is still a line.
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			return "", err
		}
		if b == '\n' {
			return strings.TrimRight(sb.String(), "\r"), nil
		}
		sb.WriteByte(b)
	}
}

type unbufferedReader struct {
	r   io.Reader
	buf [1]byte
}

func (u *unbufferedReader) ReadByte() (byte, error) {
	for {
		n, err := u.r.Read(u.buf[:])
		if n == 1 {
			return u.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (c *ConsoleInput) ReadInt() (int, error) {
	line, err := c.ReadLine()
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrNotANumber)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, fields[0])
	}
	return n, nil
}
