// Package prompt reads credentials from the controlling terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmpty is returned when the user enters nothing.
var ErrEmpty = errors.New("no input")

// Line prints label to out and reads one line from in. It reads a byte at
// a time so that later prompts on the same reader see the following lines.
func Line(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
	}

	text := strings.TrimRight(string(line), "\r")
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Secret reads a value with echo disabled when in is a terminal. Any other
// input is read as a single line without a prompt.
func Secret(in io.Reader, out io.Writer, label string) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return Line(in, io.Discard, label)
	}
	fd := int(file.Fd())

	fmt.Fprintf(out, "%s: ", label)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}
