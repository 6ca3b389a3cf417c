package tapecmp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// MaxLineSize is the longest line ReadLines accepts.
const MaxLineSize = 16 * 1024 * 1024

type ReadError struct {
	Name string
	Line int
	err  error
}

func (e *ReadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("read %d:%s", e.Line, e.err)
	}
	return fmt.Sprintf("read %s:%d:%s", e.Name, e.Line, e.err)
}

func (e *ReadError) Unwrap() error { return e.err }

// ReadLines reads all lines from r. Each line keeps its terminator, either
// "\n" or "\r\n". The last line has no terminator if r does not end with
// one.
func ReadLines(r io.Reader) (lines []string, err error) {
	scn := bufio.NewScanner(r)
	scn.Buffer(nil, MaxLineSize)
	scn.Split(scanTerminatedLines)
	for scn.Scan() {
		lines = append(lines, scn.Text())
	}
	if err = scn.Err(); err != nil {
		return lines, &ReadError{Line: len(lines) + 1, err: err}
	}
	return lines, nil
}

func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// modificated version of bufio.ScanLines
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Terminator returns the line terminator of line, if any.
func Terminator(line string) string {
	n := len(line)
	switch {
	case n >= 2 && line[n-2:] == "\r\n":
		return "\r\n"
	case n >= 1 && line[n-1] == '\n':
		return "\n"
	}
	return ""
}
