package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Subject is the simulation executable under test. It reads Input on stdin
// and writes its standard streams to Output and Error. Relative file names
// and a relative Path are resolved against Dir.
type Subject struct {
	Path   string
	Args   []string
	Dir    string
	Input  string
	Output string
	Error  string
}

// SubjectError reports that the subject exited with a non-zero status. Code
// is -1 if the subject could not be started or was killed by a signal.
type SubjectError struct {
	Path string
	Code int
	err  error
}

func (e *SubjectError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("subject %s failed: %s", e.Path, e.err)
	}
	return fmt.Sprintf("subject %s failed with exit code %d", e.Path, e.Code)
}

func (e *SubjectError) Unwrap() error { return e.err }

func (s *Subject) file(name string) string {
	if name == "" || filepath.IsAbs(name) || s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Run executes the subject and waits for it to finish.
func (s *Subject) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.Path, s.Args...)
	cmd.Dir = s.Dir
	if s.Input != "" {
		in, err := os.Open(s.file(s.Input))
		if err != nil {
			return fmt.Errorf("subject input: %w", err)
		}
		defer in.Close()
		cmd.Stdin = in
	}
	if s.Output != "" {
		out, err := os.Create(s.file(s.Output))
		if err != nil {
			return fmt.Errorf("subject output: %w", err)
		}
		defer out.Close()
		cmd.Stdout = out
	}
	if s.Error != "" {
		errf, err := os.Create(s.file(s.Error))
		if err != nil {
			return fmt.Errorf("subject error: %w", err)
		}
		defer errf.Close()
		cmd.Stderr = errf
	}
	err := cmd.Run()
	if err == nil {
		return nil
	}
	serr := &SubjectError{Path: s.Path, Code: -1, err: err}
	var xerr *exec.ExitError
	if errors.As(err, &xerr) {
		serr.Code = xerr.ExitCode()
	}
	return serr
}
