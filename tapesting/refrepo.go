// Package tapesting supports the use of tapecmp in your Go tests.
//
// Example compares the output of a simulation against the reference tape
// testdata/TestFlux:
//
//	func TestFlux(t *testing.T) {
//		var out bytes.Buffer
//		sim.Run(&out)
//		Error(t, "", &out)
//	}
//
// Reference tapes are recorded from the current output with
//
//	TAPESTING_RECORD=TestFlux go test .
package tapesting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fractalqb/tapecmp"
)

// When this environment variable is set to a regexp and the name of the current
// test matches calls to Error or Fatal will record the subj as new reference
// data instead of comparing it.
const RecordEnv = "TAPESTING_RECORD"

// GoTestdataDir is the name of Go's default directory for testdata (see go help
// test).
const GoTestdataDir = "testdata"

func Error(t testing.TB, hint string, subj io.Reader) error {
	return defaultConfig.Error(t, hint, subj)
}

func Fatal(t testing.TB, hint string, subj io.Reader) {
	defaultConfig.Fatal(t, hint, subj)
}

func Record(t testing.TB, hint string, subj io.Reader) {
	defaultConfig.Record(t, hint, subj)
}

type RefRepo struct {
	Dir    string
	Suffix string
}

const (
	StdSuffix = ".tape"
	NoSuffix  = "\x00"
)

func (rr RefRepo) Filename(t testing.TB, hint string) string {
	suffix := rr.Suffix
	switch suffix {
	case "":
		suffix = StdSuffix
	case NoSuffix:
		suffix = ""
	}
	if hint == "" {
		return filepath.Join(rr.Dir, t.Name()+suffix)
	}
	if suffix == "" || strings.HasSuffix(hint, suffix) {
		return filepath.Join(rr.Dir, t.Name(), hint)
	}
	return filepath.Join(rr.Dir, t.Name(), hint+suffix)
}

type Config struct {
	RefFileName func(t testing.TB, hint string) string
	Tolerance   tapecmp.Tolerance
	Masks       []*tapecmp.Mask
	// MismatchLimit limits the number of mismatches reported to t, 0 means no
	// limit. The comparison itself always covers all lines.
	MismatchLimit   int
	RecordOverwrite bool
	// KeepSubject keeps a copy of the subject next to the reference file if
	// the comparison fails.
	KeepSubject bool
}

var defaultConfig = Config{
	RefFileName:     RefRepo{Dir: GoTestdataDir}.Filename,
	Tolerance:       tapecmp.DefaultTolerance,
	Masks:           tapecmp.DefaultMasks(),
	MismatchLimit:   10,
	RecordOverwrite: false,
	KeepSubject:     true,
}

func (cfg Config) Error(t testing.TB, hint string, subj io.Reader) error {
	t.Helper()
	if recordTest(t) {
		cfg.Record(t, hint, subj)
		return nil
	}
	err := cfg.compare(t, hint, subj)
	if err != nil {
		t.Error(err)
	}
	return err
}

func (cfg Config) Fatal(t testing.TB, hint string, subj io.Reader) {
	t.Helper()
	if recordTest(t) {
		cfg.Record(t, hint, subj)
		return
	}
	if err := cfg.compare(t, hint, subj); err != nil {
		t.Fatal(err)
	}
}

func recordTest(t testing.TB) bool {
	rec := os.Getenv(RecordEnv)
	if rec == "" {
		return false
	}
	r, err := regexp.Compile(rec)
	if err != nil {
		t.Logf("tapesting: invalid regexp '%s' in %s, not recording: %s", rec, RecordEnv, err)
		return false
	}
	return r.MatchString(t.Name())
}

func (cfg *Config) compare(t testing.TB, hint string, subj io.Reader) (err error) {
	t.Helper()
	reffile := cfg.RefFileName(t, hint)
	if _, err := os.Stat(reffile); errors.Is(err, os.ErrNotExist) {
		t.Logf("to record a reference tape run '%[1]s=%[2]s go test -run %[2]s'",
			RecordEnv,
			t.Name(),
		)
		return fmt.Errorf("reference tape %s does not exist", reffile)
	}
	data, err := io.ReadAll(subj)
	if err != nil {
		return err
	}
	rf, err := os.Open(reffile)
	if err != nil {
		return err
	}
	defer rf.Close()
	cmpr := tapecmp.Compare{
		Tolerance:  cfg.Tolerance,
		Masks:      cfg.Masks,
		OnMismatch: MismatchError(t, hint, cfg.MismatchLimit),
	}
	_, err = cmpr.Readers(rf, strings.NewReader(string(data)))
	if err != nil && cfg.KeepSubject && tapecmp.IsMismatch(err) {
		if kerr := keep(reffile, data); kerr != nil {
			t.Log(kerr)
		}
	}
	return err
}

func keep(reffile string, data []byte) error {
	keepfile := strings.TrimSuffix(reffile, StdSuffix)
	k, err := os.CreateTemp(filepath.Dir(keepfile), filepath.Base(keepfile)+".")
	if err != nil {
		return err
	}
	if _, err = k.Write(data); err != nil {
		k.Close()
		return err
	}
	return k.Close()
}

func (cfg Config) Record(t testing.TB, hint string, subj io.Reader) {
	t.Helper()
	reffile := cfg.RefFileName(t, hint)
	if _, err := os.Stat(reffile); !errors.Is(err, os.ErrNotExist) && !cfg.RecordOverwrite {
		t.Fatalf("tapesting: reference tape '%s' already exists", reffile)
	}
	dir := filepath.Dir(reffile)
	if err := os.MkdirAll(dir, 0777); err != nil {
		t.Fatal(err)
	}
	wr, err := os.Create(reffile)
	if err != nil {
		t.Fatal(err)
	}
	defer wr.Close()
	if _, err = io.Copy(wr, subj); err != nil {
		t.Error(err)
	}
	t.Errorf("tapesting recorder wrote: %s", reffile)
}

// MismatchError reports mismatches to t, at most limit of them if limit > 0.
func MismatchError(t testing.TB, hint string, limit int) tapecmp.MismatchFunc {
	if hint == "" {
		hint = "subject"
	}
	count := 0
	return func(m *tapecmp.Mismatch) {
		count++
		switch {
		case limit > 0 && count > limit:
			return
		case limit > 0 && count == limit:
			defer t.Logf("%s: more mismatches are not reported", hint)
		}
		t.Errorf("%s:%d %s", hint, m.Line, m.Reason())
		t.Logf("  ref   [%s]", strings.TrimRight(m.Ref, "\r\n"))
		t.Logf("  trial [%s]", strings.TrimRight(m.Trial, "\r\n"))
	}
}
