package oracle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileSet is a set of file names relative to a directory.
type FileSet map[string]struct{}

// Snapshot returns the names of the files in dir that match pattern.
func Snapshot(dir, pattern string) (FileSet, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	res := make(FileSet, len(paths))
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			continue
		}
		res[filepath.Base(p)] = struct{}{}
	}
	return res, nil
}

func (s FileSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Minus returns the sorted names in s that are not in other.
func (s FileSet) Minus(other FileSet) []string {
	var res []string
	for n := range s {
		if !other.Has(n) {
			res = append(res, n)
		}
	}
	slices.Sort(res)
	return res
}

func (s FileSet) Sorted() []string {
	return s.Minus(nil)
}

// Cleanup removes the named files from dir. Missing files are ignored.
func Cleanup(dir string, names []string) error {
	var errs []error
	for _, n := range names {
		err := os.Remove(filepath.Join(dir, n))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IDLen is the number of trailing characters that identify a tape.
const IDLen = 2

// Pair is a reference tape and its trial tape, named relative to the test
// case directory.
type Pair struct {
	Ref, Trial string
}

// TapeID returns the last IDLen characters of a tape name.
func TapeID(name string) (string, error) {
	if len(name) < IDLen {
		return "", fmt.Errorf("tape name '%s' too short for an id", name)
	}
	return name[len(name)-IDLen:], nil
}

// Pairs finds the reference tapes with refPrefix in dir and pairs each one
// with the trial tape trialPrefix+TapeID(reference). Reference names too short
// to carry a tape id are returned as skipped.
func Pairs(dir, refPrefix, trialPrefix string) (pairs []Pair, skipped []string, err error) {
	refs, err := Snapshot(dir, refPrefix+"*")
	if err != nil {
		return nil, nil, err
	}
	for _, ref := range refs.Sorted() {
		if len(ref) < len(refPrefix)+IDLen {
			skipped = append(skipped, ref)
			continue
		}
		id, _ := TapeID(ref)
		pairs = append(pairs, Pair{Ref: ref, Trial: trialPrefix + id})
	}
	return pairs, skipped, nil
}

// Trials finds the trial tapes in dir, i.e. names made of trialPrefix and a
// tape id.
func Trials(dir, trialPrefix string) ([]string, error) {
	ts, err := Snapshot(dir, trialPrefix+strings.Repeat("?", IDLen))
	if err != nil {
		return nil, err
	}
	return ts.Sorted(), nil
}
