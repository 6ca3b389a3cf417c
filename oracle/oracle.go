// Package oracle runs a simulation executable and checks its output tapes
// against reference tapes with tapecmp.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fractalqb/tapecmp"
)

// Exit codes of a harness run
const (
	ExitOK            = 0
	ExitError         = 1
	ExitSubjectFailed = 98
	ExitMismatch      = 99
)

// ErrMismatch is returned when at least one trial tape is not equivalent to
// its reference tape.
var ErrMismatch = errors.New("tapes differ from reference")

// ExitCode maps the result of a run to the process exit code. A failing
// subject keeps its own exit code unless it would be mistaken for success,
// a generic error or a mismatch.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var serr *SubjectError
	if errors.As(err, &serr) {
		switch serr.Code {
		case ExitOK, ExitError, ExitMismatch, -1:
			return ExitSubjectFailed
		}
		return serr.Code
	}
	if errors.Is(err, ErrMismatch) || tapecmp.IsMismatch(err) {
		return ExitMismatch
	}
	return ExitError
}

// Oracle runs the subject in the test case directory Dir and compares the
// trial tapes it writes to the reference tapes found in Dir.
type Oracle struct {
	Dir         string
	Subject     Subject
	RefPrefix   string
	TrialPrefix string
	DiffSuffix  string
	// Keep tapes, diffs and captured output even if all tapes match
	Keep    bool
	Compare tapecmp.Compare
	Log     *zap.SugaredLogger
}

// PairResult is the outcome for one reference tape.
type PairResult struct {
	Pair
	Identical bool
	Report    *tapecmp.Report
	// DiffFile is set if a diff report was written
	DiffFile string
	Err      error
}

func (pr *PairResult) Equivalent() bool {
	if pr.Err != nil {
		return false
	}
	return pr.Identical || (pr.Report != nil && pr.Report.Equivalent())
}

// Outcome collects the results of one harness run.
type Outcome struct {
	Dir     string
	Pairs   []PairResult
	// Skipped reference tapes have no tape id
	Skipped []string
	Removed []string
}

func (o *Outcome) Equivalent() bool {
	for i := range o.Pairs {
		if !o.Pairs[i].Equivalent() {
			return false
		}
	}
	return true
}

func (o *Outcome) Failed() (n int) {
	for i := range o.Pairs {
		if !o.Pairs[i].Equivalent() {
			n++
		}
	}
	return n
}

func (orc *Oracle) log() *zap.SugaredLogger {
	if orc.Log == nil {
		return zap.NewNop().Sugar()
	}
	return orc.Log
}

func (orc *Oracle) path(name string) string {
	return filepath.Join(orc.Dir, name)
}

// Check runs the subject and compares all tapes. If the subject fails no tape
// is compared and the *SubjectError is returned. If any tape mismatches, the
// error wraps ErrMismatch. Files created by the run are removed only if all
// tapes are equivalent.
func (orc *Oracle) Check(ctx context.Context) (*Outcome, error) {
	log := orc.log()
	retained, err := Snapshot(orc.Dir, orc.TrialPrefix+"*")
	if err != nil {
		return nil, err
	}
	subj := orc.Subject
	if subj.Dir == "" {
		subj.Dir = orc.Dir
	}
	log.Infow("run subject", "path", subj.Path, "dir", subj.Dir)
	if err := subj.Run(ctx); err != nil {
		log.Errorw("subject failed", "error", err)
		return nil, err
	}
	pairs, skipped, err := Pairs(orc.Dir, orc.RefPrefix, orc.TrialPrefix)
	if err != nil {
		return nil, err
	}
	for _, ref := range skipped {
		log.Warnw("reference tape without tape id not checked", "ref", ref)
	}
	outcome := &Outcome{
		Dir:     orc.Dir,
		Pairs:   make([]PairResult, len(pairs)),
		Skipped: skipped,
	}
	for i, p := range pairs {
		pr := &outcome.Pairs[i]
		pr.Pair = p
		orc.checkPair(pr)
	}
	if n := outcome.Failed(); n > 0 {
		log.Warnw("tapes differ", "failed", n, "tapes", len(outcome.Pairs))
		return outcome, fmt.Errorf("%d of %d tapes: %w", n, len(outcome.Pairs), ErrMismatch)
	}
	log.Infow("all tapes match", "tapes", len(outcome.Pairs))
	if !orc.Keep {
		if outcome.Removed, err = orc.cleanup(retained); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

func (orc *Oracle) checkPair(pr *PairResult) {
	log := orc.log().With("ref", pr.Ref, "trial", pr.Trial)
	refData, err := os.ReadFile(orc.path(pr.Ref))
	if err != nil {
		pr.Err = err
		log.Errorw("cannot read reference tape", "error", err)
		return
	}
	trialData, err := os.ReadFile(orc.path(pr.Trial))
	if err != nil {
		pr.Err = err
		log.Errorw("cannot read trial tape", "error", err)
		return
	}
	if bytes.Equal(refData, trialData) {
		pr.Identical = true
		log.Debug("identical")
		return
	}
	cmpr := orc.Compare
	if cmpr.Log != nil {
		cmpr.Log = cmpr.Log.With(zap.String("trial", pr.Trial))
	}
	rls, err := tapecmp.ReadLines(bytes.NewReader(refData))
	if err != nil {
		pr.Err = err
		log.Errorw("cannot split reference tape", "error", err)
		return
	}
	tls, err := tapecmp.ReadLines(bytes.NewReader(trialData))
	if err != nil {
		pr.Err = err
		log.Errorw("cannot split trial tape", "error", err)
		return
	}
	rep, err := cmpr.Lines(rls, tls)
	if rep != nil {
		rep.RefName, rep.TrialName = pr.Ref, pr.Trial
	}
	pr.Report = rep
	switch {
	case err == nil:
		log.Info("equivalent within tolerance")
		return
	case !tapecmp.IsMismatch(err):
		pr.Err = err
		log.Errorw("comparison failed", "error", err)
		return
	}
	log.Warnw("not equivalent", "error", err)
	pr.DiffFile = pr.Trial + orc.DiffSuffix
	if werr := writeReport(orc.path(pr.DiffFile), rep); werr != nil {
		pr.Err = werr
		log.Errorw("cannot write diff", "file", pr.DiffFile, "error", werr)
	}
}

func writeReport(file string, rep *tapecmp.Report) (err error) {
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = rep.WriteTo(w)
	return err
}

func (orc *Oracle) cleanup(retained FileSet) ([]string, error) {
	now, err := Snapshot(orc.Dir, orc.TrialPrefix+"*")
	if err != nil {
		return nil, err
	}
	diffs, err := Snapshot(orc.Dir, "*"+orc.DiffSuffix)
	if err != nil {
		return nil, err
	}
	rm := make(FileSet)
	for _, n := range now.Minus(retained) {
		rm[n] = struct{}{}
	}
	for n := range diffs {
		rm[n] = struct{}{}
	}
	for _, f := range []string{orc.Subject.Output, orc.Subject.Error} {
		if f != "" && !filepath.IsAbs(f) {
			rm[f] = struct{}{}
		}
	}
	names := rm.Sorted()
	orc.log().Debugw("cleanup", "files", names)
	return names, Cleanup(orc.Dir, names)
}
