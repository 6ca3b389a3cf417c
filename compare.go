package tapecmp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// MismatchFunc is called for each mismatching line during comparison.
type MismatchFunc func(m *Mismatch)

// Compare performs the comparison of trial lines against reference lines. A
// zero value is valid for use and requires exact numeric equality. It can be
// reused for more than one comparison. It must not be used concurrently.
type Compare struct {
	// Tolerance for floats embedded in the lines
	Tolerance Tolerance
	// Masks normalize reference and trial lines before they are compared
	Masks []*Mask
	// OnMismatch is called on each detected mismatch
	OnMismatch MismatchFunc
	// Log receives one entry per mismatch. Nil means no logging.
	Log *zap.Logger
}

type MismatchCount int

func (mc MismatchCount) Error() string {
	return fmt.Sprintf("%d mismatches", mc)
}

// LineCountError reports reference and trial with different numbers of
// lines. No line is compared in this case.
type LineCountError struct {
	Ref, Trial int
}

func (e *LineCountError) Error() string {
	return fmt.Sprintf("reference has %d lines, trial has %d", e.Ref, e.Trial)
}

// IsMismatch reports whether err says that reference and trial are not
// equivalent, in contrast to a failure to compare them.
func IsMismatch(err error) bool {
	var mc MismatchCount
	var lce *LineCountError
	return errors.As(err, &mc) || errors.As(err, &lce)
}

func (cmpr *Compare) log() *zap.Logger {
	if cmpr.Log == nil {
		return zap.NewNop()
	}
	return cmpr.Log
}

// Files compares the trial file against the reference file.
func (cmpr *Compare) Files(ref, trial string) (*Report, error) {
	rf, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer rf.Close()
	tf, err := os.Open(trial)
	if err != nil {
		return nil, err
	}
	defer tf.Close()
	rep, err := cmpr.readers(ref, rf, trial, tf)
	if rep != nil {
		rep.RefName, rep.TrialName = ref, trial
	}
	return rep, err
}

func (cmpr *Compare) Readers(ref, trial io.Reader) (*Report, error) {
	return cmpr.readers("", ref, "", trial)
}

func (cmpr *Compare) Strings(ref, trial string) (*Report, error) {
	return cmpr.Readers(strings.NewReader(ref), strings.NewReader(trial))
}

func (cmpr *Compare) readers(rname string, ref io.Reader, tname string, trial io.Reader) (*Report, error) {
	rls, err := ReadLines(ref)
	if err != nil {
		return nil, named(err, rname)
	}
	tls, err := ReadLines(trial)
	if err != nil {
		return nil, named(err, tname)
	}
	return cmpr.Lines(rls, tls)
}

func named(err error, name string) error {
	var rerr *ReadError
	if errors.As(err, &rerr) {
		rerr.Name = name
	}
	return err
}

// Lines compares trial lines against reference lines pairwise. The returned
// error is nil if both are equivalent, a *LineCountError if the number of
// lines differs and MismatchCount if lines mismatch. All lines are compared
// so that the report is complete.
func (cmpr *Compare) Lines(ref, trial []string) (rep *Report, err error) {
	rep = &Report{RefLines: len(ref), TrialLines: len(trial)}
	log := cmpr.log()
	if len(ref) != len(trial) {
		log.Warn("reference and trial have different number of lines",
			zap.Int("ref", len(ref)),
			zap.Int("trial", len(trial)),
		)
		return rep, &LineCountError{Ref: len(ref), Trial: len(trial)}
	}
	if len(cmpr.Masks) > 0 {
		if ref, err = Normalize(ref, cmpr.Masks...); err != nil {
			return nil, fmt.Errorf("reference %w", err)
		}
		if trial, err = Normalize(trial, cmpr.Masks...); err != nil {
			return nil, fmt.Errorf("trial %w", err)
		}
	}
	for i, rl := range ref {
		tl := trial[i]
		if rl == tl {
			continue
		}
		if m := cmpr.line(i+1, rl, tl); m != nil {
			rep.add(m)
			cmpr.logMismatch(log, m)
			if cmpr.OnMismatch != nil {
				cmpr.OnMismatch(m)
			}
		}
	}
	if n := rep.Len(); n > 0 {
		return rep, MismatchCount(n)
	}
	return rep, nil
}

// line compares two lines that are not identical
func (cmpr *Compare) line(lno int, ref, trial string) *Mismatch {
	rfs := AllFloats(ref)
	if len(rfs) == 0 {
		return &Mismatch{Line: lno, Ref: ref, Trial: trial, Kind: TextDiffers}
	}
	tfs := AllFloats(trial)
	m := &Mismatch{
		Line:        lno,
		Ref:         ref,
		Trial:       trial,
		RefFloats:   len(rfs),
		TrialFloats: len(tfs),
	}
	if len(rfs) != len(tfs) {
		m.Kind = FloatCount
		return m
	}
	var errs []error
	for i, rf := range rfs {
		tf := tfs[i]
		rv, rerr := rf.Value()
		tv, terr := tf.Value()
		if rerr != nil || terr != nil {
			errs = append(errs, rerr, terr)
			continue
		}
		if !cmpr.Tolerance.Equal(rv, tv) {
			m.Values = append(m.Values, ValueMismatch{Ref: rf, Trial: tf})
		}
	}
	switch {
	case len(errs) > 0:
		m.Kind = FloatSyntax
		m.Err = errors.Join(errs...)
	case len(m.Values) > 0:
		m.Kind = FloatValues
	default:
		return nil
	}
	return m
}

func (cmpr *Compare) logMismatch(log *zap.Logger, m *Mismatch) {
	switch m.Kind {
	case TextDiffers:
		log.Info("text differs", zap.Int("line", m.Line))
	case FloatCount:
		log.Info("wrong number of floats",
			zap.Int("line", m.Line),
			zap.Int("ref", m.RefFloats),
			zap.Int("trial", m.TrialFloats),
		)
	case FloatValues:
		for _, vm := range m.Values {
			log.Info(vm.String(),
				zap.Int("line", m.Line),
				zap.String("ref", vm.Ref.Text),
				zap.String("trial", vm.Trial.Text),
				zap.Stringer("tolerance", cmpr.Tolerance),
			)
		}
	case FloatSyntax:
		log.Error("unparseable float", zap.Int("line", m.Line), zap.Error(m.Err))
	}
}
