package oracle

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fractalqb/tapecmp"
)

// Verdicts of a tape in the summary
const (
	VerdictIdentical  = "identical"
	VerdictEquivalent = "equivalent"
	VerdictMismatch   = "mismatch"
	VerdictError      = "error"
)

type Summary struct {
	Dir        string        `yaml:"dir"`
	Equivalent bool          `yaml:"equivalent"`
	Tapes      []TapeSummary `yaml:"tapes"`
	Skipped    []string      `yaml:"skipped,omitempty"`
	Removed    []string      `yaml:"removed,omitempty"`
}

type TapeSummary struct {
	Reference  string   `yaml:"reference"`
	Trial      string   `yaml:"trial"`
	Verdict    string   `yaml:"verdict"`
	RefLines   int      `yaml:"ref_lines,omitempty"`
	TrialLines int      `yaml:"trial_lines,omitempty"`
	Mismatches []string `yaml:"mismatches,omitempty"`
	DiffFile   string   `yaml:"diff_file,omitempty"`
	Error      string   `yaml:"error,omitempty"`
}

func (o *Outcome) Summary() *Summary {
	res := &Summary{
		Dir:        o.Dir,
		Equivalent: o.Equivalent(),
		Tapes:      make([]TapeSummary, len(o.Pairs)),
		Skipped:    o.Skipped,
		Removed:    o.Removed,
	}
	for i := range o.Pairs {
		res.Tapes[i] = o.Pairs[i].summary()
	}
	return res
}

func (pr *PairResult) summary() (ts TapeSummary) {
	ts.Reference = pr.Ref
	ts.Trial = pr.Trial
	ts.DiffFile = pr.DiffFile
	if rep := pr.Report; rep != nil {
		ts.RefLines, ts.TrialLines = rep.RefLines, rep.TrialLines
		if rep.RefLines != rep.TrialLines {
			ts.Mismatches = append(ts.Mismatches,
				(&tapecmp.LineCountError{Ref: rep.RefLines, Trial: rep.TrialLines}).Error())
		}
		for m := range rep.Mismatches() {
			ts.Mismatches = append(ts.Mismatches, m.String())
		}
	}
	switch {
	case pr.Err != nil:
		ts.Verdict = VerdictError
		ts.Error = pr.Err.Error()
	case pr.Identical:
		ts.Verdict = VerdictIdentical
	case pr.Equivalent():
		ts.Verdict = VerdictEquivalent
	default:
		ts.Verdict = VerdictMismatch
	}
	return ts
}

// WriteSummary writes the summary of the outcome as YAML.
func (o *Outcome) WriteSummary(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(o.Summary()); err != nil {
		return err
	}
	return enc.Close()
}

func (o *Outcome) WriteSummaryFile(name string) (err error) {
	w, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return o.WriteSummary(w)
}
