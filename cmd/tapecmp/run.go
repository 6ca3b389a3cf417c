package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fractalqb/tapecmp/oracle"
)

func init() {
	runCmd.RunE = runHarness
	runCmd.Flags().StringVarP(&runCmd.summary, "summary", "s", "",
		"Write a YAML summary of the run to `file`")
	runCmd.Flags().BoolVarP(&runCmd.keep, "keep", "k", false,
		"Keep trial tapes, diffs and captured output even if all tapes match")
	rootCmd.AddCommand(&runCmd.Command)
}

var runCmd = struct {
	cobra.Command
	summary string
	keep    bool
}{
	Command: cobra.Command{
		Use:   "run [dir]",
		Short: "Run the simulation in a test case directory and check its tapes",
		Long: `Run the subject with the test case input, then compare every reference
tape with the trial tape of the same number. A diff report is written for
each trial tape that does not match. If all tapes match the files created
by the run are removed.

Exit codes: 0 all tapes match, 99 some tape does not match, the subject's
exit code (or 98) if the subject fails, 1 on other errors.`,
		Args: cobra.MaximumNArgs(1),
	},
}

func newOracle(dir string) (*oracle.Oracle, error) {
	cfg := rootCmd.cfg
	if dir == "" {
		dir = cfg.Dir
	}
	masks, err := cfg.CompileMasks()
	if err != nil {
		return nil, err
	}
	orc := &oracle.Oracle{
		Dir: dir,
		Subject: oracle.Subject{
			Path:   cfg.Subject.Path,
			Args:   cfg.Subject.Args,
			Input:  cfg.Subject.Input,
			Output: cfg.Subject.Output,
			Error:  cfg.Subject.Error,
		},
		RefPrefix:   cfg.Tapes.ReferencePrefix,
		TrialPrefix: cfg.Tapes.TrialPrefix,
		DiffSuffix:  cfg.Tapes.DiffSuffix,
		Keep:        cfg.Tapes.Keep || runCmd.keep,
		Log:         rootCmd.log.Sugar(),
	}
	orc.Compare.Tolerance = cfg.ToleranceValue()
	orc.Compare.Masks = masks
	orc.Compare.Log = rootCmd.log
	return orc, nil
}

func runHarness(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	}
	orc, err := newOracle(dir)
	if err != nil {
		return err
	}
	outcome, err := orc.Check(cmd.Context())
	if outcome == nil {
		return err
	}
	printOutcome(cmd.OutOrStdout(), outcome)
	summary := runCmd.summary
	if summary == "" {
		summary = rootCmd.cfg.Summary
	}
	if summary != "" {
		if serr := outcome.WriteSummaryFile(summary); serr != nil {
			rootCmd.log.Sugar().Errorw("cannot write summary", "file", summary, "error", serr)
			if err == nil {
				err = serr
			}
		}
	}
	return err
}

func printOutcome(w io.Writer, outcome *oracle.Outcome) {
	for _, pr := range outcome.Pairs {
		switch {
		case pr.Err != nil:
			failColor.Fprint(w, "ERROR")
			fmt.Fprintf(w, " %s: %s\n", pr.Trial, pr.Err)
		case pr.Identical:
			passColor.Fprint(w, "PASS")
			fmt.Fprintf(w, " %s identical to %s\n", pr.Trial, pr.Ref)
		case pr.Equivalent():
			passColor.Fprint(w, "PASS")
			fmt.Fprintf(w, " %s matches %s\n", pr.Trial, pr.Ref)
		default:
			failColor.Fprint(w, "FAIL")
			if rep := pr.Report; rep.RefLines != rep.TrialLines {
				fmt.Fprintf(w, " %s: %d lines, %s has %d\n", pr.Trial, rep.TrialLines, pr.Ref, rep.RefLines)
			} else {
				fmt.Fprintf(w, " %s: %d mismatches, see %s\n", pr.Trial, rep.Len(), pr.DiffFile)
			}
		}
	}
	for _, ref := range outcome.Skipped {
		infoColor.Fprint(w, "SKIP")
		fmt.Fprintf(w, " %s has no tape id\n", ref)
	}
	if outcome.Equivalent() {
		passColor.Fprintf(w, "%d tapes match\n", len(outcome.Pairs))
	} else {
		failColor.Fprintf(w, "%d of %d tapes do not match\n", outcome.Failed(), len(outcome.Pairs))
	}
}
