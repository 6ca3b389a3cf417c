package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fractalqb/tapecmp"
	"github.com/fractalqb/tapecmp/oracle"
)

func init() {
	compareCmd.RunE = compareFiles
	compareCmd.Flags().StringVarP(&compareCmd.reffile, "reference", "r", "",
		"Set reference tape file name")
	compareCmd.MarkFlagRequired("reference")
	compareCmd.Flags().StringVarP(&compareCmd.diffFile, "diff", "d", "",
		"Write diff reports to `file` instead of stdout")
	compareCmd.Flags().IntVarP(&compareCmd.mlim, "mismatch-limit", "l", 0,
		"Limit the number of mismatches listed per trial")
	rootCmd.AddCommand(&compareCmd.Command)
}

var compareCmd = struct {
	cobra.Command
	reffile  string
	diffFile string
	mlim     int
}{
	Command: cobra.Command{
		Use:   "compare -r reference [trial...]",
		Short: "Compare trial tapes to a reference tape",
		Long: `Compare each trial tape to the reference tape. Without trial files the
trial is read from stdin.`,
	},
}

func newCompare() (*tapecmp.Compare, error) {
	masks, err := rootCmd.cfg.CompileMasks()
	if err != nil {
		return nil, err
	}
	cmpr := &tapecmp.Compare{
		Tolerance: rootCmd.cfg.ToleranceValue(),
		Masks:     masks,
		Log:       rootCmd.log,
	}
	return cmpr, nil
}

func compareFiles(cmd *cobra.Command, files []string) (err error) {
	cmpr, err := newCompare()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	diff := out
	if compareCmd.diffFile != "" {
		df, err := os.Create(compareCmd.diffFile)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := df.Close(); err == nil {
				err = cerr
			}
		}()
		diff = df
	}
	if len(files) == 0 {
		files = []string{"-"}
	}
	failed := 0
	for _, f := range files {
		ok, err := compareTrial(cmpr, out, diff, compareCmd.reffile, f)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d trials: %w", failed, len(files), oracle.ErrMismatch)
	}
	return nil
}

func compareTrial(cmpr *tapecmp.Compare, out, diff io.Writer, ref, trial string) (bool, error) {
	var (
		rep *tapecmp.Report
		err error
	)
	if trial == "-" {
		rep, err = compareStdin(cmpr, ref)
	} else {
		rep, err = cmpr.Files(ref, trial)
	}
	switch {
	case err == nil:
		passColor.Fprint(out, "PASS")
		fmt.Fprintf(out, " %s matches %s within %s\n", trial, ref, cmpr.Tolerance)
		return true, nil
	case !tapecmp.IsMismatch(err):
		return false, err
	}
	failColor.Fprint(out, "FAIL")
	fmt.Fprintf(out, " %s: %s\n", trial, err)
	n := 0
	for m := range rep.Mismatches() {
		if compareCmd.mlim > 0 && n == compareCmd.mlim {
			infoColor.Fprintf(out, "  … %d more\n", rep.Len()-n)
			break
		}
		infoColor.Fprintf(out, "  %s\n", m)
		n++
	}
	if _, err := rep.WriteTo(diff); err != nil {
		return false, err
	}
	return false, nil
}

func compareStdin(cmpr *tapecmp.Compare, ref string) (*tapecmp.Report, error) {
	rf, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer rf.Close()
	rep, err := cmpr.Readers(rf, os.Stdin)
	if rep != nil {
		rep.RefName, rep.TrialName = ref, "stdin"
	}
	return rep, err
}
