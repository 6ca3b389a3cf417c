package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	recordCmd.RunE = recordTapes
	recordCmd.Flags().BoolVarP(&recordCmd.run, "run", "x", false,
		"Run the subject before recording")
	recordCmd.Flags().BoolVarP(&recordCmd.force, "force", "f", false,
		"Force to overwrite existing reference tapes")
	rootCmd.AddCommand(&recordCmd.Command)
}

var recordCmd = struct {
	cobra.Command
	run   bool
	force bool
}{
	Command: cobra.Command{
		Use:   "record [dir]",
		Short: "Make the current trial tapes the reference tapes",
		Args:  cobra.MaximumNArgs(1),
	},
}

func recordTapes(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	}
	orc, err := newOracle(dir)
	if err != nil {
		return err
	}
	pairs, err := orc.Record(cmd.Context(), recordCmd.run, recordCmd.force)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range pairs {
		infoColor.Fprint(out, "RECORD")
		fmt.Fprintf(out, " %s → %s\n", p.Trial, p.Ref)
	}
	if len(pairs) == 0 {
		fmt.Fprintf(out, "no trial tapes in %s\n", orc.Dir)
	}
	return nil
}
