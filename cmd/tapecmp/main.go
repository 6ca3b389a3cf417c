// A command line tool to check simulation output tapes against reference tapes
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fractalqb/tapecmp/config"
	"github.com/fractalqb/tapecmp/oracle"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

var rootCmd = struct {
	cobra.Command
	cfgFile string
	verbose bool
	noColor bool
	noDate  bool
	profDir string
	vpr     *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
	logOut  zapcore.WriteSyncer
	prof    interface{ Stop() }
}{
	Command: cobra.Command{
		Use:   "tapecmp",
		Short: "Check simulation output tapes against reference tapes",
		Long: `Lines of a trial tape match the reference line if all floating point
numbers in both lines are equal within tolerance. Lines without numbers
must be equal. Dates like 01/02/23 are masked before comparison.

Settings are read from tapecmp.yaml, TAPECMP_* environment variables and
flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	},
	logOut: zapcore.Lock(os.Stderr),
}

func init() {
	rootCmd.vpr = config.New()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootCmd.cfgFile, "config", "c", "", "Read settings from YAML file")
	pf.BoolVarP(&rootCmd.verbose, "verbose", "v", false, "Log debug messages")
	pf.BoolVar(&rootCmd.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&rootCmd.noDate, "no-date-mask", false, "Compare dates literally")
	pf.StringVar(&rootCmd.profDir, "cpuprofile", "", "Write a CPU profile to `dir`")
	pf.Float64("relative", 0, "Set relative tolerance")
	pf.Float64("absolute", 0, "Set absolute tolerance")
	rootCmd.vpr.BindPFlag("tolerance.relative", pf.Lookup("relative"))
	rootCmd.vpr.BindPFlag("tolerance.absolute", pf.Lookup("absolute"))
	rootCmd.PersistentPreRunE = setup
}

func setup(cmd *cobra.Command, args []string) (err error) {
	if rootCmd.noColor {
		color.NoColor = true
	}
	if rootCmd.profDir != "" {
		rootCmd.prof = profile.Start(
			profile.CPUProfile,
			profile.ProfilePath(rootCmd.profDir),
			profile.NoShutdownHook,
			profile.Quiet,
		)
	}
	if rootCmd.log, err = initLogger(rootCmd.logOut, rootCmd.verbose); err != nil {
		return err
	}
	if rootCmd.noDate {
		rootCmd.vpr.Set("date_mask", false)
	}
	rootCmd.cfg, err = config.Load(rootCmd.vpr, rootCmd.cfgFile)
	if err != nil {
		return err
	}
	if f := rootCmd.vpr.ConfigFileUsed(); f != "" {
		rootCmd.log.Debug("config loaded", zap.String("file", f))
	}
	return nil
}

// initLogger creates a colored console logger on out, normally stderr. Stdout
// is reserved for reports.
func initLogger(out zapcore.WriteSyncer, verbose bool) (*zap.Logger, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if color.NoColor {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		out,
		level,
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.DPanicLevel)), nil
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if rootCmd.prof != nil {
		rootCmd.prof.Stop()
	}
	if rootCmd.log != nil {
		defer rootCmd.log.Sync()
	}
	if err != nil && !errors.Is(err, oracle.ErrMismatch) {
		fmt.Fprintln(os.Stderr, failColor.Sprint("error:"), err)
	}
	return oracle.ExitCode(err)
}
