// Package main provides the burstdemo CLI, which floods a log throttle with
// repeated warnings from concurrent goroutines and reports how many reached
// the log.
//
// Usage:
//
//	burstdemo run --workers 8 --visits 1000 --types 3 --distance 5ms --pause 1ms
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"

	"github.com/Sokol111/logthrottle/internal/burst"
	"github.com/Sokol111/logthrottle/pkg/core"
	"github.com/Sokol111/logthrottle/pkg/core/logger"
	"github.com/Sokol111/logthrottle/pkg/logthrottle"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "burstdemo",
		Short:   "Drive bursts of repeated log messages through a log throttle",
		Version: version,
	}

	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

type runFlags struct {
	burst      burst.Config
	distance   time.Duration
	configFile string
	timeout    time.Duration
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{burst: burst.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one burst and print a summary",
		Long: `Run one burst and print a summary.

Each worker logs --visits warnings spread over --types message types. Repeats
of a type closer than --distance apart are suppressed; the next written entry
carries the number of visits it stands for.

Example:
  burstdemo run --workers 8 --visits 1000 --types 3 --distance 5ms --pause 1ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBurst(cmd.Context(), cmd.OutOrStdout(), flags, cmd.Flags().Changed("distance"))
		},
	}

	cmd.Flags().IntVarP(&flags.burst.Workers, "workers", "w", flags.burst.Workers, "Number of concurrent goroutines")
	cmd.Flags().IntVarP(&flags.burst.Visits, "visits", "n", flags.burst.Visits, "Warnings logged by each goroutine")
	cmd.Flags().IntVarP(&flags.burst.Types, "types", "t", flags.burst.Types, "Number of distinct message types")
	cmd.Flags().DurationVar(&flags.burst.Pause, "pause", flags.burst.Pause, "Delay between two warnings of one goroutine")
	cmd.Flags().BoolVar(&flags.burst.Errors, "errors", false, "Classify every fourth warning by its error instead of a string key")
	cmd.Flags().DurationVarP(&flags.distance, "distance", "d", logthrottle.DefaultMinRepeatingDistance, "Minimum repeating distance of the throttle")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "Config file with logger and logthrottle sections")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", time.Minute, "Abort the burst after this long")

	return cmd
}

func runBurst(ctx context.Context, out io.Writer, flags *runFlags, distanceSet bool) error {
	if err := flags.burst.Validate(); err != nil {
		return fmt.Errorf("invalid burst: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var job *burst.Job
	app := fx.New(
		core.NewCoreModule(coreOptions(flags, distanceSet)...),
		burst.NewModule(flags.burst),
		fx.Populate(&job),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, flags.timeout)
	defer cancelWait()
	summary, summaryErr := job.Summary(waitCtx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	if summaryErr != nil {
		return fmt.Errorf("burst did not finish: %w", summaryErr)
	}

	printSummary(out, summary)
	return nil
}

func coreOptions(flags *runFlags, distanceSet bool) []core.Option {
	opts := []core.Option{core.WithoutEnvFile()}

	if flags.configFile == "" {
		opts = append(opts,
			core.WithoutConfigFile(),
			core.WithLoggerConfig(logger.Config{
				Level:           zapcore.InfoLevel,
				Development:     true,
				StacktraceLevel: zapcore.ErrorLevel,
			}),
			core.WithThrottleConfig(throttleConfig(flags.distance)),
		)
		return opts
	}

	opts = append(opts, core.WithConfigFile(flags.configFile))
	if distanceSet {
		opts = append(opts, core.WithThrottleConfig(throttleConfig(flags.distance)))
	}
	return opts
}

func throttleConfig(distance time.Duration) logthrottle.Config {
	cfg := logthrottle.DefaultConfig()
	cfg.MinRepeatingDistance = distance
	cfg.CountFields = true
	return cfg
}

func printSummary(out io.Writer, s burst.Summary) {
	fmt.Fprintf(out, "visits:     %d\n", s.Visits)
	fmt.Fprintf(out, "emitted:    %d\n", s.Emitted)
	fmt.Fprintf(out, "suppressed: %d\n", s.Suppressed)
	fmt.Fprintf(out, "types:      %d\n", s.Keys)
	fmt.Fprintf(out, "elapsed:    %s\n", s.Elapsed.Round(time.Millisecond))
}
