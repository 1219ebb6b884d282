package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"breachsim/internal/app"
	"breachsim/internal/engine"
	"breachsim/internal/logging"
	"breachsim/internal/outputter"
	"breachsim/internal/report"
)

type runFlags struct {
	scenarioPath string
	topologyPath string
	seed         int64
	tickDelay    float64
	quiet        bool
	resultsDir   string
	s3Bucket     string
	s3Prefix     string
	metricsOut   string
	runs         int
	workers      int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}

type logFlags struct {
	debug bool
	level string
	plain bool
}

func newRootCmd(ctx context.Context) *cobra.Command {
	var lf logFlags

	rootCmd := &cobra.Command{
		Use:   "breachsim",
		Short: "Breach Simulator - probabilistic attack scenario engine",
		Long:  "Simulates attacker progression through a network of nodes and security controls",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(cmd, lf)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&lf.debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.PersistentFlags().StringVar(&lf.level, "log-level", envOr("BREACHSIM_LOG_LEVEL", "warn"), "Minimum log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&lf.plain, "log-plain", false, "Write plain log lines instead of JSON")

	// Load .env file if present so it can supply flag defaults
	_ = godotenv.Load()

	rootCmd.AddCommand(newRunCmd(ctx), newBatchCmd(ctx), newValidateCmd())
	return rootCmd
}

// configureLogging sends log output to the command's error writer. --debug
// takes precedence over --log-level.
func configureLogging(cmd *cobra.Command, lf logFlags) {
	logging.SetOutput(cmd.ErrOrStderr())
	logging.SetStructured(!lf.plain)
	logging.SetLogLevel(logging.ParseLogLevel(lf.level))
	if lf.debug {
		logging.SetLogLevel(logging.LogLevelDebug)
		fmt.Fprintln(cmd.OutOrStdout(), "\n🔍 Debug logging: ENABLED")
	}
}

func addInputFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.scenarioPath, "scenario", "", "Scenario YAML file (default: embedded demo)")
	cmd.Flags().StringVar(&f.topologyPath, "topology", "", "Topology YAML file (default: embedded demo)")
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	addInputFlags(cmd, f)
	cmd.Flags().Int64Var(&f.seed, "seed", engine.DefaultSeed, "Random seed")
	cmd.Flags().Float64Var(&f.tickDelay, "tick-delay", -1, "Seconds between steps; negative uses the scenario timeline")
	cmd.Flags().StringVar(&f.resultsDir, "results-dir", envOr("BREACHSIM_RESULTS_DIR", report.DefaultResultsDir), "Directory for JSON reports")
	cmd.Flags().StringVar(&f.s3Bucket, "s3-bucket", os.Getenv("BREACHSIM_S3_BUCKET"), "Also upload reports to this S3 bucket")
	cmd.Flags().StringVar(&f.s3Prefix, "s3-prefix", os.Getenv("BREACHSIM_S3_PREFIX"), "Key prefix for S3 uploads")
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "Write Prometheus metrics to this textfile")
}

func newRunCmd(ctx context.Context) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario once and print its trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := app.NewSimulator(ctx, f.config(), app.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return fmt.Errorf("error initializing simulator: %w", err)
			}
			_, err = sim.Run(ctx)
			return err
		},
	}
	addRunFlags(cmd, &f)
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "Do not stream the trace while running")
	return cmd
}

func newBatchCmd(ctx context.Context) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a scenario many times and summarize the outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := app.NewSimulator(ctx, f.config(), app.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return fmt.Errorf("error initializing simulator: %w", err)
			}
			_, err = sim.Batch(ctx, f.runs)
			return err
		},
	}
	addRunFlags(cmd, &f)
	cmd.Flags().IntVar(&f.runs, "runs", 1000, "Number of runs")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Worker goroutines (default: GOMAXPROCS)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check scenario and topology files without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, warnings, err := app.ValidateFiles(f.scenarioPath, f.topologyPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, outputter.FormatScenario(sc))
			fmt.Fprint(out, outputter.FormatWarnings(warnings))
			return nil
		},
	}
	addInputFlags(cmd, &f)
	return cmd
}

func (f runFlags) config() app.Config {
	cfg := app.Config{
		ScenarioPath: f.scenarioPath,
		TopologyPath: f.topologyPath,
		Seed:         f.seed,
		Quiet:        f.quiet,
		ResultsDir:   f.resultsDir,
		S3Bucket:     f.s3Bucket,
		S3Prefix:     f.s3Prefix,
		MetricsOut:   f.metricsOut,
		Workers:      f.workers,
	}
	if f.tickDelay >= 0 {
		d := time.Duration(f.tickDelay * float64(time.Second))
		cfg.TickDelay = &d
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
