package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"breachsim/internal/aws"
	"breachsim/internal/batch"
	"breachsim/internal/domain"
	"breachsim/internal/engine"
	"breachsim/internal/logging"
	"breachsim/internal/metrics"
	"breachsim/internal/outputter"
	"breachsim/internal/report"
	"breachsim/internal/scenario"
	"breachsim/internal/topology"
)

// Config holds everything a simulator needs. Empty paths select the
// embedded demo files.
type Config struct {
	ScenarioPath string
	TopologyPath string
	Seed         int64
	TickDelay    *time.Duration // overrides the scenario's delay when non-nil
	Quiet        bool
	ResultsDir   string
	S3Bucket     string
	S3Prefix     string
	MetricsOut   string
	Workers      int
}

// Simulator holds the loaded inputs, the metrics registry and the report
// sinks for one CLI invocation
type Simulator struct {
	cfg      Config
	scenario domain.Scenario
	topology domain.Topology
	metrics  *metrics.Registry
	sink     report.Sink
	out      io.Writer
}

// Option customizes a Simulator
type Option func(*simulatorOptions)

type simulatorOptions struct {
	out      io.Writer
	s3Client report.S3PutObjectAPI
	sink     report.Sink
}

// WithOutput sends summaries and the live trace to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *simulatorOptions) {
		o.out = w
	}
}

// WithS3Client uploads through client instead of a client built from the
// default AWS credential chain. The STS preflight is skipped.
func WithS3Client(client report.S3PutObjectAPI) Option {
	return func(o *simulatorOptions) {
		o.s3Client = client
	}
}

// WithSink replaces the sinks derived from Config
func WithSink(sink report.Sink) Option {
	return func(o *simulatorOptions) {
		o.sink = sink
	}
}

// NewSimulator loads the scenario and topology and wires the report sinks.
// An S3 bucket triggers an STS caller-identity preflight unless a client
// was injected.
func NewSimulator(ctx context.Context, cfg Config, opts ...Option) (*Simulator, error) {
	o := simulatorOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	sc, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	topo, err := topology.Load(cfg.TopologyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load topology: %w", err)
	}

	sim := &Simulator{
		cfg:      cfg,
		scenario: sc,
		topology: topo,
		metrics:  metrics.NewRegistry(),
		sink:     o.sink,
		out:      o.out,
	}

	if sim.sink == nil {
		sim.sink, err = buildSink(ctx, cfg, o.s3Client, o.out)
		if err != nil {
			return nil, err
		}
	}

	for _, w := range scenario.Lint(sc, &topo) {
		logging.LogWarn(w, map[string]interface{}{"scenario": sc.Name})
	}

	return sim, nil
}

func buildSink(ctx context.Context, cfg Config, client report.S3PutObjectAPI, out io.Writer) (report.Sink, error) {
	sinks := report.MultiSink{report.FileSink{Dir: cfg.ResultsDir}}
	if cfg.S3Bucket == "" {
		return sinks, nil
	}

	if client == nil {
		// Preflight: verify AWS credentials work before running anything
		accountID, err := aws.GetAccountID(ctx)
		if err != nil {
			return nil, fmt.Errorf("AWS credential check failed (ensure valid credentials via env vars, IAM role, or SSO): %w", err)
		}
		fmt.Fprintf(out, "🔑 AWS Account: %s\n", accountID)

		s3Client, err := aws.S3Client(ctx)
		if err != nil {
			return nil, err
		}
		client = s3Client
	}

	return append(sinks, report.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix)), nil
}

// Run executes the scenario once, prints a summary, saves the report and
// exports metrics when configured
func (s *Simulator) Run(ctx context.Context) (*report.Report, error) {
	live := s.out
	if s.cfg.Quiet {
		live = io.Discard
	}

	opts := []engine.Option{engine.WithRecorder(s.metrics)}
	if s.cfg.TickDelay != nil {
		opts = append(opts, engine.WithTickDelay(*s.cfg.TickDelay))
	}

	outputter.DisplayHeader(s.out, "🚀 SIMULATION")
	st := engine.NewState(s.topology, engine.WithSeed(s.cfg.Seed), engine.WithOutput(live))

	started := time.Now()
	result := engine.NewInterpreter(opts...).Run(ctx, st, s.scenario)
	finished := time.Now()

	rep := report.NewReport(s.scenario.Name, s.cfg.Seed, st.Tick(), started, finished, result)
	logging.LogRunResult(rep.Scenario, rep.RunID, result.Result, rep.Ticks, len(result.Events))
	fmt.Fprint(s.out, outputter.FormatResult(s.scenario.Name, s.cfg.Seed, st.Tick(), finished.Sub(started), result))

	if err := s.persist(ctx, rep); err != nil {
		return &rep, err
	}
	return &rep, nil
}

// Batch executes runs independent runs, prints the outcome distribution,
// saves the batch report and exports metrics when configured
func (s *Simulator) Batch(ctx context.Context, runs int) (*report.BatchReport, error) {
	runner := batch.NewRunner(
		batch.WithWorkers(s.cfg.Workers),
		batch.WithBaseSeed(s.cfg.Seed),
		batch.WithRecorder(s.metrics),
	)

	started := time.Now()
	b, err := runner.Run(ctx, s.topology, s.scenario, runs)
	if err != nil {
		return nil, fmt.Errorf("batch failed: %w", err)
	}
	finished := time.Now()

	rep := report.NewBatchReport(b, runner.Workers(), started, finished)
	fmt.Fprint(s.out, outputter.FormatBatchSummary(b.Summary, finished.Sub(started)))

	if err := s.persist(ctx, rep); err != nil {
		return &rep, err
	}
	return &rep, nil
}

func (s *Simulator) persist(ctx context.Context, doc report.Document) error {
	outputter.DisplayHeader(s.out, "💾 SAVING RESULTS")

	loc, err := report.Save(ctx, s.sink, doc)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	fmt.Fprintf(s.out, "✓ Saved report to: %s\n", loc)

	if s.cfg.MetricsOut != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsOut); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "✓ Wrote metrics to: %s\n", s.cfg.MetricsOut)
	}
	return nil
}

// ValidateFiles loads both inputs and returns their lint warnings. Load
// errors (including validation failures) are returned as errors.
func ValidateFiles(scenarioPath, topologyPath string) (domain.Scenario, []string, error) {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return domain.Scenario{}, nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	topo, err := topology.Load(topologyPath)
	if err != nil {
		return domain.Scenario{}, nil, fmt.Errorf("failed to load topology: %w", err)
	}

	warnings := append(scenario.Lint(sc, &topo), topology.Lint(topo)...)
	return sc, warnings, nil
}
