package launcher

import (
	"context"
	"fmt"
	"time"

	"ai_detective/src/logger"
)

// Reporter shows launcher progress to the player
type Reporter interface {
	Step(name string)
	Info(msg string)
	Warn(msg string)
	Done(name string, elapsed time.Duration)
}

// Run carries what the steps share
type Run struct {
	Workspace     Workspace
	Config        FileConfig
	Version       string
	Hidden        bool
	OllamaHost    string
	HealthTimeout time.Duration
	Reporter      Reporter

	// Installed is set when this run created the workspace
	Installed bool
	Probes    []ProbeResult
	Checks    []Check
	Warnings  []string
}

func (r *Run) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.Reporter.Warn(msg)
}

// Step is a single stage of the launch sequence
type Step interface {
	Name() string
	Run(ctx context.Context, run *Run) error
}

// Pipeline runs steps in order and stops at the first failure
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Add(step Step) error {
	if step == nil {
		return fmt.Errorf("step cannot be nil")
	}
	if step.Name() == "" {
		return fmt.Errorf("step name cannot be empty")
	}
	p.steps = append(p.steps, step)
	return nil
}

// Names lists the steps in execution order
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Execute runs every step. The returned error keeps the failing step's exit code.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	if run.Reporter == nil {
		run.Reporter = LogReporter{}
	}
	start := time.Now()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return Fail(ExitFailure, err)
		}

		stepStart := time.Now()
		run.Reporter.Step(step.Name())
		logger.Debug().Str("step", step.Name()).Msg("Executing step")

		if err := step.Run(ctx, run); err != nil {
			logger.Error().Err(err).Str("step", step.Name()).Int("exit_code", ExitCode(err)).Msg("Step failed")
			return &ExitError{Code: ExitCode(err), Err: fmt.Errorf("%s: %w", step.Name(), err)}
		}
		run.Reporter.Done(step.Name(), time.Since(stepStart))
	}

	logger.Info().Dur("duration", time.Since(start)).Int("warnings", len(run.Warnings)).Msg("Launch sequence completed")
	return nil
}

// LogReporter writes progress to the log only, for the hidden launcher
type LogReporter struct{}

func (LogReporter) Step(name string) {
	log := logger.Component("launcher")
	log.Info().Str("step", name).Msg("Starting")
}

func (LogReporter) Info(msg string) {
	log := logger.Component("launcher")
	log.Info().Msg(msg)
}

func (LogReporter) Warn(msg string) {
	log := logger.Component("launcher")
	log.Warn().Msg(msg)
}

func (LogReporter) Done(name string, elapsed time.Duration) {
	log := logger.Component("launcher")
	log.Debug().Str("step", name).Dur("elapsed", elapsed).Msg("Done")
}
