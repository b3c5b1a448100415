package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"ai_detective/src/casefile"
	"ai_detective/src/logger"
)

// RequirementsStep fails before anything is installed when a required tool is missing
type RequirementsStep struct{}

func (RequirementsStep) Name() string { return "requirements" }

func (RequirementsStep) Run(ctx context.Context, run *Run) error {
	required, _ := run.Config.Probes()
	results, err := CheckRequirements(ctx, required)
	run.Probes = append(run.Probes, results...)
	if err != nil {
		return err
	}
	for _, r := range results {
		run.Reporter.Info(fmt.Sprintf("%s found at %s %s", r.Name, r.Path, r.Version))
	}
	return nil
}

// WorkspaceStep creates the workspace on first run
type WorkspaceStep struct {
	Install Installer
}

func (WorkspaceStep) Name() string { return "workspace" }

func (s WorkspaceStep) Run(ctx context.Context, run *Run) error {
	install := s.Install
	if install == nil {
		install = DefaultInstaller
	}
	created, err := run.Workspace.Prepare(ctx, run.Version, install)
	if err != nil {
		return err
	}
	run.Installed = created
	if created {
		run.Reporter.Info("Workspace created at " + run.Workspace.Dir)
	} else {
		run.Reporter.Info("Using workspace " + run.Workspace.Dir)
	}
	return nil
}

// OptionalToolsStep looks for the GPU toolchain and the model server. It never fails.
type OptionalToolsStep struct{}

func (OptionalToolsStep) Name() string { return "optional tools" }

func (OptionalToolsStep) Run(ctx context.Context, run *Run) error {
	_, optional := run.Config.Probes()
	results, warnings := ProbeOptional(ctx, optional)
	run.Probes = append(run.Probes, results...)
	for _, r := range results {
		if r.Found {
			msg := r.Name + " found"
			if r.Version != "" {
				msg += " (version " + r.Version + ")"
			}
			run.Reporter.Info(msg)
		}
	}
	for _, w := range warnings {
		run.warn(w)
	}
	return nil
}

// AssetsStep regenerates the static assets in the workspace
type AssetsStep struct{}

func (AssetsStep) Name() string { return "assets" }

func (AssetsStep) Run(_ context.Context, run *Run) error {
	if run.Config.Assets.Skip {
		return nil
	}
	db, err := casefile.Load(run.Workspace.DatabasePath())
	if err != nil {
		return Fail(ExitFailure, err)
	}
	written, err := GenerateAssets(run.Workspace.AssetsDir(), db)
	if err != nil {
		return Fail(ExitFailure, err)
	}
	run.Reporter.Info(fmt.Sprintf("%d asset files written", len(written)))
	return nil
}

// VerifyStep runs the doctor checks
type VerifyStep struct{}

func (VerifyStep) Name() string { return "verify" }

func (VerifyStep) Run(ctx context.Context, run *Run) error {
	if run.Config.Verify.Skip {
		return nil
	}
	run.Checks = Doctor(ctx, DoctorOptions{
		Workspace:     run.Workspace,
		OllamaHost:    run.OllamaHost,
		HealthTimeout: run.HealthTimeout,
	})
	for _, c := range run.Checks {
		if c.Status == CheckWarn {
			run.warn(c.Name + ": " + c.Detail)
		}
	}
	if failed, ok := Failed(run.Checks); ok {
		return Fail(ExitFailure, fmt.Errorf("setup verification failed: %s: %s", failed.Name, failed.Detail))
	}
	return nil
}

// HooksStep runs the extra commands from detective.yaml. A failing hook's
// exit code becomes the launcher's.
type HooksStep struct{}

func (HooksStep) Name() string { return "hooks" }

func (HooksStep) Run(ctx context.Context, run *Run) error {
	for _, h := range run.Config.Hooks {
		if err := runHook(ctx, run, h); err != nil {
			return err
		}
	}
	return nil
}

func runHook(ctx context.Context, run *Run, h HookConfig) error {
	name := h.Name
	if name == "" {
		name = h.Command
	}
	cmd := exec.CommandContext(ctx, h.Command, h.Args...)
	cmd.Dir = h.Dir
	if cmd.Dir == "" {
		cmd.Dir = run.Workspace.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		logger.Debug().Str("hook", name).Str("output", strings.TrimSpace(string(out))).Msg("Hook output")
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Fail(exitErr.ExitCode(), fmt.Errorf("hook %s exited with %d", name, exitErr.ExitCode()))
		}
		return Fail(ExitFailure, fmt.Errorf("hook %s: %w", name, err))
	}
	run.Reporter.Info("hook " + name + " completed")
	return nil
}

// LaunchStep hands over to the game
type LaunchStep struct {
	Start func(ctx context.Context, run *Run) error
}

func (LaunchStep) Name() string { return "launch" }

func (s LaunchStep) Run(ctx context.Context, run *Run) error {
	if s.Start == nil {
		return nil
	}
	return s.Start(ctx, run)
}

// StandardPipeline is the full launch sequence
func StandardPipeline(start func(ctx context.Context, run *Run) error) *Pipeline {
	return NewPipeline(
		RequirementsStep{},
		WorkspaceStep{},
		OptionalToolsStep{},
		AssetsStep{},
		VerifyStep{},
		HooksStep{},
		LaunchStep{Start: start},
	)
}

// HiddenPipeline skips setup and only launches. Without a workspace it falls
// back to the standard sequence so the first run still bootstraps.
func HiddenPipeline(ws Workspace, start func(ctx context.Context, run *Run) error) *Pipeline {
	if !ws.Ready() {
		logger.Warn().Str("dir", ws.Dir).Msg("Workspace missing, falling back to the standard launcher")
		return StandardPipeline(start)
	}
	return NewPipeline(LaunchStep{Start: start})
}
