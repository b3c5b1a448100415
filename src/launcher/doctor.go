package launcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"ai_detective/src/casefile"
	"ai_detective/src/llm"
	"ai_detective/src/settings"
)

// CheckStatus grades a doctor check
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// DoctorOptions points the checks at a workspace and a model server
type DoctorOptions struct {
	Workspace     Workspace
	OllamaHost    string
	HealthTimeout time.Duration
}

// Doctor verifies the setup. Failures block the launch, warnings do not.
func Doctor(ctx context.Context, opts DoctorOptions) []Check {
	ws := opts.Workspace
	var checks []Check

	checks = append(checks, fileCheck("character database", ws.DatabasePath()))
	if checks[len(checks)-1].Status == CheckOK {
		if _, err := casefile.Load(ws.DatabasePath()); err != nil {
			checks[len(checks)-1] = Check{Name: "character database", Status: CheckFail, Detail: err.Error()}
		}
	}
	checks = append(checks, fileCheck("case summary", ws.CaseSummaryPath()))

	s := settings.Load(ws.SettingsPath())
	if _, err := os.Stat(ws.SettingsPath()); err != nil {
		checks = append(checks, Check{Name: "settings", Status: CheckWarn, Detail: "no " + settings.FileName + ", using defaults"})
	} else if err := s.Validate(); err != nil {
		checks = append(checks, Check{Name: "settings", Status: CheckFail, Detail: err.Error()})
	} else {
		mode := "ollama (" + s.OllamaModel() + ")"
		if s.IsAPIMode() {
			mode = "api (" + s.OpenAIModel + ")"
		}
		checks = append(checks, Check{Name: "settings", Status: CheckOK, Detail: mode})
	}

	if s.IsAPIMode() {
		return checks
	}

	timeout := opts.HealthTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	healthy, msg := llm.CheckOllamaHealth(ctx, opts.OllamaHost, timeout)
	if !healthy {
		checks = append(checks, Check{Name: "ollama", Status: CheckWarn, Detail: msg})
		return checks
	}
	if version, err := llm.OllamaVersion(ctx, opts.OllamaHost); err == nil && version != "" {
		msg = fmt.Sprintf("%s (version %s)", msg, version)
	}
	checks = append(checks, Check{Name: "ollama", Status: CheckOK, Detail: msg})

	pulled, err := llm.ModelPulled(ctx, opts.OllamaHost, s.OllamaModel())
	switch {
	case err != nil:
		checks = append(checks, Check{Name: "model", Status: CheckWarn, Detail: err.Error()})
	case !pulled:
		checks = append(checks, Check{
			Name:   "model",
			Status: CheckWarn,
			Detail: fmt.Sprintf("%s is not pulled, run: ollama pull %s", s.OllamaModel(), s.OllamaModel()),
		})
	default:
		checks = append(checks, Check{Name: "model", Status: CheckOK, Detail: s.OllamaModel()})
	}
	return checks
}

func fileCheck(name, path string) Check {
	if _, err := os.Stat(path); err != nil {
		return Check{Name: name, Status: CheckFail, Detail: "missing " + path}
	}
	return Check{Name: name, Status: CheckOK, Detail: path}
}

// Failed returns the first failed check, if any
func Failed(checks []Check) (Check, bool) {
	for _, c := range checks {
		if c.Status == CheckFail {
			return c, true
		}
	}
	return Check{}, false
}
