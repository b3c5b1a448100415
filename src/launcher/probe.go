// Package launcher prepares the workspace and starts the game.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"ai_detective/src/logger"
)

var ErrRequiredToolMissing = errors.New("required tool missing")

// Probe looks for an external tool on PATH
type Probe struct {
	Name           string
	Command        string
	VersionArgs    []string
	VersionPattern string
	Required       bool
	Hint           string
}

type ProbeResult struct {
	Name    string
	Found   bool
	Path    string
	Version string
	Err     error
}

// ProbeTool finds p.Command on PATH and, when asked, reads its version.
// Only a missing required tool is an error.
func ProbeTool(ctx context.Context, p Probe) (ProbeResult, error) {
	result := ProbeResult{Name: p.Name}

	path, err := exec.LookPath(p.Command)
	if err != nil {
		if p.Required {
			result.Err = fmt.Errorf("%w: %s (%s)", ErrRequiredToolMissing, p.Name, p.Command)
			return result, result.Err
		}
		logger.Warn().Str("tool", p.Name).Str("hint", p.Hint).Msg("Optional tool not found")
		return result, nil
	}
	result.Found = true
	result.Path = path

	if len(p.VersionArgs) == 0 {
		return result, nil
	}

	out, err := exec.CommandContext(ctx, path, p.VersionArgs...).CombinedOutput()
	if err != nil {
		result.Err = fmt.Errorf("%s %s failed: %w", p.Command, strings.Join(p.VersionArgs, " "), err)
		logger.Warn().Err(err).Str("tool", p.Name).Msg("Could not read tool version")
		return result, nil
	}
	result.Version = matchVersion(p.VersionPattern, string(out))

	logger.Debug().Str("tool", p.Name).Str("path", path).Str("version", result.Version).Msg("Tool found")
	return result, nil
}

// matchVersion returns the first capture group of pattern, the whole match
// without one, or the first output line when there is no pattern.
func matchVersion(pattern, output string) string {
	if pattern == "" {
		line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
		return strings.TrimSpace(line)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid version pattern")
		return ""
	}
	m := re.FindStringSubmatch(output)
	switch {
	case m == nil:
		return ""
	case len(m) > 1:
		return m[1]
	default:
		return m[0]
	}
}

// CheckRequirements stops at the first missing required tool
func CheckRequirements(ctx context.Context, probes []Probe) ([]ProbeResult, error) {
	results := make([]ProbeResult, 0, len(probes))
	for _, p := range probes {
		p.Required = true
		result, err := ProbeTool(ctx, p)
		results = append(results, result)
		if err != nil {
			if p.Hint != "" {
				err = fmt.Errorf("%w. %s", err, p.Hint)
			}
			return results, Fail(ExitFailure, err)
		}
	}
	return results, nil
}

// ProbeOptional never fails. Missing tools are reported as warnings.
func ProbeOptional(ctx context.Context, probes []Probe) ([]ProbeResult, []string) {
	var (
		results  []ProbeResult
		warnings []string
	)
	for _, p := range probes {
		p.Required = false
		result, _ := ProbeTool(ctx, p)
		results = append(results, result)
		if !result.Found {
			msg := p.Name + " not found"
			if p.Hint != "" {
				msg = p.Hint
			}
			warnings = append(warnings, msg)
		}
	}
	return results, warnings
}
