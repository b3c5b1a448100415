package launcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProbeConfig describes one external tool in detective.yaml
type ProbeConfig struct {
	Name           string   `yaml:"name"`
	Command        string   `yaml:"command"`
	VersionArgs    []string `yaml:"version_args"`
	VersionPattern string   `yaml:"version_pattern"`
	Hint           string   `yaml:"hint"`
}

// HookConfig is an extra command run before the game starts
type HookConfig struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
}

// FileConfig represents the structure of detective.yaml
type FileConfig struct {
	Required []ProbeConfig `yaml:"required"`
	Optional []ProbeConfig `yaml:"optional"`
	Hooks    []HookConfig  `yaml:"hooks"`
	Assets   struct {
		Skip bool `yaml:"skip"`
	} `yaml:"assets"`
	Verify struct {
		Skip bool `yaml:"skip"`
	} `yaml:"verify"`
}

// DefaultFileConfig probes for the GPU toolchain and the local model server
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Optional: []ProbeConfig{
			{
				Name:           "cuda",
				Command:        "nvcc",
				VersionArgs:    []string{"--version"},
				VersionPattern: `release ([0-9.]+)`,
				Hint:           "No CUDA toolkit found, the model will run on CPU",
			},
			{
				Name:    "ollama",
				Command: "ollama",
				Hint:    "Ollama not found. Install it from https://ollama.com or enable API mode in ai_settings.json",
			},
		},
	}
}

// LoadFileConfig reads detective.yaml. A missing file yields the defaults,
// and keys present in the file replace their default.
func LoadFileConfig(path string) (FileConfig, error) {
	config := DefaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("error parsing YAML: %w", err)
	}
	return config, nil
}

// Probes converts the configured tools into probes
func (c FileConfig) Probes() (required, optional []Probe) {
	for _, p := range c.Required {
		required = append(required, p.probe(true))
	}
	for _, p := range c.Optional {
		optional = append(optional, p.probe(false))
	}
	return required, optional
}

func (p ProbeConfig) probe(required bool) Probe {
	name := p.Name
	if name == "" {
		name = p.Command
	}
	return Probe{
		Name:           name,
		Command:        p.Command,
		VersionArgs:    p.VersionArgs,
		VersionPattern: p.VersionPattern,
		Required:       required,
		Hint:           p.Hint,
	}
}
