package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 0.001
	DefaultControlDt = 0.01
	DefaultDuration  = 2.0
)

type Config struct {
	Model       string    `yaml:"model"`
	Integrator  string    `yaml:"integrator"`
	Dt          float64   `yaml:"dt"`
	ControlDt   float64   `yaml:"control_dt"`
	Duration    float64   `yaml:"duration"`
	Excitations []float64 `yaml:"excitations"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "arm2",
		Integrator: "rk4",
		Dt:         DefaultDt,
		ControlDt:  DefaultControlDt,
		Duration:   DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExcitationsFor pads or truncates the configured excitations to the
// muscle count, defaulting missing entries to a low tonus.
func (c *Config) ExcitationsFor(nbMuscles int) []float64 {
	out := make([]float64, nbMuscles)
	for i := range out {
		if i < len(c.Excitations) {
			out[i] = c.Excitations[i]
		} else {
			out[i] = 0.05
		}
	}
	return out
}
