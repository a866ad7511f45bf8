package config

var Presets = map[string]map[string]*Config{
	"arm2": {
		"flexion": {
			Model: "arm2", Integrator: "rk4", Dt: 0.001, ControlDt: 0.01, Duration: 2.0,
			Excitations: []float64{0.6, 0.05, 0.7, 0.05},
		},
		"cocontraction": {
			Model: "arm2", Integrator: "rk4", Dt: 0.001, ControlDt: 0.01, Duration: 3.0,
			Excitations: []float64{0.4, 0.4, 0.5, 0.5},
		},
		"relaxed": {
			Model: "arm2", Integrator: "rk45", Dt: 0.002, ControlDt: 0.02, Duration: 5.0,
			Excitations: []float64{0.02, 0.02, 0.02, 0.02},
		},
	},
	"finger3": {
		"grip": {
			Model: "finger3", Integrator: "rk4", Dt: 0.0005, ControlDt: 0.005, Duration: 1.0,
			Excitations: []float64{0.8, 0.6, 0.05},
		},
		"release": {
			Model: "finger3", Integrator: "rk4", Dt: 0.0005, ControlDt: 0.005, Duration: 1.5,
			Excitations: []float64{0.05, 0.05, 0.6},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
