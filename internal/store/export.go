package store

import (
	"encoding/json"
	"os"

	"github.com/tleroux/myosim/internal/experiment"
)

type ExportData struct {
	Model       string      `json:"model"`
	Integrator  string      `json:"integrator"`
	Dt          float64     `json:"dt"`
	ControlDt   float64     `json:"control_dt"`
	Duration    float64     `json:"duration"`
	Steps       int         `json:"steps"`
	MuscleNames []string    `json:"muscle_names"`
	Times       []float64   `json:"times"`
	Q           [][]float64 `json:"q"`
	QDot        [][]float64 `json:"qdot"`
	Lengths     [][]float64 `json:"muscle_lengths"`
	Activations [][]float64 `json:"activations"`
	Torques     [][]float64 `json:"torques"`
}

func exportData(cfg experiment.Config, result *experiment.Result) ExportData {
	return ExportData{
		Model:       cfg.Model,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		ControlDt:   cfg.ControlDt,
		Duration:    cfg.Duration,
		Steps:       len(result.Times),
		MuscleNames: result.MuscleNames,
		Times:       result.Times,
		Q:           result.Q,
		QDot:        result.QDot,
		Lengths:     result.Lengths,
		Activations: result.Activations,
		Torques:     result.Torques,
	}
}

func ExportJSON(path string, cfg experiment.Config, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(cfg, result))
}

func ExportJSONStdout(cfg experiment.Config, result *experiment.Result) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(cfg, result))
}
