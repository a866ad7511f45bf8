package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tleroux/myosim/internal/experiment"
)

// Store persists simulation runs: one directory per run holding
// metadata.json and trajectory.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	Timestamp   time.Time `json:"timestamp"`
	Dt          float64   `json:"dt"`
	ControlDt   float64   `json:"control_dt"`
	Duration    float64   `json:"duration"`
	Integrator  string    `json:"integrator"`
	MuscleNames []string  `json:"muscle_names"`
	Excitations []float64 `json:"excitations"`
}

func (s *Store) Save(cfg experiment.Config, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       cfg.Model,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		ControlDt:   cfg.ControlDt,
		Duration:    cfg.Duration,
		Integrator:  cfg.Integrator,
		MuscleNames: result.MuscleNames,
		Excitations: cfg.Excitations,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Times) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range result.Q[0] {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	for i := range result.QDot[0] {
		header = append(header, fmt.Sprintf("qdot%d", i))
	}
	for _, name := range result.MuscleNames {
		header = append(header, "len_"+name)
	}
	for _, name := range result.MuscleNames {
		header = append(header, "act_"+name)
	}
	for i := range result.Torques[0] {
		header = append(header, fmt.Sprintf("tau%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, block := range [][]float64{result.Q[i], result.QDot[i], result.Lengths[i], result.Activations[i], result.Torques[i]} {
			for _, val := range block {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads back the recorded columns of a run: timestamps plus
// every numeric column in file order.
func (s *Store) LoadTrajectory(runID string) ([]float64, [][]float64, []string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil, nil
	}

	header := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}

	return times, rows, header, nil
}
