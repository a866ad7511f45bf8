package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tleroux/myosim/internal/experiment"
)

func testResult() (experiment.Config, *experiment.Result) {
	cfg := experiment.Config{
		Model:       "arm2",
		Integrator:  "rk4",
		Dt:          0.001,
		ControlDt:   0.01,
		Duration:    0.02,
		Excitations: []float64{0.5, 0.1},
	}
	result := &experiment.Result{
		Times:       []float64{0.01, 0.02},
		Q:           [][]float64{{-1.2, 0.6}, {-1.19, 0.61}},
		QDot:        [][]float64{{0, 0}, {0.1, 0.05}},
		Lengths:     [][]float64{{0.11, 0.12}, {0.111, 0.119}},
		Activations: [][]float64{{0.1, 0.02}, {0.15, 0.03}},
		Torques:     [][]float64{{0.5, -0.2}, {0.48, -0.19}},
		MuscleNames: []string{"flexor", "extensor"},
	}
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult()
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "arm2" {
		t.Errorf("expected model arm2, got %s", meta.Model)
	}
	if len(meta.MuscleNames) != 2 {
		t.Errorf("expected 2 muscle names, got %d", len(meta.MuscleNames))
	}
	if meta.Dt != 0.001 {
		t.Errorf("expected dt 0.001, got %f", meta.Dt)
	}
}

func TestStoreLoadTrajectory(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult()
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	times, rows, header, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}

	if len(times) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(times))
	}
	// 2 q + 2 qdot + 2 len + 2 act + 2 tau
	if len(header) != 10 {
		t.Errorf("expected 10 columns, got %d", len(header))
	}
	if len(rows[0]) != 10 {
		t.Errorf("expected 10 values per row, got %d", len(rows[0]))
	}
	if rows[1][0] != -1.19 {
		t.Errorf("expected q0 -1.19 in second row, got %f", rows[1][0])
	}
	if header[0] != "q0" {
		t.Errorf("expected first column q0, got %s", header[0])
	}
	if header[4] != "len_flexor" {
		t.Errorf("expected column len_flexor, got %s", header[4])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := testResult()
	if _, err := st.Save(cfg, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult()
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "trajectory.csv")); os.IsNotExist(err) {
		t.Error("trajectory.csv not created")
	}
}
