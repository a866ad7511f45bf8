package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/config"
	"github.com/tleroux/myosim/internal/experiment"
	"github.com/tleroux/myosim/internal/integrate"
	"github.com/tleroux/myosim/internal/metrics"
	"github.com/tleroux/myosim/internal/store"
	"github.com/tleroux/myosim/internal/tui"
	"github.com/tleroux/myosim/internal/viz"
)

var (
	dataDir    string
	dt         float64
	controlDt  float64
	duration   float64
	integrator string
	configFile string
	preset     string
	frameRate  int
	column     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "myosim",
		Short: "muscle-driven rigid body simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".myosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a muscle-driven simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")
	runCmd.Flags().Float64Var(&controlDt, "control-dt", config.DefaultControlDt, "muscle control interval")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with a live dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")
	liveCmd.Flags().Float64Var(&controlDt, "control-dt", config.DefaultControlDt, "muscle control interval")
	liveCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	liveCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	traceCmd := &cobra.Command{
		Use:   "trace [model]",
		Short: "run with an ASCII skeleton view",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}
	traceCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration timestep")
	traceCmd.Flags().Float64Var(&controlDt, "control-dt", config.DefaultControlDt, "muscle control interval")
	traceCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	traceCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	traceCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	traceCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "plot only columns whose name contains this")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models and integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			fmt.Println("models:")
			for _, name := range registry.ListModels() {
				m, err := registry.GetModel(name)
				if err != nil {
					return err
				}
				fmt.Printf("  %-10s %d dof, %d muscles\n", name, m.Chain.NbQ(), m.Muscles.NbMuscles())
			}
			fmt.Println("integrators:")
			for _, name := range registry.ListSteppers() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, traceCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, modelsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file and CLI flags (flags win) into a
// run config for the given model.
func resolveConfig(cmd *cobra.Command, model *experiment.Model) (experiment.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model.Name

	if preset != "" {
		p := config.GetPreset(model.Name, preset)
		if p == nil {
			return experiment.Config{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model.Name))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") || preset == "" && configFile == "" {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("control-dt") || preset == "" && configFile == "" {
		cfg.ControlDt = controlDt
	}
	if cmd.Flags().Changed("time") || preset == "" && configFile == "" {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") || preset == "" && configFile == "" {
		cfg.Integrator = integrator
	}

	return experiment.Config{
		Model:       model.Name,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		ControlDt:   cfg.ControlDt,
		Duration:    cfg.Duration,
		Excitations: cfg.ExcitationsFor(model.Muscles.NbMuscles()),
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	model, err := registry.GetModel(args[0])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	stepper, err := registry.GetStepper(cfg.Integrator)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, model, stepper)

	fmt.Printf("running %s simulation...\n", model.Name)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("control steps: %d\n", len(result.Times))
	fmt.Printf("integration steps: %d\n", exp.Integrator().Steps())

	if len(result.Q) > 0 {
		final := result.Q[len(result.Q)-1]
		fmt.Print("final pose:")
		for i, v := range final {
			fmt.Printf(" q%d=%.4f", i, v)
		}
		fmt.Println()

		meter := metrics.NewEnergyMeter(model.Chain)
		if series, err := meter.Series(result.Q, result.QDot); err == nil {
			fmt.Printf("energy drift: %.2e\n", metrics.Drift(series))
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	model, err := registry.GetModel(args[0])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	stepper, err := registry.GetStepper(cfg.Integrator)
	if err != nil {
		return err
	}

	return viz.RunLive(model, stepper, cfg)
}

func runTrace(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	model, err := registry.GetModel(args[0])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	stepper, err := registry.GetStepper(cfg.Integrator)
	if err != nil {
		return err
	}

	renderer := tui.NewLiveRenderer(model, frameRate)
	renderer.Start()
	defer renderer.Stop()

	reg := model.Muscles
	states := reg.StateSet()
	for i, s := range states {
		if i < len(cfg.Excitations) {
			s.Excitation = cfg.Excitations[i]
		}
	}

	integ := integrate.New(model.Chain, stepper)
	q := model.InitQ.Clone()
	qdot := make(biomech.GeneralizedVelocity, model.Chain.NbQ())

	t := 0.0
	wall := time.Now()
	for t < cfg.Duration {
		adot, err := reg.ActivationDot(states, true)
		if err != nil {
			return err
		}
		for i, s := range states {
			s.Activation = clampUnit(s.Activation + cfg.ControlDt*adot[i])
		}

		tau, err := reg.MuscularJointTorqueFromStatesAt(states, q, qdot)
		if err != nil {
			return err
		}

		if err := integ.Integrate(context.Background(), q, qdot, tau, t, t+cfg.ControlDt, cfg.Dt); err != nil {
			return err
		}
		last := integ.Steps() - 1
		if q, err = integ.GetX(last); err != nil {
			return err
		}
		if qdot, err = integ.GetXDot(last); err != nil {
			return err
		}
		t += cfg.ControlDt

		renderer.OnStep(q, t)

		// pace to wall time
		if sleep := time.Duration(t*float64(time.Second)) - time.Since(wall); sleep > 0 {
			time.Sleep(sleep)
		}
	}

	return nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tMUSCLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			len(run.MuscleNames),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, rows, header, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(rows))

	plotted := 0
	maxPlots := 6
	for col, name := range header {
		if column != "" && !strings.Contains(name, column) {
			continue
		}
		if plotted >= maxPlots {
			fmt.Println("(more columns omitted; use --column to select)")
			break
		}

		data := make([]float64, len(rows))
		for i := range rows {
			if col < len(rows[i]) {
				data[i] = rows[i][col]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	times, rows, header, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(append([]string{"time"}, header...)); err != nil {
		return err
	}

	for i := range rows {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range rows[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, rows, header, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	cfg := experiment.Config{
		Model:       meta.Model,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		ControlDt:   meta.ControlDt,
		Duration:    meta.Duration,
		Excitations: meta.Excitations,
	}

	result := rebuildResult(meta, times, rows, header)
	return store.ExportJSONStdout(cfg, result)
}

// rebuildResult splits the flat trajectory columns back into the blocks the
// run recorded, using the column-name prefixes written by Save.
func rebuildResult(meta *store.RunMetadata, times []float64, rows [][]float64, header []string) *experiment.Result {
	var qCols, qdotCols, lenCols, actCols, tauCols []int
	for i, name := range header {
		switch {
		case strings.HasPrefix(name, "qdot"):
			qdotCols = append(qdotCols, i)
		case strings.HasPrefix(name, "q"):
			qCols = append(qCols, i)
		case strings.HasPrefix(name, "len_"):
			lenCols = append(lenCols, i)
		case strings.HasPrefix(name, "act_"):
			actCols = append(actCols, i)
		case strings.HasPrefix(name, "tau"):
			tauCols = append(tauCols, i)
		}
	}

	pick := func(row []float64, cols []int) []float64 {
		out := make([]float64, 0, len(cols))
		for _, c := range cols {
			if c < len(row) {
				out = append(out, row[c])
			}
		}
		return out
	}

	result := &experiment.Result{Times: times, MuscleNames: meta.MuscleNames}
	for _, row := range rows {
		result.Q = append(result.Q, pick(row, qCols))
		result.QDot = append(result.QDot, pick(row, qdotCols))
		result.Lengths = append(result.Lengths, pick(row, lenCols))
		result.Activations = append(result.Activations, pick(row, actCols))
		result.Torques = append(result.Torques, pick(row, tauCols))
	}
	return result
}
