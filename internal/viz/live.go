package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/tleroux/myosim/internal/biomech"
	"github.com/tleroux/myosim/internal/experiment"
	"github.com/tleroux/myosim/internal/integrate"
	"github.com/tleroux/myosim/internal/muscle"
)

const historyCapacity = 120

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Dashboard is the live terminal view of a muscle-driven run: joint angles
// and muscle-length traces updated at the control rate.
type Dashboard struct {
	model   *experiment.Model
	cfg     experiment.Config
	integ   *integrate.Integrator
	states  []*muscle.State
	q       biomech.GeneralizedCoordinates
	qdot    biomech.GeneralizedVelocity
	t       float64
	running bool
	err     error

	lenHist [][]float64 // one trace per muscle
	qHist   []float64   // first joint angle
}

func NewDashboard(model *experiment.Model, stepper integrate.Stepper, cfg experiment.Config) Dashboard {
	states := model.Muscles.StateSet()
	for i, s := range states {
		if i < len(cfg.Excitations) {
			s.Excitation = cfg.Excitations[i]
		}
	}

	return Dashboard{
		model:   model,
		cfg:     cfg,
		integ:   integrate.New(model.Chain, stepper),
		states:  states,
		q:       model.InitQ.Clone(),
		qdot:    make(biomech.GeneralizedVelocity, model.Chain.NbQ()),
		running: true,
		lenHist: make([][]float64, model.Muscles.NbMuscles()),
	}
}

func (d Dashboard) Init() tea.Cmd {
	return d.tick()
}

func (d Dashboard) tick() tea.Cmd {
	interval := time.Duration(d.cfg.ControlDt * float64(time.Second))
	if interval < time.Second/60 {
		interval = time.Second / 60
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case " ":
			d.running = !d.running
		}
	case TickMsg:
		if d.err != nil || d.t >= d.cfg.Duration {
			return d, tea.Quit
		}
		if d.running {
			d.step()
		}
		return d, d.tick()
	}
	return d, nil
}

func (d *Dashboard) step() {
	reg := d.model.Muscles

	adot, err := reg.ActivationDot(d.states, true)
	if err != nil {
		d.err = err
		return
	}
	for i, s := range d.states {
		s.Activation = clamp01(s.Activation + d.cfg.ControlDt*adot[i])
	}

	tau, err := reg.MuscularJointTorqueFromStatesAt(d.states, d.q, d.qdot)
	if err != nil {
		d.err = err
		return
	}

	if err := d.integ.Integrate(context.Background(), d.q, d.qdot, tau, d.t, d.t+d.cfg.ControlDt, d.cfg.Dt); err != nil {
		d.err = err
		return
	}
	last := d.integ.Steps() - 1
	if d.q, err = d.integ.GetX(last); err != nil {
		d.err = err
		return
	}
	if d.qdot, err = d.integ.GetXDot(last); err != nil {
		d.err = err
		return
	}
	d.t += d.cfg.ControlDt

	for i, m := range reg.Muscles() {
		d.lenHist[i] = appendCapped(d.lenHist[i], m.Length())
	}
	d.qHist = appendCapped(d.qHist, d.q[0])
}

func (d Dashboard) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  t=%.2fs / %.2fs", d.model.Name, d.t, d.cfg.Duration)))
	b.WriteString("\n")

	if len(d.qHist) > 1 {
		graph := asciigraph.Plot(d.qHist,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("q0 (rad)"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if len(d.lenHist) > 0 && len(d.lenHist[0]) > 1 {
		graph := asciigraph.PlotMany(d.lenHist,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("muscle lengths (m)"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	var stats strings.Builder
	for i, name := range d.model.Muscles.MuscleNames() {
		stats.WriteString(labelStyle.Render(name))
		stats.WriteString(valueStyle.Render(fmt.Sprintf("a=%.2f", d.states[i].Activation)))
		stats.WriteString("\n")
	}
	b.WriteString(statsStyle.Render(stats.String()))

	if d.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("error: %v", d.err)))
	}

	b.WriteString(helpStyle.Render("\nspace pause · q quit"))
	return b.String()
}

// RunLive runs a dashboard-driven simulation until completion or quit.
func RunLive(model *experiment.Model, stepper integrate.Stepper, cfg experiment.Config) error {
	p := tea.NewProgram(NewDashboard(model, stepper, cfg))
	_, err := p.Run()
	return err
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
