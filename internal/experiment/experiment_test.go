package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tleroux/myosim/internal/experiment"
)

var _ = Describe("Registry", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	It("lists the built-in models", func() {
		Expect(reg.ListModels()).To(ContainElements("arm2", "finger3"))
	})

	It("builds arm2 with two joints and four muscles", func() {
		m, err := reg.GetModel("arm2")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Chain.NbQ()).To(Equal(2))
		Expect(m.Muscles.NbMuscles()).To(Equal(4))
		Expect(m.InitQ).To(HaveLen(2))
	})

	It("builds finger3 with three joints and a routed flexor", func() {
		m, err := reg.GetModel("finger3")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Chain.NbQ()).To(Equal(3))
		Expect(m.Muscles.NbMuscles()).To(Equal(3))

		flexor, err := m.Muscles.Muscle(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(flexor.Nodes())).To(BeNumerically(">", 2))
	})

	It("rejects unknown models and integrators", func() {
		_, err := reg.GetModel("quadruped")
		Expect(err).To(HaveOccurred())

		_, err = reg.GetStepper("leapfrog")
		Expect(err).To(HaveOccurred())
	})

	It("provides every registered stepper", func() {
		for _, name := range reg.ListSteppers() {
			s, err := reg.GetStepper(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).NotTo(BeNil())
		}
	})
})

var _ = Describe("Experiment", func() {
	var (
		reg   *experiment.Registry
		model *experiment.Model
		cfg   experiment.Config
	)

	BeforeEach(func() {
		reg = experiment.NewRegistry()

		var err error
		model, err = reg.GetModel("arm2")
		Expect(err).NotTo(HaveOccurred())

		cfg = experiment.Config{
			Model:       "arm2",
			Integrator:  "rk4",
			Dt:          0.001,
			ControlDt:   0.01,
			Duration:    0.05,
			Excitations: []float64{0.3, 0.05, 0.4, 0.05},
		}
	})

	newExperiment := func() *experiment.Experiment {
		stepper, err := reg.GetStepper(cfg.Integrator)
		Expect(err).NotTo(HaveOccurred())
		return experiment.New(cfg, model, stepper)
	}

	It("records one sample per control step", func() {
		result, err := newExperiment().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Times).To(HaveLen(5))
		Expect(result.Q).To(HaveLen(5))
		Expect(result.QDot).To(HaveLen(5))
		Expect(result.Torques).To(HaveLen(5))
		Expect(result.Lengths).To(HaveLen(5))
		Expect(result.Activations).To(HaveLen(5))
		Expect(result.MuscleNames).To(HaveLen(4))
	})

	It("produces monotonically increasing timestamps", func() {
		result, err := newExperiment().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for i := 1; i < len(result.Times); i++ {
			Expect(result.Times[i]).To(BeNumerically(">", result.Times[i-1]))
		}
	})

	It("keeps activations in the unit interval and lengths positive", func() {
		result, err := newExperiment().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, step := range result.Activations {
			for _, a := range step {
				Expect(a).To(BeNumerically(">=", 0))
				Expect(a).To(BeNumerically("<=", 1))
			}
		}
		for _, step := range result.Lengths {
			for _, l := range step {
				Expect(l).To(BeNumerically(">", 0))
			}
		}
	})

	It("drives activation toward the excitation level", func() {
		result, err := newExperiment().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		last := result.Activations[len(result.Activations)-1]
		// strongly excited muscles end above the weakly excited ones
		Expect(last[0]).To(BeNumerically(">", last[1]))
		Expect(last[2]).To(BeNumerically(">", last[3]))
	})

	It("accumulates the full trajectory in the integrator log", func() {
		exp := newExperiment()
		_, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// 5 control windows, each recording its initial state plus ~10 steps
		Expect(exp.Integrator().Steps()).To(BeNumerically(">=", 55))
		Expect(exp.Integrator().Steps()).To(BeNumerically("<=", 60))
	})

	It("rejects a mismatched excitation vector", func() {
		cfg.Excitations = []float64{0.5}
		_, err := newExperiment().Run(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("rejects non-positive step sizes", func() {
		cfg.Dt = 0
		_, err := newExperiment().Run(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("stops early when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newExperiment().Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
