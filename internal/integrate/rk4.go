package integrate

type RK4 struct {
	scratch []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make([]float64, n)
	}
}

func (r *RK4) Step(f Derivative, x []float64, t, dt float64) ([]float64, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := f(t, x)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f(t+dt*0.5, r.scratch)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := f(t+dt*0.5, r.scratch)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := f(t+dt, r.scratch)
	if err != nil {
		return nil, err
	}

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}
