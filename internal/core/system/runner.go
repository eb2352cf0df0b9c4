package system

// Runner executes systems phase by phase each turn. Systems sharing a phase
// run in registration order.
type Runner struct {
	phases [phaseCount][]System
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to its phase. Panics on a phase outside the known set.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic("system: register with unknown phase " + p.String())
	}
	r.phases[p] = append(r.phases[p], s)
}

// Turn runs every registered system once, lowest phase first.
func (r *Runner) Turn(in Input) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(in)
		}
	}
}

// RunPhase 只執行指定 Phase 的 System（測試與除錯用）。
func (r *Runner) RunPhase(phase Phase, in Input) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(in)
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, bucket := range r.phases {
		n += len(bucket)
	}
	return n
}
