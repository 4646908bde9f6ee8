package survey

import "time"

// FinishGate holds back a "finish" action until the applicant has spent
// MinimumDwell on the final screen.
type FinishGate struct {
	MinimumDwell time.Duration
	arrivedAt    time.Time
}

func NewFinishGate(minimumDwellSeconds int) *FinishGate {
	if minimumDwellSeconds < 0 {
		minimumDwellSeconds = 0
	}
	return &FinishGate{MinimumDwell: time.Duration(minimumDwellSeconds) * time.Second}
}

// Arrive starts the countdown. Calling it again restarts it.
func (g *FinishGate) Arrive(now time.Time) {
	g.arrivedAt = now
}

func (g *FinishGate) Arrived() bool {
	return !g.arrivedAt.IsZero()
}

func (g *FinishGate) Remaining(now time.Time) time.Duration {
	if !g.Arrived() {
		return g.MinimumDwell
	}
	left := g.arrivedAt.Add(g.MinimumDwell).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (g *FinishGate) CanFinish(now time.Time) bool {
	return g.Arrived() && g.Remaining(now) == 0
}
