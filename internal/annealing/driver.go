package annealing

import (
	"math"
	"time"
)

// TStart and TEnd are the fixed annealing start and end temperatures.
const (
	TStart = 1000.0
	TEnd   = 0.001
)

// Driver runs the simulated-annealing loop against a State, owning the
// one PRNG stream the hot path consumes. The two sex-moves within an
// iteration are always drawn and applied in the same order, males
// first, because that order is part of the PRNG stream and changing it
// changes the run's trajectory.
type Driver struct {
	state        *State
	rng          *RNG
	temp         float64
	tStart, tEnd float64
}

// NewDriver wraps state with a PRNG seeded from the wall clock and a
// fixed sentinel word, cooling from tStart down to tEnd. Callers that
// don't need a configurable schedule can pass TStart/TEnd.
func NewDriver(state *State, tStart, tEnd float64) *Driver {
	return newDriver(state, uint64(time.Now().Unix()), 1234124124, tStart, tEnd)
}

// NewDriverWithSeed is NewDriver with an explicit seed and the fixed
// TStart/TEnd schedule, for reproducible runs and tests.
func NewDriverWithSeed(state *State, a, b uint64) *Driver {
	return newDriver(state, a, b, TStart, TEnd)
}

func newDriver(state *State, a, b uint64, tStart, tEnd float64) *Driver {
	return &Driver{
		state:  state,
		rng:    NewRNG(a, b),
		temp:   tStart,
		tStart: tStart,
		tEnd:   tEnd,
	}
}

// State returns the state this driver mutates.
func (d *Driver) State() *State { return d.state }

// Temperature returns the current annealing temperature.
func (d *Driver) Temperature() float64 { return d.temp }

// Anneal runs n iterations of the cooling schedule. Each iteration
// draws one male candidate swap and one female candidate swap,
// accepts each independently by the Metropolis rule, and then cools
// temp by the geometric factor lambda = (tStart/tEnd)^(1/n), using the
// driver's own start and end temperatures. If
// state.D <= 1 there is no valid non-canonical day and every iteration
// is a no-op beyond cooling.
func (d *Driver) Anneal(n int) {
	if n <= 0 {
		return
	}
	lambda := math.Pow(d.tStart/d.tEnd, 1.0/float64(n))
	for i := 0; i < n; i++ {
		d.step(Male)
		d.step(Female)
		d.temp /= lambda
	}
}

// step draws one candidate swap for sex and accepts or rejects it by
// the Metropolis rule against the driver's current temperature.
func (d *Driver) step(sex Sex) {
	s := d.state
	if s.D <= 1 {
		return
	}

	day := 1 + d.rng.Intn(s.D-1)
	g1 := d.rng.Intn(s.G)
	g2 := d.rng.Intn(s.G)

	n := s.groupSize(sex)
	imm := s.immFor(sex)
	span1 := n - imm[g1]
	span2 := n - imm[g2]
	if span1 <= 0 || span2 <= 0 {
		// SetImmovableM/F reject any non-empty group with no moveable
		// slots, so this only happens for a zero-size sex (F==0, say),
		// where there is nothing to swap.
		return
	}
	s1 := d.rng.Intn(span1) + imm[g1]
	s2 := d.rng.Intn(span2) + imm[g2]

	delta, err := s.ContactDelta(day, sex, g1, s1, g2, s2)
	if err != nil {
		return
	}

	accept := delta >= 0
	if !accept {
		u := d.rng.NextUnitFloat()
		accept = u < math.Exp(float64(delta)/d.temp)
	}
	if accept {
		_ = s.Swap(day, sex, g1, s1, g2, s2)
	}
}
