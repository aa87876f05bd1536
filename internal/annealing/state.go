package annealing

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// State holds everything the annealing core mutates: the per-day
// group assignment for both sexes, the symmetric co-attendance matrix,
// the running score, and the immovable-slot configuration. A State is
// owned exclusively by whoever constructed it; nothing in this package
// shares it.
type State struct {
	G, M, F, D int

	// MaleAt[d][g][s] / FemaleAt[d][g][s] hold person ids.
	MaleAt   [][][]int
	FemaleAt [][][]int

	// C is the T x T co-attendance matrix, symmetric, maintained
	// redundantly on both halves.
	C [][]uint32

	score int

	immM []int
	immF []int
}

// Tm, Tf, T return the male, female, and total population sizes.
func (s *State) Tm() int { return s.G * s.M }
func (s *State) Tf() int { return s.G * s.F }
func (s *State) T() int  { return s.Tm() + s.Tf() }

// NewState allocates and fills a state for the given geometry: G
// groups, M males and F females per group, across D days. Day 0 is
// filled in canonical ascending-id order; days 1..D-1 are filled with a
// uniformly random permutation, subject to no immovable slots (call
// SetImmovableM/SetImmovableF afterward to fix slots in place). The
// init shuffle is seeded from the wall clock; use NewStateWithSeed for
// a reproducible run.
func NewState(G, M, F, D int) (*State, error) {
	return NewStateWithSeed(G, M, F, D, uint64(time.Now().UnixNano()), 0)
}

// NewStateWithSeed is NewState with an explicit, reproducible seed for
// the day 1..D-1 shuffle. It exists so property and regression tests
// can construct identical starting states; it is not a relaxation of
// any invariant.
func NewStateWithSeed(G, M, F, D int, initSeed1, initSeed2 uint64) (*State, error) {
	if G <= 0 || M < 0 || F < 0 || D <= 0 {
		return nil, fmt.Errorf("annealing: invalid geometry G=%d M=%d F=%d D=%d", G, M, F, D)
	}
	if M == 0 && F == 0 {
		return nil, fmt.Errorf("annealing: group must have at least one male or female slot")
	}

	s := &State{
		G: G, M: M, F: F, D: D,
		immM: make([]int, G),
		immF: make([]int, G),
	}

	s.MaleAt = make([][][]int, D)
	s.FemaleAt = make([][][]int, D)
	for d := 0; d < D; d++ {
		s.MaleAt[d] = make([][]int, G)
		s.FemaleAt[d] = make([][]int, G)
		for g := 0; g < G; g++ {
			s.MaleAt[d][g] = make([]int, M)
			s.FemaleAt[d][g] = make([]int, F)
		}
	}

	total := s.T()
	s.C = make([][]uint32, total)
	for i := range s.C {
		s.C[i] = make([]uint32, total)
	}

	fillDayZero(s.MaleAt[0], G, M, 0)
	fillDayZero(s.FemaleAt[0], G, F, s.Tm())

	rng := rand.New(rand.NewPCG(initSeed1, initSeed2))
	for d := 1; d < D; d++ {
		shuffleDay(s.MaleAt[d], s.MaleAt[0], G, M, s.immM, 0, rng)
		shuffleDay(s.FemaleAt[d], s.FemaleAt[0], G, F, s.immF, s.Tm(), rng)
	}

	s.computeContactsFromScratch()

	return s, nil
}

// fillDayZero assigns ids row-major: person (slot) outer, group inner,
// starting from base. This fixes the canonical ordering day 0 uses.
func fillDayZero(at [][]int, G, n, base int) {
	id := base
	for person := 0; person < n; person++ {
		for group := 0; group < G; group++ {
			at[group][person] = id
			id++
		}
	}
}

// shuffleDay fills one non-canonical day's slots with a uniformly
// random permutation of the movable ids, leaving every immovable slot
// holding the same id it holds on day 0. imm[g] immovable ids are
// identified directly from dayZero rather than assumed to occupy a
// global id prefix, which is what makes this correct for any
// per-group immovable configuration, uniform or not.
func shuffleDay(at, dayZero [][]int, G, n int, imm []int, base int, rng *rand.Rand) {
	total := G * n
	movable := make([]int, 0, total)
	immovableAt := make(map[int]bool, total)

	for g := 0; g < G; g++ {
		for person := 0; person < imm[g]; person++ {
			immovableAt[dayZero[g][person]] = true
		}
	}
	for id := base; id < base+total; id++ {
		if !immovableAt[id] {
			movable = append(movable, id)
		}
	}
	rng.Shuffle(len(movable), func(i, j int) { movable[i], movable[j] = movable[j], movable[i] })

	next := 0
	for person := 0; person < n; person++ {
		for g := 0; g < G; g++ {
			if person < imm[g] {
				at[g][person] = dayZero[g][person]
				continue
			}
			at[g][person] = movable[next]
			next++
		}
	}
}

// computeContactsFromScratch rebuilds C and score from the current
// schedule in a single full pass: every day, every group, every
// same-sex ordered pair and every male/female ordered pair. It is safe
// to call more than once on the same state (SetImmovableM/SetImmovableF
// both do, after reshuffling) since it clears C first rather than
// assuming it starts at zero. The male-male and female-female passes
// guard the score increment on a<b because the nested loop visits each
// unordered pair from both directions; the male-female pass does not
// need the guard because it only ever visits each cross-sex unordered
// pair once, from one direction, so it increments both matrix halves
// explicitly instead.
func (s *State) computeContactsFromScratch() {
	s.score = 0
	for i := range s.C {
		for j := range s.C[i] {
			s.C[i][j] = 0
		}
	}
	for d := 0; d < s.D; d++ {
		for g := 0; g < s.G; g++ {
			males := s.MaleAt[d][g]
			females := s.FemaleAt[d][g]

			for _, a := range males {
				for _, b := range males {
					isNew := s.C[a][b] == 0
					s.C[a][b]++
					if isNew && a < b {
						s.score++
					}
				}
				for _, b := range females {
					isNew := s.C[a][b] == 0
					s.C[a][b]++
					s.C[b][a]++
					if isNew {
						s.score++
					}
				}
			}
			for _, a := range females {
				for _, b := range females {
					isNew := s.C[a][b] == 0
					s.C[a][b]++
					if isNew && a < b {
						s.score++
					}
				}
			}
		}
	}
}

// SetImmovableM fixes the first imm[g] male slots of group g on every
// day to hold whatever id sits there on day 0, and redraws the rest of
// each day's male slots so the schedule stays a valid permutation under
// the new immovable set. Must be called with a vector of length G, each
// entry in [0, M]. Must be called before any calls to Swap/Anneal reuse
// the existing day 0..D-1 layout, since every day 1..D-1 is reshuffled
// from scratch here.
func (s *State) SetImmovableM(imm []int) error {
	fixed, err := validateImmovable(imm, s.G, s.M)
	if err != nil {
		return err
	}
	s.immM = fixed
	reshuffleNonCanonicalDays(s.MaleAt, s.G, s.M, s.D, s.immM, 0)
	s.computeContactsFromScratch()
	return nil
}

// SetImmovableF is SetImmovableM for the female slots.
func (s *State) SetImmovableF(imm []int) error {
	fixed, err := validateImmovable(imm, s.G, s.F)
	if err != nil {
		return err
	}
	s.immF = fixed
	reshuffleNonCanonicalDays(s.FemaleAt, s.G, s.F, s.D, s.immF, s.Tm())
	s.computeContactsFromScratch()
	return nil
}

func validateImmovable(imm []int, G, n int) ([]int, error) {
	if len(imm) != G {
		return nil, fmt.Errorf("annealing: immovable vector has length %d, want %d", len(imm), G)
	}
	fixed := make([]int, G)
	for g, v := range imm {
		if v < 0 || v > n {
			return nil, fmt.Errorf("annealing: immovable count %d for group %d out of range [0,%d]", v, g, n)
		}
		if v == n && n > 0 {
			return nil, fmt.Errorf("annealing: group %d has no movable slots (imm=%d, size=%d); no swap can ever target it", g, v, n)
		}
		fixed[g] = v
	}
	return fixed, nil
}

// reshuffleNonCanonicalDays redraws every day 1..D-1 from day 0 under a
// (possibly just-changed) immovable vector, via shuffleDay. A fresh,
// wall-clock-seeded generator is used each call since nothing calling
// SetImmovableM/SetImmovableF needs the post-call layout to be
// reproducible from the state's original construction seed.
func reshuffleNonCanonicalDays(at [][][]int, G, n, D int, imm []int, base int) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(base)+1))
	for d := 1; d < D; d++ {
		shuffleDay(at[d], at[0], G, n, imm, base, rng)
	}
}

// Score returns the current number of distinct contact pairs.
func (s *State) Score() int { return s.score }

// AverageContactsPerPerson is 2*score / (G*(M+F)), the average number
// of distinct people each person has shared a group with.
func (s *State) AverageContactsPerPerson() float64 {
	denom := float64(s.G * (s.M + s.F))
	if denom == 0 {
		return 0
	}
	return 2 * float64(s.score) / denom
}

// Schedule returns a deep copy of the current male and female
// assignments, safe for the caller to retain or mutate.
func (s *State) Schedule() (male, female [][][]int) {
	return copySchedule(s.MaleAt), copySchedule(s.FemaleAt)
}

func copySchedule(src [][][]int) [][][]int {
	out := make([][][]int, len(src))
	for d, days := range src {
		out[d] = make([][]int, len(days))
		for g, group := range days {
			out[d][g] = append([]int(nil), group...)
		}
	}
	return out
}

// Clone deep-copies the state, including the matrix and immovable
// configuration, but not any PRNG (the driver owns that separately).
func (s *State) Clone() *State {
	clone := &State{
		G: s.G, M: s.M, F: s.F, D: s.D,
		score: s.score,
		immM:  append([]int(nil), s.immM...),
		immF:  append([]int(nil), s.immF...),
	}
	clone.MaleAt = copySchedule(s.MaleAt)
	clone.FemaleAt = copySchedule(s.FemaleAt)
	clone.C = make([][]uint32, len(s.C))
	for i, row := range s.C {
		clone.C[i] = append([]uint32(nil), row...)
	}
	return clone
}

func (s *State) groupSize(sex Sex) int {
	if sex == Male {
		return s.M
	}
	return s.F
}

func (s *State) immFor(sex Sex) []int {
	if sex == Male {
		return s.immM
	}
	return s.immF
}

func (s *State) personAt(day int, sex Sex, g, slot int) int {
	if sex == Male {
		return s.MaleAt[day][g][slot]
	}
	return s.FemaleAt[day][g][slot]
}

func (s *State) setPersonAt(day int, sex Sex, g, slot, id int) {
	if sex == Male {
		s.MaleAt[day][g][slot] = id
	} else {
		s.FemaleAt[day][g][slot] = id
	}
}

// validateMove checks the caller-contract preconditions for
// ContactDelta/Swap: day must be a non-canonical day, groups must be in
// range, and both slots must be moveable.
func (s *State) validateMove(day int, sex Sex, g1, s1, g2, s2 int) error {
	if day <= 0 || day >= s.D {
		return fmt.Errorf("annealing: day %d out of range [1,%d)", day, s.D)
	}
	if g1 < 0 || g1 >= s.G || g2 < 0 || g2 >= s.G {
		return fmt.Errorf("annealing: group out of range [0,%d): g1=%d g2=%d", s.G, g1, g2)
	}
	n := s.groupSize(sex)
	imm := s.immFor(sex)
	if s1 < imm[g1] || s1 >= n {
		return fmt.Errorf("annealing: slot1 %d not moveable in group %d (imm=%d, size=%d)", s1, g1, imm[g1], n)
	}
	if s2 < imm[g2] || s2 >= n {
		return fmt.Errorf("annealing: slot2 %d not moveable in group %d (imm=%d, size=%d)", s2, g2, imm[g2], n)
	}
	return nil
}
