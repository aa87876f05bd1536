// Package annealing is the optimization core: it assigns a fixed
// population, split into males and females, into equal-sized mixed
// groups across a run of consecutive days, maximizing the number of
// distinct pairs of people who ever share a group. It performs no I/O,
// starts no goroutines, and holds no state beyond what a single State
// owns.
package annealing

import "fmt"

// Sex selects which half of a group a slot belongs to.
type Sex int

const (
	Male Sex = iota
	Female
)

func (sx Sex) String() string {
	if sx == Male {
		return "male"
	}
	return "female"
}

// Debug gates the internal consistency checks in the evaluator and
// applier ("this pair shared a group, so C must already be >= 1").
// Leave false in production; their firing means the evaluator/applier
// disagree with the matrix, which is a bug in this package, never a
// caller error.
var Debug = false

func debugAssert(cond bool, format string, args ...any) {
	if Debug && !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
