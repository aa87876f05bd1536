package annealing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// bruteForceScore recomputes the score from scratch by rescanning
// every day and group, independent of the incrementally maintained C
// and score fields. Used to cross-check ContactDelta/Swap.
func bruteForceScore(s *State) int {
	seen := make([][]bool, s.T())
	for i := range seen {
		seen[i] = make([]bool, s.T())
	}
	count := 0
	mark := func(a, b int) {
		if a == b || seen[a][b] {
			return
		}
		seen[a][b] = true
		seen[b][a] = true
		count++
	}
	for d := 0; d < s.D; d++ {
		for g := 0; g < s.G; g++ {
			all := append(append([]int(nil), s.MaleAt[d][g]...), s.FemaleAt[d][g]...)
			for i := 0; i < len(all); i++ {
				for j := i + 1; j < len(all); j++ {
					mark(all[i], all[j])
				}
			}
		}
	}
	return count
}

func TestWithinGroupSwapIsNoOp(t *testing.T) {
	s := newTestState(t, 4, 4, 4, 4)
	before := s.Clone()

	delta, err := s.ContactDelta(1, Male, 0, 0, 0, 1)
	require.NoError(t, err)
	require.Equal(t, 0, delta)

	require.NoError(t, s.Swap(1, Male, 0, 0, 0, 1))
	require.Equal(t, before.Score(), s.Score())
	for i := range before.C {
		require.Equal(t, before.C[i], s.C[i])
	}
}

func TestContactDeltaMatchesBruteForce(t *testing.T) {
	s := newTestState(t, 4, 4, 4, 5)
	bf := bruteForceScore(s)
	require.Equal(t, bf, s.Score())

	for g1 := 0; g1 < s.G; g1++ {
		for g2 := 0; g2 < s.G; g2++ {
			if g1 == g2 {
				continue
			}
			for s1 := 0; s1 < s.M; s1++ {
				for s2 := 0; s2 < s.M; s2++ {
					clone := s.Clone()
					delta, err := clone.ContactDelta(1, Male, g1, s1, g2, s2)
					require.NoError(t, err)

					before := clone.Score()
					require.NoError(t, clone.Swap(1, Male, g1, s1, g2, s2))
					require.Equal(t, before+delta, clone.Score())
					require.Equal(t, bruteForceScore(clone), clone.Score())
				}
			}
		}
	}
}

func TestSwapIsInvolution(t *testing.T) {
	s := newTestState(t, 4, 4, 4, 4)
	before := s.Clone()

	require.NoError(t, s.Swap(2, Female, 0, 1, 3, 2))
	require.NoError(t, s.Swap(2, Female, 0, 1, 3, 2))

	require.Equal(t, before.Score(), s.Score())
	for d := range before.FemaleAt {
		for g := range before.FemaleAt[d] {
			require.Equal(t, before.FemaleAt[d][g], s.FemaleAt[d][g])
		}
	}
	for i := range before.C {
		require.Equal(t, before.C[i], s.C[i])
	}
}

func TestLIFOUndoRestoresScoreAndMatrix(t *testing.T) {
	s := newTestState(t, 5, 5, 5, 5)
	before := s.Clone()

	type move struct{ day int; sex Sex; g1, s1, g2, s2 int }
	moves := []move{
		{1, Male, 0, 1, 1, 2},
		{2, Female, 0, 0, 2, 3},
		{3, Male, 1, 3, 4, 4},
		{4, Female, 2, 1, 3, 2},
	}

	for _, m := range moves {
		require.NoError(t, s.Swap(m.day, m.sex, m.g1, m.s1, m.g2, m.s2))
	}
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		require.NoError(t, s.Swap(m.day, m.sex, m.g1, m.s1, m.g2, m.s2))
	}

	require.Equal(t, before.Score(), s.Score())
	for i := range before.C {
		require.Equal(t, before.C[i], s.C[i])
	}
}

func TestContactDeltaRejectsImmovableSlots(t *testing.T) {
	s := newTestState(t, 3, 3, 3, 3)
	require.NoError(t, s.SetImmovableM([]int{1, 0, 0}))

	_, err := s.ContactDelta(1, Male, 0, 0, 1, 0)
	require.Error(t, err)
}

func TestContactDeltaRejectsDayZero(t *testing.T) {
	s := newTestState(t, 3, 3, 3, 3)
	_, err := s.ContactDelta(0, Male, 0, 0, 1, 0)
	require.Error(t, err)
}
