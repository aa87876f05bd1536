package annealing

// ContactDelta returns the exact change in score that swapping the
// occupants of (g1,s1) and (g2,s2) on day would produce, without
// mutating the state. Both slots must be moveable and day must not be
// the canonical day 0.
//
// Only same-sex pairs are considered: swapping two males changes who
// those two males co-attend with among the other males of the two
// groups, and leaves every male-female and female-female pair
// unaffected, because the set of the opposite sex in each group is
// unchanged by the swap.
func (s *State) ContactDelta(day int, sex Sex, g1, s1, g2, s2 int) (int, error) {
	if err := s.validateMove(day, sex, g1, s1, g2, s2); err != nil {
		return 0, err
	}
	if g1 == g2 {
		return 0, nil
	}

	p1 := s.personAt(day, sex, g1, s1)
	p2 := s.personAt(day, sex, g2, s2)
	n := s.groupSize(sex)
	delta := 0

	// Losses for p1: every current member of g1, including p1 itself
	// (the diagonal, which never drops to zero and so never affects
	// delta unless D==1).
	for q := 0; q < n; q++ {
		other := s.personAt(day, sex, g1, q)
		debugAssert(s.C[other][p1] != 0, "contactDelta: C[%d][%d]==0 but %d shares group %d with %d", other, p1, other, g1, p1)
		if s.C[other][p1] == 1 {
			delta--
		}
	}
	// Losses for p2, symmetric over g2.
	for q := 0; q < n; q++ {
		other := s.personAt(day, sex, g2, q)
		debugAssert(s.C[other][p2] != 0, "contactDelta: C[%d][%d]==0 but %d shares group %d with %d", other, p2, other, g2, p2)
		if s.C[other][p2] == 1 {
			delta--
		}
	}
	// Gains for p1: every member of g2 except p2, who is leaving.
	for q := 0; q < n; q++ {
		if q == s2 {
			continue
		}
		other := s.personAt(day, sex, g2, q)
		if s.C[other][p1] == 0 {
			delta++
		}
	}
	// Gains for p2: every member of g1 except p1, who is leaving.
	for q := 0; q < n; q++ {
		if q == s1 {
			continue
		}
		other := s.personAt(day, sex, g1, q)
		if s.C[other][p2] == 0 {
			delta++
		}
	}

	return delta, nil
}

// Swap exchanges the occupants of (g1,s1) and (g2,s2) on day, updating
// the co-attendance matrix and score in lock-step. If ContactDelta
// returned delta for the same arguments immediately beforehand, score
// changes by exactly delta.
func (s *State) Swap(day int, sex Sex, g1, s1, g2, s2 int) error {
	if err := s.validateMove(day, sex, g1, s1, g2, s2); err != nil {
		return err
	}

	p1 := s.personAt(day, sex, g1, s1)
	p2 := s.personAt(day, sex, g2, s2)
	s.setPersonAt(day, sex, g1, s1, p2)
	s.setPersonAt(day, sex, g2, s2, p1)

	if g1 == g2 {
		return nil
	}

	n := s.groupSize(sex)

	// Losses for p1: every slot of g1 except the one p2 now occupies.
	for q := 0; q < n; q++ {
		if q == s1 {
			continue
		}
		other := s.personAt(day, sex, g1, q)
		debugAssert(s.C[other][p1] != 0, "swap: C[%d][%d]==0 but %d still shares group %d with %d", other, p1, other, g1, p1)
		if s.C[other][p1] == 1 {
			s.score--
		}
		s.C[other][p1]--
		s.C[p1][other]--
	}
	// Losses for p2, symmetric over g2.
	for q := 0; q < n; q++ {
		if q == s2 {
			continue
		}
		other := s.personAt(day, sex, g2, q)
		debugAssert(s.C[other][p2] != 0, "swap: C[%d][%d]==0 but %d still shares group %d with %d", other, p2, other, g2, p2)
		if s.C[other][p2] == 1 {
			s.score--
		}
		s.C[other][p2]--
		s.C[p2][other]--
	}
	// Gains for p1: every slot of g2 except the one p1 now occupies.
	for q := 0; q < n; q++ {
		other := s.personAt(day, sex, g2, q)
		if q == s2 {
			continue
		}
		if s.C[other][p1] == 0 {
			s.score++
		}
		s.C[other][p1]++
		s.C[p1][other]++
	}
	// Gains for p2: every slot of g1 except the one p2 now occupies.
	for q := 0; q < n; q++ {
		other := s.personAt(day, sex, g1, q)
		if q == s1 {
			continue
		}
		if s.C[other][p2] == 0 {
			s.score++
		}
		s.C[other][p2]++
		s.C[p2][other]++
	}

	return nil
}
