package domain

import "time"

// Cohort is a population split into G equal-sized mixed groups across
// D days, with the first ImmovableM[g]/ImmovableF[g] slots of every
// group frozen to their day-0 occupants.
type Cohort struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	GroupCount  int32     `json:"groupCount"`
	MaleCount   int32     `json:"maleCount"`
	FemaleCount int32     `json:"femaleCount"`
	DayCount    int32     `json:"dayCount"`
	ImmovableM  []int32   `json:"immovableM"`
	ImmovableF  []int32   `json:"immovableF"`
	OwnerID     int64     `json:"ownerID"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
