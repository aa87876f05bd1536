package domain

import (
	"encoding/json"
	"time"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one annealing attempt against a cohort. Schedule holds the
// serialized day/group/slot occupancy of the terminal state once the
// run completes; it is nil while the run is pending or running.
type Run struct {
	ID              int64           `json:"id"`
	CohortID        int64           `json:"cohortID"`
	Status          RunStatus       `json:"status"`
	Iterations      int32           `json:"iterations"`
	Score           int32           `json:"score"`
	AverageContacts float64         `json:"averageContacts"`
	Schedule        json.RawMessage `json:"schedule,omitempty"`
	StartedAt       *time.Time      `json:"startedAt"`
	FinishedAt      *time.Time      `json:"finishedAt"`
	Version         int32           `json:"-"`
}

// RunSchedule is the JSON shape persisted into Run.Schedule: the
// occupant ids of every slot of every group, per day, per sex.
type RunSchedule struct {
	Male   [][][]int `json:"male"`
	Female [][][]int `json:"female"`
}
