package harden

import (
	"time"

	"go.uber.org/multierr"
)

// Report summarises one hardening run.
type Report struct {
	RunID         string        `yaml:"run_id" json:"run_id"`
	Intrinsics    int           `yaml:"intrinsics" json:"intrinsics"`
	Visited       int           `yaml:"visited" json:"visited"`
	Frozen        int           `yaml:"frozen" json:"frozen"`
	AlreadyFrozen int           `yaml:"already_frozen" json:"already_frozen"`
	Repaired      []string      `yaml:"repaired" json:"repaired"`
	Duration      time.Duration `yaml:"duration" json:"duration"`

	// RepairErr aggregates every *RepairError of the run.
	RepairErr error `yaml:"-" json:"-"`
}

// RepairFailures returns the individual repair failures.
func (r *Report) RepairFailures() []error {
	if r == nil {
		return nil
	}
	return multierr.Errors(r.RepairErr)
}
