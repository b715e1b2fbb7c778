package run

import (
	"causalpanel/domain/core"
	"causalpanel/domain/params"
)

// Manifest is the bookkeeping record emitted with every generated dataset.
// This is the truth source for replay: a dataset is reproducible from the
// manifest's seed plus the parameter set behind its fingerprint.
type Manifest struct {
	RunID       core.RunID             `json:"run_id"`
	Seed        int64                  `json:"seed"`
	Users       int                    `json:"n_users"`
	Weeks       int                    `json:"n_weeks"`
	T0Week      int                    `json:"t0_week"`
	Fingerprint core.ParamsFingerprint `json:"params_fingerprint"`
	CreatedAt   core.Timestamp         `json:"created_at"`
}

// NewManifest creates a manifest for one run of the given parameter set.
// The run ID is fresh per call; the fingerprint is stable across runs of
// identical parameters.
func NewManifest(p params.ParameterSet) Manifest {
	return Manifest{
		RunID:       core.NewRunID(),
		Seed:        p.Seed,
		Users:       p.Users,
		Weeks:       p.Weeks,
		T0Week:      p.T0Week,
		Fingerprint: p.Fingerprint(),
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if core.Hash(m.Fingerprint).IsEmpty() {
		return core.NewValidationError("manifest", "params_fingerprint cannot be empty")
	}
	if m.Users < 1 || m.Weeks < 1 {
		return core.NewValidationError("manifest", "run shape cannot be empty")
	}
	if m.CreatedAt.IsZero() {
		return core.NewValidationError("manifest", "created_at cannot be zero")
	}
	return nil
}
