package run

import (
	"causalpanel/domain/params"
)

// SignConvention documents how stored effect magnitudes enter the structural
// equations. Downstream estimator comparisons are sign-sensitive, so every
// emitted GroundTruth names the convention in force.
const SignConvention = "positive magnitudes; equations apply -b_c*C, -tau_e*confidence, -g_f*F, -kappa_r*edit_mean"

// GroundTruth is the causal-effect record emitted alongside the data tables.
// It is a single immutable value attached to the run output, never mutated
// after creation, so scenario batches cannot leak effects across runs.
type GroundTruth struct {
	// TauE is the effect of confidence on edit rate. Under the sign
	// convention, higher confidence lowers the edit rate by TauE per
	// latent unit.
	TauE float64 `json:"tau_e"`
	// TauR is the direct effect of mean exposure-window confidence on
	// retention log-odds.
	TauR float64 `json:"tau_r"`
	// KappaR is the effect of mean exposure-window edit rate on retention
	// log-odds; more edits lower retention.
	KappaR float64 `json:"kappa_r"`
	// MediatedEffect is the confidence -> edit rate -> retention channel,
	// TauE*KappaR. The two calming minus signs compose to a positive
	// retention effect.
	MediatedEffect float64 `json:"mediated_effect"`
	// TotalEffect approximates TauR + TauE*KappaR. Approximate because the
	// mediator enters retention through a nonlinear link.
	TotalEffect float64 `json:"total_effect"`
	// Omega records the feedback weight actually used. Nonzero means the
	// dataset carries time-dependent confounding, which changes the valid
	// adjustment sets.
	Omega          float64 `json:"omega"`
	Seed           int64   `json:"seed"`
	SignConvention string  `json:"sign_convention"`
}

// NewGroundTruth derives the effect record from a parameter set. Values are
// copied verbatim from configuration, never re-fitted from generated data.
func NewGroundTruth(p params.ParameterSet) GroundTruth {
	mediated := p.TauE * p.KappaR
	return GroundTruth{
		TauE:           p.TauE,
		TauR:           p.TauR,
		KappaR:         p.KappaR,
		MediatedEffect: mediated,
		TotalEffect:    p.TauR + mediated,
		Omega:          p.Omega,
		Seed:           p.Seed,
		SignConvention: SignConvention,
	}
}
