package params

import (
	"fmt"

	"causalpanel/domain/core"
)

// ParameterSet is the immutable configuration for one generation run. A run
// never mutates its ParameterSet; scenario batches construct a fresh value
// per run. All coefficients are stored as positive magnitudes; the
// structural equations fix the effect directions (see dgp package).
type ParameterSet struct {
	// Run shape
	Users  int   `json:"n_users" yaml:"n_users"`
	Weeks  int   `json:"n_weeks" yaml:"n_weeks"`
	Seed   int64 `json:"seed" yaml:"seed"`
	T0Week int   `json:"t0_week" yaml:"t0_week"` // index week of the exposure window

	// Latent trait hyperparameters
	EngagementMu    float64 `json:"engagement_mu" yaml:"engagement_mu"`
	EngagementSigma float64 `json:"engagement_sigma" yaml:"engagement_sigma"`
	ComplexityMu    float64 `json:"complexity_mu" yaml:"complexity_mu"`
	ComplexitySigma float64 `json:"complexity_sigma" yaml:"complexity_sigma"`
	FeedA           float64 `json:"feed_a" yaml:"feed_a"`
	FeedB           float64 `json:"feed_b" yaml:"feed_b"`

	// Confidence model
	AlphaC     float64 `json:"alpha_c" yaml:"alpha_c"`
	BF         float64 `json:"b_f" yaml:"b_f"`
	BC         float64 `json:"b_c" yaml:"b_c"`
	BE         float64 `json:"b_e" yaml:"b_e"`
	SigmaCWeek float64 `json:"sigma_c_week" yaml:"sigma_c_week"`
	Omega      float64 `json:"omega" yaml:"omega"` // feedback weight; 0 disables the loop

	// Edit model
	AlphaE float64 `json:"alpha_e" yaml:"alpha_e"`
	TauE   float64 `json:"tau_e" yaml:"tau_e"`
	GC     float64 `json:"g_c" yaml:"g_c"`
	GE     float64 `json:"g_e" yaml:"g_e"`
	GF     float64 `json:"g_f" yaml:"g_f"`
	SigmaE float64 `json:"sigma_e" yaml:"sigma_e"`

	// Txn volume model (optional)
	VolumeEnabled bool    `json:"volume_enabled" yaml:"volume_enabled"`
	AlphaN        float64 `json:"alpha_n" yaml:"alpha_n"`
	BetaNE        float64 `json:"beta_ne" yaml:"beta_ne"`

	// Retention model
	AlphaR float64 `json:"alpha_r" yaml:"alpha_r"`
	DeltaE float64 `json:"delta_e" yaml:"delta_e"`
	DeltaF float64 `json:"delta_f" yaml:"delta_f"`
	DeltaC float64 `json:"delta_c" yaml:"delta_c"`
	TauR   float64 `json:"tau_r" yaml:"tau_r"`
	KappaR float64 `json:"kappa_r" yaml:"kappa_r"`
	SigmaR float64 `json:"sigma_r" yaml:"sigma_r"`
}

// Defaults returns the reference parameterization. The marginals it produces
// are skewed confidence around 0.7, sparse edits under 0.1, and retention
// near 0.55, with confounding strong enough to bias naive estimates.
func Defaults() ParameterSet {
	return ParameterSet{
		Users:  25000,
		Weeks:  8,
		Seed:   7,
		T0Week: 1,

		EngagementMu:    0.0,
		EngagementSigma: 0.7,
		ComplexityMu:    0.0,
		ComplexitySigma: 0.6,
		FeedA:           5.0,
		FeedB:           2.2,

		AlphaC:     1.0,
		BF:         1.2,
		BC:         1.0,
		BE:         0.2,
		SigmaCWeek: 0.6,
		Omega:      0.0,

		AlphaE: -1.8,
		TauE:   2.0,
		GC:     0.8,
		GE:     0.4,
		GF:     0.3,
		SigmaE: 0.5,

		VolumeEnabled: true,
		AlphaN:        2.2,
		BetaNE:        0.55,

		AlphaR: -0.3,
		DeltaE: 1.4,
		DeltaF: 0.4,
		DeltaC: 0.1,
		TauR:   0.8,
		KappaR: 1.0,
		SigmaR: 0.4,
	}
}

// ExposureWindowWeeks is the number of weeks aggregated into the exposure
// summaries that feed retention.
const ExposureWindowWeeks = 4

// RetentionWeek is the conceptual week the retention label refers to. No
// UserWeek row is ever materialized for it.
func (p ParameterSet) RetentionWeek() int {
	return p.T0Week + ExposureWindowWeeks
}

// FeedbackEnabled reports whether the time-dependent feedback loop is live.
func (p ParameterSet) FeedbackEnabled() bool {
	return p.Omega != 0
}

// Validate checks the full set before any sampling begins. A failed run
// never partially generates data.
func (p ParameterSet) Validate() error {
	if p.Users < 1 {
		return core.NewConfigurationError("n_users", p.Users, "must be at least 1")
	}
	if p.T0Week < 1 {
		return core.NewConfigurationError("t0_week", p.T0Week, "weeks are indexed from 1")
	}
	if p.Weeks < p.T0Week+ExposureWindowWeeks-1 {
		return core.NewConfigurationError("n_weeks", p.Weeks,
			fmt.Sprintf("must cover the %d-week exposure window starting at week %d", ExposureWindowWeeks, p.T0Week))
	}
	if p.EngagementSigma < 0 {
		return core.NewConfigurationError("engagement_sigma", p.EngagementSigma, "lognormal sigma cannot be negative")
	}
	if p.ComplexitySigma < 0 {
		return core.NewConfigurationError("complexity_sigma", p.ComplexitySigma, "lognormal sigma cannot be negative")
	}
	if p.FeedA <= 0 {
		return core.NewConfigurationError("feed_a", p.FeedA, "beta shape must be positive")
	}
	if p.FeedB <= 0 {
		return core.NewConfigurationError("feed_b", p.FeedB, "beta shape must be positive")
	}
	if p.SigmaCWeek < 0 {
		return core.NewConfigurationError("sigma_c_week", p.SigmaCWeek, "noise std cannot be negative")
	}
	if p.SigmaE < 0 {
		return core.NewConfigurationError("sigma_e", p.SigmaE, "noise std cannot be negative")
	}
	if p.SigmaR < 0 {
		return core.NewConfigurationError("sigma_r", p.SigmaR, "noise std cannot be negative")
	}
	return nil
}

// Fingerprint hashes the canonical rendering of the full parameter set.
// Identical sets share a fingerprint; any coefficient change produces a new
// one.
func (p ParameterSet) Fingerprint() core.ParamsFingerprint {
	return core.NewParamsFingerprint([]byte(fmt.Sprintf("%+v", p)))
}
