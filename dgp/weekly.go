package dgp

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"causalpanel/domain/panel"
)

// sigmoid maps an unbounded latent score into the open unit interval. The
// exponential never reaches 0 or +Inf for finite input, so the output never
// touches the bounds.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// confLatent is the structural equation for weekly confidence. Coefficients
// are stored as positive magnitudes; the minus sign on complexity lives
// here: better feed quality and higher engagement raise confidence, harder
// material lowers it.
func (g *Generator) confLatent(u *panel.User, noise, prevEdit float64) float64 {
	p := g.params
	latent := p.AlphaC + p.BF*u.FeedStd - p.BC*u.ComplexityStd + p.BE*u.EngagementStd + noise
	// Feedback term: last week's observed edits nudge this week's
	// confidence. prevEdit is 0 on the first week.
	latent += p.Omega * prevEdit
	return latent
}

// editLatent is the structural equation for the weekly edit rate. This
// week's confidence is the treatment: higher confidence calms editing, so
// the equation subtracts TauE*confidence (and good feed quality also means
// less to fix, hence -GF).
func (g *Generator) editLatent(u *panel.User, confidence, noise float64) float64 {
	p := g.params
	return p.AlphaE - p.TauE*confidence + p.GC*u.ComplexityStd + p.GE*u.EngagementStd - p.GF*u.FeedStd + noise
}

// generateWeeks fills one user's week rows in strictly increasing week
// order. With feedback enabled the order is load-bearing: week t+1's
// confidence latent reads week t's edit rate. Each week's noise comes from
// its own (role, user, week) sub-stream, so weekly draws never shift when
// coefficients change.
func (g *Generator) generateWeeks(u *panel.User, weeks []panel.UserWeek) error {
	p := g.params

	var volume distuv.Poisson
	if p.VolumeEnabled {
		src, err := g.streams.Substream(RoleVolume, u.UserID)
		if err != nil {
			return err
		}
		// Rate is time-invariant per user; only the counts vary by week.
		lambda := math.Exp(p.AlphaN + p.BetaNE*u.EngagementStd)
		volume = distuv.Poisson{Lambda: lambda, Src: src}
	}

	prevEdit := 0.0
	for w := 0; w < len(weeks); w++ {
		week := w + 1

		confSrc, err := g.streams.Substream(RoleConfNoise, u.UserID, week)
		if err != nil {
			return err
		}
		editSrc, err := g.streams.Substream(RoleEditNoise, u.UserID, week)
		if err != nil {
			return err
		}

		confNoise := distuv.Normal{Mu: 0, Sigma: p.SigmaCWeek, Src: confSrc}.Rand()
		editNoise := distuv.Normal{Mu: 0, Sigma: p.SigmaE, Src: editSrc}.Rand()

		confidence := sigmoid(g.confLatent(u, confNoise, prevEdit))
		editRate := sigmoid(g.editLatent(u, confidence, editNoise))

		weeks[w] = panel.UserWeek{
			UserID:     u.UserID,
			Week:       week,
			Confidence: confidence,
			EditRate:   editRate,
		}
		if p.VolumeEnabled {
			weeks[w].NTxn = int(volume.Rand())
		}

		if p.FeedbackEnabled() {
			prevEdit = editRate
		}
	}
	return nil
}
