package dgp

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"causalpanel/domain/core"
	"causalpanel/domain/panel"
	"causalpanel/domain/params"
)

// aggregateExposure reduces one user's exposure-window weeks (t0..t0+3) to
// the scalar summaries the retention model reads. Fewer than four window
// weeks is a programming-logic fault: a validated parameter set always
// covers the window.
func (g *Generator) aggregateExposure(u *panel.User, weeks []panel.UserWeek) (panel.ExposureSummary, error) {
	t0 := g.params.T0Week
	conf := make([]float64, 0, params.ExposureWindowWeeks)
	edit := make([]float64, 0, params.ExposureWindowWeeks)
	for _, uw := range weeks {
		if uw.Week >= t0 && uw.Week < t0+params.ExposureWindowWeeks {
			conf = append(conf, uw.Confidence)
			edit = append(edit, uw.EditRate)
		}
	}
	if len(conf) != params.ExposureWindowWeeks {
		return panel.ExposureSummary{}, core.NewMissingExposureWindowError(u.UserID, len(conf), params.ExposureWindowWeeks)
	}

	confMean, err := stats.Mean(conf)
	if err != nil {
		return panel.ExposureSummary{}, err
	}
	editMean, err := stats.Mean(edit)
	if err != nil {
		return panel.ExposureSummary{}, err
	}
	return panel.ExposureSummary{UserID: u.UserID, ConfMean: confMean, EditMean: editMean}, nil
}

// retLatent is the structural equation for retention log-odds. TauR is the
// direct effect of exposure-window confidence; the minus on KappaR makes a
// heavier edit burden push users out. The trait terms are the engineered
// confounding: engagement drives retention hard while also (weakly) driving
// confidence.
func (g *Generator) retLatent(u *panel.User, exp panel.ExposureSummary, noise float64) float64 {
	p := g.params
	return p.AlphaR + p.DeltaE*u.EngagementStd + p.DeltaF*u.FeedStd + p.DeltaC*u.ComplexityStd +
		p.TauR*exp.ConfMean - p.KappaR*exp.EditMean + noise
}

// drawRetention computes the user's latent retention score and takes the
// single Bernoulli draw for the conceptual week t0+4. Noise and the binary
// draw both consume the user's retention sub-stream, in that order.
func (g *Generator) drawRetention(u *panel.User, exp panel.ExposureSummary) error {
	src, err := g.streams.Substream(RoleRetention, u.UserID)
	if err != nil {
		return err
	}
	noise := distuv.Normal{Mu: 0, Sigma: g.params.SigmaR, Src: src}.Rand()
	p := sigmoid(g.retLatent(u, exp, noise))
	u.Wk4Retention = int(distuv.Bernoulli{P: p, Src: src}.Rand())
	return nil
}
