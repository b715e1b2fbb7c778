package dgp

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"causalpanel/domain/core"
	"causalpanel/domain/panel"
)

// degenerateStdEps is the smallest population std the standardizer accepts.
const degenerateStdEps = 1e-12

// sampleTraits draws the per-user latent confounders and standardizes them
// over the generated population. Draw order per user is fixed: engagement,
// complexity, feed quality, all from the user's trait sub-stream.
func (g *Generator) sampleTraits() ([]panel.User, error) {
	p := g.params
	users := make([]panel.User, p.Users)

	for i := range users {
		src, err := g.streams.Substream(RoleTraits, i+1)
		if err != nil {
			return nil, err
		}

		engagement := distuv.LogNormal{Mu: p.EngagementMu, Sigma: p.EngagementSigma, Src: src}.Rand()
		complexity := distuv.LogNormal{Mu: p.ComplexityMu, Sigma: p.ComplexitySigma, Src: src}.Rand()
		feed := distuv.Beta{Alpha: p.FeedA, Beta: p.FeedB, Src: src}.Rand()

		users[i] = panel.User{
			UserID:     i + 1,
			Engagement: engagement,
			Complexity: complexity,
			Feed:       feed,
		}
	}

	if err := standardize(users); err != nil {
		return nil, err
	}
	return users, nil
}

// standardize fills the *_std fields with (x - mean)/popstd computed over
// the generated population, never from theoretical moments. Re-running with
// a different population size changes the standardized values even when the
// raw hyperparameters are identical.
func standardize(users []panel.User) error {
	n := len(users)
	engagement := make([]float64, n)
	complexity := make([]float64, n)
	feed := make([]float64, n)
	for i, u := range users {
		engagement[i] = u.Engagement
		complexity[i] = u.Complexity
		feed[i] = u.Feed
	}

	ez, err := zscore("E", engagement)
	if err != nil {
		return err
	}
	cz, err := zscore("C", complexity)
	if err != nil {
		return err
	}
	fz, err := zscore("F", feed)
	if err != nil {
		return err
	}

	for i := range users {
		users[i].EngagementStd = ez[i]
		users[i].ComplexityStd = cz[i]
		users[i].FeedStd = fz[i]
	}
	return nil
}

// zscore standardizes one trait vector with the population std. A vector
// without variance cannot be standardized and fails the run.
func zscore(trait string, xs []float64) ([]float64, error) {
	mean := stat.Mean(xs, nil)
	std := stat.PopStdDev(xs, nil)
	if math.IsNaN(std) || std < degenerateStdEps {
		return nil, core.NewDegenerateDistributionError(trait, std)
	}

	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - mean) / std
	}
	return out, nil
}
