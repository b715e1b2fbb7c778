// Package dgp implements the synthetic data-generating process behind the
// panel tables: per-user latent confounders, weekly confidence and edit
// rates linked by structural equations, an optional feedback loop from last
// week's edits into next week's confidence, and a lagged binary retention
// outcome aggregated over the exposure window.
//
// The process is engineered, not fitted. Confounding is deliberate (the
// latent traits drive both the treatment and the outcomes), the causal
// effect sizes are configuration, and the whole run is reproducible: one
// top-level seed derives an independent sub-stream per noise source, keyed
// by role and user (and week where applicable), so changing one component's
// parameters never perturbs another component's draws.
//
// Generation order per user is strict: traits, then weeks in increasing
// order, then the exposure summary, then the retention draw. Users are
// mutually independent and may be generated concurrently; both the parallel
// and sequential paths emit bit-identical tables.
package dgp
