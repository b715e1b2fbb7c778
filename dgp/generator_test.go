package dgp

import (
	"math"
	"testing"

	"causalpanel/domain/core"
	"causalpanel/domain/panel"
	"causalpanel/domain/params"
)

func mustGenerate(t *testing.T, p params.ParameterSet) *panel.Tables {
	t.Helper()
	tables, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return tables
}

func sameData(a, b *panel.Tables) bool {
	if len(a.Users) != len(b.Users) || len(a.UserWeeks) != len(b.UserWeeks) {
		return false
	}
	for i := range a.Users {
		if a.Users[i] != b.Users[i] {
			return false
		}
	}
	for i := range a.UserWeeks {
		if a.UserWeeks[i] != b.UserWeeks[i] {
			return false
		}
	}
	return a.GroundTruth == b.GroundTruth
}

func TestNewRejectsBadParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*params.ParameterSet)
	}{
		{"zero users", func(p *params.ParameterSet) { p.Users = 0 }},
		{"window not covered", func(p *params.ParameterSet) { p.Weeks = 3 }},
		{"negative noise std", func(p *params.ParameterSet) { p.SigmaCWeek = -0.1 }},
		{"bad beta shape", func(p *params.ParameterSet) { p.FeedA = 0 }},
		{"bad t0", func(p *params.ParameterSet) { p.T0Week = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := params.Defaults()
			tc.mutate(&p)
			if _, err := New(p); !core.IsConfigurationError(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := testParams(300, 8, 42)
	a := mustGenerate(t, p)
	b := mustGenerate(t, p)
	if !sameData(a, b) {
		t.Fatal("two runs with the same parameters and seed must be bit-identical")
	}
	if a.Manifest.Fingerprint != b.Manifest.Fingerprint {
		t.Fatal("identical parameter sets must share a fingerprint")
	}
	if a.Manifest.RunID == b.Manifest.RunID {
		t.Fatal("each run must get a fresh run ID")
	}
}

func TestParallelSequentialEqual(t *testing.T) {
	for _, omega := range []float64{0, 0.5} {
		p := testParams(300, 8, 42)
		p.Omega = omega

		seq := mustGenerator(t, p)
		seq.Sequential = true
		a, err := seq.Generate()
		if err != nil {
			t.Fatalf("sequential generate (omega=%g) failed: %v", omega, err)
		}
		b, err := mustGenerator(t, p).Generate()
		if err != nil {
			t.Fatalf("parallel generate (omega=%g) failed: %v", omega, err)
		}
		if !sameData(a, b) {
			t.Fatalf("parallel and sequential paths diverged with omega=%g", omega)
		}
	}
}

func TestRatesInsideOpenUnitInterval(t *testing.T) {
	tables := mustGenerate(t, testParams(500, 8, 7))
	for _, uw := range tables.UserWeeks {
		if !(uw.Confidence > 0 && uw.Confidence < 1) {
			t.Fatalf("confidence out of (0,1) for user %d week %d: %g", uw.UserID, uw.Week, uw.Confidence)
		}
		if !(uw.EditRate > 0 && uw.EditRate < 1) {
			t.Fatalf("edit_rate out of (0,1) for user %d week %d: %g", uw.UserID, uw.Week, uw.EditRate)
		}
		if uw.NTxn < 0 {
			t.Fatalf("n_txn negative for user %d week %d: %d", uw.UserID, uw.Week, uw.NTxn)
		}
	}
	for _, u := range tables.Users {
		if u.Wk4Retention != 0 && u.Wk4Retention != 1 {
			t.Fatalf("retention not binary for user %d: %d", u.UserID, u.Wk4Retention)
		}
	}
}

// Raising the feed-quality coefficient moves every confidence in the
// direction of that user's standardized feed quality: up where F* > 0, down
// where F* < 0. Noise streams key on (user, week) only, so both runs see
// identical draws.
func TestConfidenceMonotoneInFeedCoefficient(t *testing.T) {
	base := testParams(300, 8, 7)
	bumped := base
	bumped.BF += 0.5

	a := mustGenerate(t, base)
	b := mustGenerate(t, bumped)

	for i, u := range a.Users {
		for w := range a.UserWeeksOf(i) {
			before := a.UserWeeksOf(i)[w].Confidence
			after := b.UserWeeksOf(i)[w].Confidence
			switch {
			case u.FeedStd > 0 && after <= before:
				t.Fatalf("user %d week %d: F*=%g > 0 but confidence fell %g -> %g", u.UserID, w+1, u.FeedStd, before, after)
			case u.FeedStd < 0 && after >= before:
				t.Fatalf("user %d week %d: F*=%g < 0 but confidence rose %g -> %g", u.UserID, w+1, u.FeedStd, before, after)
			}
		}
	}
}

// Holding everything else fixed, the confidence latent rises in F* and E*
// and falls in C*. Checked directly on the structural equation.
func TestConfLatentTraitDirections(t *testing.T) {
	g := mustGenerator(t, params.Defaults())
	u := panel.User{UserID: 1, FeedStd: 0.3, ComplexityStd: -0.2, EngagementStd: 0.1}

	base := g.confLatent(&u, 0, 0)

	up := u
	up.FeedStd += 1
	if g.confLatent(&up, 0, 0) <= base {
		t.Error("confidence latent must rise with feed quality")
	}
	up = u
	up.ComplexityStd += 1
	if g.confLatent(&up, 0, 0) >= base {
		t.Error("confidence latent must fall with complexity")
	}
	up = u
	up.EngagementStd += 1
	if g.confLatent(&up, 0, 0) <= base {
		t.Error("confidence latent must rise with engagement")
	}
}

func TestEditLatentFallsWithConfidence(t *testing.T) {
	g := mustGenerator(t, params.Defaults())
	u := panel.User{UserID: 1}
	if g.editLatent(&u, 0.9, 0) >= g.editLatent(&u, 0.4, 0) {
		t.Fatal("edit latent must fall as confidence rises")
	}
}

// With feedback off, the weekly computation never reads the previous edit
// rate: runs with wildly different edit-model noise produce identical
// confidence columns.
func TestFeedbackInertWhenDisabled(t *testing.T) {
	base := testParams(300, 8, 7)
	noisy := base
	noisy.SigmaE = base.SigmaE * 5

	a := mustGenerate(t, base)
	b := mustGenerate(t, noisy)
	for i := range a.UserWeeks {
		if a.UserWeeks[i].Confidence != b.UserWeeks[i].Confidence {
			t.Fatalf("omega=0 but confidence moved with the edit model at row %d", i)
		}
	}
}

// With feedback on, edit rates are strictly positive, so every week-2+
// confidence latent gains a strictly positive term and the omega>0 run
// dominates the omega=0 run week by week.
func TestFeedbackRaisesNextWeekConfidence(t *testing.T) {
	off := testParams(300, 8, 7)
	on := off
	on.Omega = 0.8

	a := mustGenerate(t, off)
	b := mustGenerate(t, on)

	for i := range a.Users {
		wa, wb := a.UserWeeksOf(i), b.UserWeeksOf(i)
		if wa[0].Confidence != wb[0].Confidence {
			t.Fatalf("user %d: week 1 has no feedback term yet, confidence must match", i+1)
		}
		for w := 1; w < len(wa); w++ {
			if wb[w].Confidence <= wa[w].Confidence {
				t.Fatalf("user %d week %d: omega>0 confidence %g not above omega=0 confidence %g",
					i+1, w+1, wb[w].Confidence, wa[w].Confidence)
			}
		}
	}
}

func TestVolumeToggleIsolation(t *testing.T) {
	on := testParams(300, 8, 7)
	on.VolumeEnabled = true
	off := on
	off.VolumeEnabled = false

	a := mustGenerate(t, on)
	b := mustGenerate(t, off)

	for i := range a.Users {
		if a.Users[i] != b.Users[i] {
			t.Fatalf("user row %d changed with volume toggle", i)
		}
	}
	for i := range a.UserWeeks {
		if a.UserWeeks[i].Confidence != b.UserWeeks[i].Confidence ||
			a.UserWeeks[i].EditRate != b.UserWeeks[i].EditRate {
			t.Fatalf("weekly outcomes changed with volume toggle at row %d", i)
		}
		if b.UserWeeks[i].NTxn != 0 {
			t.Fatalf("volume disabled but n_txn set at row %d", i)
		}
	}
	if !a.HasVolume || b.HasVolume {
		t.Fatal("HasVolume must mirror the toggle")
	}
}

func TestMediationCollapse(t *testing.T) {
	p := testParams(50, 8, 7)
	p.TauE = 0
	p.KappaR = 0

	tables := mustGenerate(t, p)
	gt := tables.GroundTruth
	if gt.MediatedEffect != 0 {
		t.Fatalf("mediated effect must collapse to exactly 0, got %g", gt.MediatedEffect)
	}
	if gt.TotalEffect != gt.TauR {
		t.Fatalf("total effect must equal the direct effect alone, got %g vs %g", gt.TotalEffect, gt.TauR)
	}
}

// Distributional guardrails on the reference scenario. Bounds are coarse on
// purpose: they catch sign flips and broken equations, not drift in the
// third decimal.
func TestReferenceScenarioGuardrails(t *testing.T) {
	tables := mustGenerate(t, testParams(1000, 8, 42))
	summary, err := panel.Summarize(tables)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	t.Logf("mean confidence %.4f, mean edit rate %.4f, retention rate %.4f, naive corr %.4f",
		summary.MeanConfidence, summary.MeanEditRate, summary.RetentionRate, summary.NaiveCorr)

	if summary.MeanConfidence <= 0.6 {
		t.Errorf("mean confidence %.4f, want > 0.6", summary.MeanConfidence)
	}
	if summary.MeanEditRate >= 0.3 {
		t.Errorf("mean edit rate %.4f, want < 0.3", summary.MeanEditRate)
	}
	if summary.RetentionRate < 0.2 || summary.RetentionRate > 0.8 {
		t.Errorf("retention rate %.4f, want inside [0.2, 0.8]", summary.RetentionRate)
	}
}

// The confounders are engineered to visibly bias the naive association:
// the same run with the trait->retention paths cut must show a weaker
// confidence/retention correlation than the default run.
func TestConfoundingVisiblyBiasesNaiveCorrelation(t *testing.T) {
	confounded := testParams(3000, 8, 42)
	clean := confounded
	clean.DeltaE = 0
	clean.DeltaF = 0
	clean.DeltaC = 0

	a, err := panel.Summarize(mustGenerate(t, confounded))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	b, err := panel.Summarize(mustGenerate(t, clean))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	t.Logf("naive correlation: confounded %.4f, confounding removed %.4f", a.NaiveCorr, b.NaiveCorr)
	if a.NaiveCorr <= b.NaiveCorr+0.03 {
		t.Errorf("confounding not visible: naive corr %.4f vs %.4f without trait paths", a.NaiveCorr, b.NaiveCorr)
	}
}

func TestMissingExposureWindowUnreachableButGuarded(t *testing.T) {
	g := mustGenerator(t, testParams(10, 8, 7))
	u := panel.User{UserID: 1}
	short := []panel.UserWeek{
		{UserID: 1, Week: 1, Confidence: 0.5, EditRate: 0.1},
		{UserID: 1, Week: 2, Confidence: 0.5, EditRate: 0.1},
	}
	if _, err := g.aggregateExposure(&u, short); !core.IsMissingExposureWindow(err) {
		t.Fatalf("expected missing exposure window error, got %v", err)
	}
}

func TestExposureWindowUsesFirstFourWeeks(t *testing.T) {
	g := mustGenerator(t, testParams(10, 8, 7))
	u := panel.User{UserID: 1}
	weeks := make([]panel.UserWeek, 8)
	for w := range weeks {
		weeks[w] = panel.UserWeek{UserID: 1, Week: w + 1, Confidence: 0.1, EditRate: 0.9}
	}
	// Only the window weeks should count.
	for w := 0; w < 4; w++ {
		weeks[w].Confidence = 0.5
		weeks[w].EditRate = 0.25
	}

	exp, err := g.aggregateExposure(&u, weeks)
	if err != nil {
		t.Fatalf("aggregateExposure failed: %v", err)
	}
	if math.Abs(exp.ConfMean-0.5) > 1e-12 || math.Abs(exp.EditMean-0.25) > 1e-12 {
		t.Fatalf("exposure means must cover weeks 1..4 only, got conf %g edit %g", exp.ConfMean, exp.EditMean)
	}
}
