package panel

import (
	"github.com/montanaflynn/stats"

	"causalpanel/domain/core"
	"causalpanel/domain/params"
)

// Summary holds descriptive statistics of an assembled dataset. The CLI logs
// it and the distributional guardrail tests assert on it; generation never
// reads it back.
type Summary struct {
	Users          int     `json:"n_users"`
	Weeks          int     `json:"n_weeks"`
	MeanConfidence float64 `json:"mean_confidence"`
	MeanEditRate   float64 `json:"mean_edit_rate"`
	RetentionRate  float64 `json:"retention_rate"`

	// NaiveCorr is the unconditioned correlation between exposure-window
	// mean confidence and the retention label. Engineered confounding makes
	// it diverge from what the direct effect alone would produce.
	NaiveCorr float64 `json:"naive_conf_retention_corr"`
}

// Summarize computes descriptive statistics over assembled, validated
// tables.
func Summarize(t *Tables) (Summary, error) {
	if len(t.Users) == 0 || len(t.UserWeeks) == 0 {
		return Summary{}, core.NewValidationError("summary", "tables are empty")
	}

	conf := make([]float64, len(t.UserWeeks))
	edit := make([]float64, len(t.UserWeeks))
	for i, uw := range t.UserWeeks {
		conf[i] = uw.Confidence
		edit[i] = uw.EditRate
	}

	retention := make([]float64, len(t.Users))
	for i, u := range t.Users {
		retention[i] = float64(u.Wk4Retention)
	}

	t0 := t.Manifest.T0Week
	confMeans := make([]float64, len(t.Users))
	for i := range t.Users {
		window := make([]float64, 0, params.ExposureWindowWeeks)
		for _, uw := range t.UserWeeksOf(i) {
			if uw.Week >= t0 && uw.Week < t0+params.ExposureWindowWeeks {
				window = append(window, uw.Confidence)
			}
		}
		if len(window) != params.ExposureWindowWeeks {
			return Summary{}, core.NewMissingExposureWindowError(i+1, len(window), params.ExposureWindowWeeks)
		}
		m, _ := stats.Mean(window)
		confMeans[i] = m
	}

	meanConf, _ := stats.Mean(conf)
	meanEdit, _ := stats.Mean(edit)
	retRate, _ := stats.Mean(retention)

	naive, err := stats.Correlation(confMeans, retention)
	if err != nil {
		// degenerate retention split, correlation undefined
		naive = 0
	}

	return Summary{
		Users:          len(t.Users),
		Weeks:          t.WeeksPerUser(),
		MeanConfidence: meanConf,
		MeanEditRate:   meanEdit,
		RetentionRate:  retRate,
		NaiveCorr:      naive,
	}, nil
}
