// Package panel defines the tabular output of a generation run: the
// user-level table carrying latent traits and the retention label, and the
// user-week table carrying weekly confidence and edit rates. Both tables
// share user_id as the foreign key.
package panel

import (
	"causalpanel/domain/run"
)

// User is one row of the user-level table. Latent traits are drawn once at
// generation start and never change; Wk4Retention is computed once, after
// all exposure-window weeks exist.
type User struct {
	UserID int `json:"user_id" db:"user_id"`

	// Raw latent confounders
	Engagement float64 `json:"E" db:"engagement"`
	Complexity float64 `json:"C" db:"complexity"`
	Feed       float64 `json:"F" db:"feed"`

	// Standardized over the generated population: mean 0, population std 1.
	// Re-running with a different population size changes these even when
	// the raw marginal parameters are identical.
	EngagementStd float64 `json:"E_std" db:"engagement_std"`
	ComplexityStd float64 `json:"C_std" db:"complexity_std"`
	FeedStd       float64 `json:"F_std" db:"feed_std"`

	// Wk4Retention is the binary activity indicator at the conceptual
	// retention week (t0+4). No UserWeek row exists for that week.
	Wk4Retention int `json:"wk4_retention" db:"wk4_retention"`
}

// UserWeek is one row of the user-week table, keyed by (user_id, week).
// Rows are created in week order per user: with feedback enabled, week t+1's
// confidence latent reads week t's observed edit rate.
type UserWeek struct {
	UserID int `json:"user_id" db:"user_id"`
	Week   int `json:"week" db:"week"`

	// NTxn is meaningful only when Tables.HasVolume is set; sinks omit the
	// column otherwise.
	NTxn int `json:"n_txn" db:"n_txn"`

	Confidence float64 `json:"confidence" db:"confidence"`
	EditRate   float64 `json:"edit_rate" db:"edit_rate"`
}

// ExposureSummary reduces one user's exposure-window weeks to scalars. It is
// derived, never persisted as its own table, and consumed only by the
// retention model.
type ExposureSummary struct {
	UserID   int
	ConfMean float64
	EditMean float64
}

// Tables is the assembled output of one generation run: both tables, the
// ground-truth effect record, and the run manifest.
type Tables struct {
	Users     []User     `json:"users"`
	UserWeeks []UserWeek `json:"user_weeks"`

	// HasVolume reports whether transaction volume was simulated.
	HasVolume bool `json:"has_volume"`

	GroundTruth run.GroundTruth `json:"ground_truth"`
	Manifest    run.Manifest    `json:"manifest"`
}

// WeeksPerUser returns the number of user-week rows per user.
func (t *Tables) WeeksPerUser() int {
	if len(t.Users) == 0 {
		return 0
	}
	return len(t.UserWeeks) / len(t.Users)
}

// UserWeeksOf returns the user-week rows of the i-th user (0-based slice
// index, not user_id). Valid only on validated tables, where every user has
// the same number of week rows in week order.
func (t *Tables) UserWeeksOf(i int) []UserWeek {
	w := t.WeeksPerUser()
	return t.UserWeeks[i*w : (i+1)*w]
}
