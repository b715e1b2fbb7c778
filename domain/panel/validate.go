package panel

import (
	"fmt"
	"math"

	"causalpanel/domain/core"
)

// Validation mirrors the sanity layer of the dataset: every generation run
// checks its assembled tables before returning them. A failure here is an
// invariant violation in the generator, not a recoverable user condition.

func requireFinite(table, col string, row int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return core.NewValidationError(table, fmt.Sprintf("column %s not finite at row %d", col, row))
	}
	return nil
}

func requireOpenUnit(table, col string, row int, v float64) error {
	if !(v > 0 && v < 1) {
		return core.NewValidationError(table,
			fmt.Sprintf("column %s out of open interval (0,1) at row %d: %g", col, row, v))
	}
	return nil
}

// ValidateUsers checks the user-level table: contiguous 1-based user IDs,
// finite traits, feed quality inside [0,1], and a binary retention label.
func ValidateUsers(users []User) error {
	if len(users) == 0 {
		return core.NewValidationError("users", "table is empty")
	}
	for i, u := range users {
		if u.UserID != i+1 {
			return core.NewValidationError("users",
				fmt.Sprintf("user_id must be contiguous from 1, got %d at row %d", u.UserID, i))
		}
		cols := [...]struct {
			name string
			v    float64
		}{
			{"E", u.Engagement}, {"C", u.Complexity}, {"F", u.Feed},
			{"E_std", u.EngagementStd}, {"C_std", u.ComplexityStd}, {"F_std", u.FeedStd},
		}
		for _, c := range cols {
			if err := requireFinite("users", c.name, i, c.v); err != nil {
				return err
			}
		}
		if u.Engagement <= 0 || u.Complexity <= 0 {
			return core.NewValidationError("users",
				fmt.Sprintf("lognormal traits must be positive at row %d", i))
		}
		if u.Feed < 0 || u.Feed > 1 {
			return core.NewValidationError("users",
				fmt.Sprintf("column F out of range [0,1] at row %d: %g", i, u.Feed))
		}
		if u.Wk4Retention != 0 && u.Wk4Retention != 1 {
			return core.NewValidationError("users",
				fmt.Sprintf("column wk4_retention must be 0 or 1 at row %d: %d", i, u.Wk4Retention))
		}
	}
	return nil
}

// ValidateUserWeeks checks the user-week table: rows ordered by
// (user_id, week) with weeks contiguous in 1..weeks per user, weekly rates
// strictly inside (0,1), and non-negative volume when simulated.
func ValidateUserWeeks(userWeeks []UserWeek, users, weeks int, hasVolume bool) error {
	if len(userWeeks) != users*weeks {
		return core.NewValidationError("user_week",
			fmt.Sprintf("expected %d rows (%d users x %d weeks), got %d", users*weeks, users, weeks, len(userWeeks)))
	}
	for i, uw := range userWeeks {
		wantUser := i/weeks + 1
		wantWeek := i%weeks + 1
		if uw.UserID != wantUser || uw.Week != wantWeek {
			return core.NewValidationError("user_week",
				fmt.Sprintf("row %d out of (user_id, week) order: got (%d,%d), want (%d,%d)",
					i, uw.UserID, uw.Week, wantUser, wantWeek))
		}
		if err := requireOpenUnit("user_week", "confidence", i, uw.Confidence); err != nil {
			return err
		}
		if err := requireOpenUnit("user_week", "edit_rate", i, uw.EditRate); err != nil {
			return err
		}
		if hasVolume && uw.NTxn < 0 {
			return core.NewValidationError("user_week", "'n_txn' must be non-negative")
		}
	}
	return nil
}

// Validate checks the assembled tables and their manifest as a unit.
func (t *Tables) Validate() error {
	if err := ValidateUsers(t.Users); err != nil {
		return err
	}
	if err := ValidateUserWeeks(t.UserWeeks, len(t.Users), t.Manifest.Weeks, t.HasVolume); err != nil {
		return err
	}
	if len(t.Users) != t.Manifest.Users {
		return core.NewValidationError("manifest",
			fmt.Sprintf("manifest says %d users, tables carry %d", t.Manifest.Users, len(t.Users)))
	}
	return t.Manifest.Validate()
}
