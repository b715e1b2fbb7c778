package sink

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // database/sql driver

	"causalpanel/domain/panel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id        INTEGER PRIMARY KEY,
	engagement     REAL NOT NULL,
	complexity     REAL NOT NULL,
	feed           REAL NOT NULL,
	engagement_std REAL NOT NULL,
	complexity_std REAL NOT NULL,
	feed_std       REAL NOT NULL,
	wk4_retention  INTEGER NOT NULL CHECK (wk4_retention IN (0, 1))
);

CREATE TABLE IF NOT EXISTS user_weeks (
	user_id    INTEGER NOT NULL REFERENCES users(user_id),
	week       INTEGER NOT NULL CHECK (week >= 1),
	n_txn      INTEGER CHECK (n_txn >= 0),
	confidence REAL NOT NULL CHECK (confidence > 0 AND confidence < 1),
	edit_rate  REAL NOT NULL CHECK (edit_rate > 0 AND edit_rate < 1),
	PRIMARY KEY (user_id, week)
);

CREATE TABLE IF NOT EXISTS ground_truth (
	run_id             TEXT PRIMARY KEY,
	params_fingerprint TEXT NOT NULL,
	seed               INTEGER NOT NULL,
	tau_e              REAL NOT NULL,
	tau_r              REAL NOT NULL,
	kappa_r            REAL NOT NULL,
	mediated_effect    REAL NOT NULL,
	total_effect       REAL NOT NULL,
	omega              REAL NOT NULL,
	sign_convention    TEXT NOT NULL,
	created_at         TEXT NOT NULL
);
`

// WriteSQLite writes the dataset into one SQLite database file. One writer
// connection, single transaction: the file either holds the full dataset or
// nothing.
func WriteSQLite(ctx context.Context, path string, t *panel.Tables) error {
	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	insertUser, err := tx.PreparexContext(ctx,
		`INSERT INTO users (user_id, engagement, complexity, feed, engagement_std, complexity_std, feed_std, wk4_retention)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare users insert: %w", err)
	}
	for _, u := range t.Users {
		if _, err := insertUser.ExecContext(ctx,
			u.UserID, u.Engagement, u.Complexity, u.Feed,
			u.EngagementStd, u.ComplexityStd, u.FeedStd, u.Wk4Retention); err != nil {
			return fmt.Errorf("insert user %d: %w", u.UserID, err)
		}
	}

	insertWeek, err := tx.PreparexContext(ctx,
		`INSERT INTO user_weeks (user_id, week, n_txn, confidence, edit_rate)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare user_weeks insert: %w", err)
	}
	for _, uw := range t.UserWeeks {
		var nTxn any
		if t.HasVolume {
			nTxn = uw.NTxn
		}
		if _, err := insertWeek.ExecContext(ctx, uw.UserID, uw.Week, nTxn, uw.Confidence, uw.EditRate); err != nil {
			return fmt.Errorf("insert user_week (%d,%d): %w", uw.UserID, uw.Week, err)
		}
	}

	gt := t.GroundTruth
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ground_truth (run_id, params_fingerprint, seed, tau_e, tau_r, kappa_r, mediated_effect, total_effect, omega, sign_convention, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Manifest.RunID.String(), t.Manifest.Fingerprint.String(), gt.Seed,
		gt.TauE, gt.TauR, gt.KappaR, gt.MediatedEffect, gt.TotalEffect, gt.Omega,
		gt.SignConvention, t.Manifest.CreatedAt.Time().Format("2006-01-02T15:04:05.000Z07:00")); err != nil {
		return fmt.Errorf("insert ground_truth: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite transaction: %w", err)
	}
	return nil
}
