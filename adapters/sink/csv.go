package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"causalpanel/domain/panel"
)

// WriteCSV writes the dataset into dir: users.csv, user_weeks.csv, plus
// ground_truth.json and manifest.json. The directory is created if missing.
func WriteCSV(ctx context.Context, dir string, t *panel.Tables) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	userRows := make([][]string, len(t.Users))
	for i, u := range t.Users {
		userRows[i] = userRow(u)
	}
	if err := writeCSVFile(ctx, filepath.Join(dir, "users.csv"), userHeaders(), userRows); err != nil {
		return err
	}

	weekRows := make([][]string, len(t.UserWeeks))
	for i, uw := range t.UserWeeks {
		weekRows[i] = userWeekRow(uw, t.HasVolume)
	}
	if err := writeCSVFile(ctx, filepath.Join(dir, "user_weeks.csv"), userWeekHeaders(t.HasVolume), weekRows); err != nil {
		return err
	}

	if err := writeJSONFile(filepath.Join(dir, "ground_truth.json"), t.GroundTruth); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, "manifest.json"), t.Manifest)
}

func writeCSVFile(ctx context.Context, path string, headers []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
