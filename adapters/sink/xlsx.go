package sink

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"causalpanel/domain/panel"
)

// WriteXLSX writes the dataset as one workbook with sheets users,
// user_weeks and ground_truth.
func WriteXLSX(ctx context.Context, path string, t *panel.Tables) error {
	f := excelize.NewFile()

	// Rename the default sheet instead of leaving an empty Sheet1 behind.
	if err := f.SetSheetName("Sheet1", "users"); err != nil {
		return err
	}

	userRows := make([][]string, len(t.Users))
	for i, u := range t.Users {
		userRows[i] = userRow(u)
	}
	if err := writeSheet(ctx, f, "users", userHeaders(), userRows); err != nil {
		return err
	}

	if _, err := f.NewSheet("user_weeks"); err != nil {
		return err
	}
	weekRows := make([][]string, len(t.UserWeeks))
	for i, uw := range t.UserWeeks {
		weekRows[i] = userWeekRow(uw, t.HasVolume)
	}
	if err := writeSheet(ctx, f, "user_weeks", userWeekHeaders(t.HasVolume), weekRows); err != nil {
		return err
	}

	if _, err := f.NewSheet("ground_truth"); err != nil {
		return err
	}
	if err := writeSheet(ctx, f, "ground_truth", groundTruthHeaders(), [][]string{groundTruthRow(t)}); err != nil {
		return err
	}

	if idx, err := f.GetSheetIndex("users"); err == nil && idx != -1 {
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(ctx context.Context, f *excelize.File, sheet string, headers []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func groundTruthHeaders() []string {
	return []string{"tau_e", "tau_r", "kappa_r", "mediated_effect", "total_effect", "omega", "seed", "sign_convention", "run_id", "params_fingerprint"}
}

func groundTruthRow(t *panel.Tables) []string {
	gt := t.GroundTruth
	return []string{
		fStr(gt.TauE), fStr(gt.TauR), fStr(gt.KappaR),
		fStr(gt.MediatedEffect), fStr(gt.TotalEffect), fStr(gt.Omega),
		fmt.Sprintf("%d", gt.Seed), gt.SignConvention,
		t.Manifest.RunID.String(), t.Manifest.Fingerprint.String(),
	}
}
