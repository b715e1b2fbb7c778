package panel

import (
	"math"
	"testing"

	"causalpanel/domain/core"
)

func TestSummarizeComputesMeans(t *testing.T) {
	tbl := testTables(3, 4)

	s, err := Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.Users != 3 || s.Weeks != 4 {
		t.Errorf("Unexpected shape: %d users, %d weeks", s.Users, s.Weeks)
	}
	if math.Abs(s.MeanConfidence-0.5) > 1e-12 {
		t.Errorf("Expected mean confidence 0.5, got %v", s.MeanConfidence)
	}
	if math.Abs(s.MeanEditRate-0.1) > 1e-12 {
		t.Errorf("Expected mean edit rate 0.1, got %v", s.MeanEditRate)
	}
	// Retention pattern is 1,0,1 over three users.
	if math.Abs(s.RetentionRate-2.0/3.0) > 1e-12 {
		t.Errorf("Expected retention rate 2/3, got %v", s.RetentionRate)
	}
	// All users share one conf_mean, so the naive correlation is undefined
	// and reported as zero.
	if s.NaiveCorr != 0 {
		t.Errorf("Expected zero correlation for constant confidence, got %v", s.NaiveCorr)
	}
}

func TestSummarizeTracksVaryingConfidence(t *testing.T) {
	tbl := testTables(2, 4)
	for i := range tbl.UserWeeks {
		if tbl.UserWeeks[i].UserID == 2 {
			tbl.UserWeeks[i].Confidence = 0.9
		}
	}
	// Retained user has the higher exposure confidence.
	tbl.Users[0].Wk4Retention = 0
	tbl.Users[1].Wk4Retention = 1

	s, err := Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.NaiveCorr < 0.99 {
		t.Errorf("Expected perfect positive naive correlation, got %v", s.NaiveCorr)
	}
}

func TestSummarizeRejectsMissingWindow(t *testing.T) {
	tbl := testTables(2, 4)
	// Shift the manifest's index week so the window 2..5 exceeds the table.
	tbl.Manifest.T0Week = 2

	_, err := Summarize(tbl)
	if err == nil {
		t.Fatal("Expected missing exposure window error, got nil")
	}
	if !core.IsMissingExposureWindow(err) {
		t.Errorf("Expected missing exposure window classification, got %v", err)
	}
}

func TestSummarizeRejectsEmpty(t *testing.T) {
	if _, err := Summarize(&Tables{}); err == nil {
		t.Error("Expected error for empty tables")
	}
}
