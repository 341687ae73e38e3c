package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateSeedReport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "evalytics.db")

	out, err := run(t, "migrate", "--db", db, "--to", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")

	out, err = run(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2 (1 applied)")

	out, err = run(t, "seed", "--db", db, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "instructor 1: Amara Nwosu")

	out, err = run(t, "report", "--db", db, "--id", "1", "--pretty=false")
	require.NoError(t, err)

	var report struct {
		HumanSummary string `json:"human_summary"`
		JSONOutput   struct {
			Professor struct {
				FullName   string  `json:"full_name"`
				Department *string `json:"department"`
			} `json:"professor"`
			Topline struct {
				EvaluationsCount int `json:"evaluations_count"`
			} `json:"topline"`
			Trend []struct {
				Label string `json:"label"`
			} `json:"trend"`
		} `json:"json_output"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Amara Nwosu", report.JSONOutput.Professor.FullName)
	require.NotNil(t, report.JSONOutput.Professor.Department)
	assert.Equal(t, "Computer Science", *report.JSONOutput.Professor.Department)
	assert.Positive(t, report.JSONOutput.Topline.EvaluationsCount)
	assert.Len(t, report.JSONOutput.Trend, 4)
	assert.Contains(t, report.HumanSummary, "Amara Nwosu received")

	out, err = run(t, "report", "--db", db, "--id", "2", "--evaluator-type", "faculty", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Daniel Kowalski")
}

func TestReportErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "evalytics.db")

	_, err := run(t, "report", "--db", db, "--id", "99")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "report", "--db", db, "--id", "1", "--start-date", "2024-13-01")
	assert.ErrorContains(t, err, "start_date")

	_, err = run(t, "report", "--db", db)
	assert.Error(t, err)
}

func TestReportEvaluatorTypes(t *testing.T) {
	usage := reportCmd().Flags().Lookup("evaluator-type").Usage
	for _, et := range []string{"student", "faculty", "supervisor"} {
		assert.Contains(t, usage, et)
	}

	db := filepath.Join(t.TempDir(), "evalytics.db")
	_, err := run(t, "seed", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "report", "--db", db, "--id", "1", "--evaluator-type", "Supervisor")
	require.NoError(t, err)
	assert.Contains(t, out, "json_output")
}

func TestRating(t *testing.T) {
	assert.Equal(t, 1.0, rating(-3))
	assert.Equal(t, 5.0, rating(7.2))
	assert.Equal(t, 3.5, rating(3.4))
	assert.Equal(t, 4.0, rating(4.1))
}
