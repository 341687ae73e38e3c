package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/lexicon"
	"github.com/shannong20/Evalytics-sub000/internal/repository"
	"github.com/shannong20/Evalytics-sub000/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the analytics report for one instructor as JSON",
		RunE:  runReport,
	}
	f := cmd.Flags()
	f.Int64("id", 0, "Instructor (evaluatee) user id (required)")
	f.String("start-date", "", "Earliest submission date, YYYY-MM-DD")
	f.String("end-date", "", "Latest submission date, YYYY-MM-DD")
	f.StringSlice("course-ids", nil, "Restrict to these course ids (repeatable or comma separated)")
	f.String("evaluator-type", "", "Restrict to student, faculty or supervisor evaluators")
	f.String("min-responses", "", "Low-sample threshold (default 5)")
	f.String("lexicon", "", "Path to a YAML sentiment lexicon")
	f.Bool("summary", false, "Print only the human-readable summary")
	f.Bool("pretty", true, "Indent JSON output")

	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	logger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw := analytics.RawFilter{
		StartDate:     v.GetString("start-date"),
		EndDate:       v.GetString("end-date"),
		CourseIDs:     v.GetStringSlice("course-ids"),
		EvaluatorType: v.GetString("evaluator-type"),
		MinResponses:  v.GetString("min-responses"),
	}
	f, err := analytics.ParseFilter(v.GetInt64("id"), raw)
	if err != nil {
		return err
	}

	lex := lexicon.MustDefault()
	if path := v.GetString("lexicon"); path != "" {
		if lex, err = lexicon.Load(path); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	db, caps, err := openDB(ctx, v, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewAnalyticsService(repository.NewEvaluationRepository(db, caps), analytics.New(lex), logger)
	report, err := svc.InstructorReport(ctx, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool("summary") {
		_, err = fmt.Fprintln(out, strings.TrimSpace(report.HumanSummary))
		return err
	}

	enc := json.NewEncoder(out)
	if v.GetBool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
