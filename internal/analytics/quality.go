package analytics

import "sort"

// AuditInput collects the prior-stage outputs the auditor inspects.
type AuditInput struct {
	Scored       []ScoredEvaluation
	Duplicates   []int64
	Responses    []ResponseRecord
	Categories   []CategoryStat
	Questions    []QuestionStat
	MinResponses int
}

// Audit flags anomalies in the filtered data set.
func Audit(in AuditInput) DataQuality {
	dq := DataQuality{
		MinResponses:                    in.MinResponses,
		EvaluationsWithMissingResponses: make([]int64, 0),
		DuplicateEvaluationIDs:          append(make([]int64, 0, len(in.Duplicates)), in.Duplicates...),
		UnweightedQuestions:             make([]int64, 0),
		LowSampleCategories:             make([]LowSampleEntry, 0),
		LowSampleQuestions:              make([]LowSampleEntry, 0),
	}

	for _, s := range in.Scored {
		if s.ResponsesCount == 0 {
			dq.EvaluationsWithMissingResponses = append(dq.EvaluationsWithMissingResponses, s.Record.EvaluationID)
		}
		if s.Fallback {
			dq.FallbackScoreCount++
		}
	}
	sort.Slice(dq.EvaluationsWithMissingResponses, func(i, j int) bool {
		return dq.EvaluationsWithMissingResponses[i] < dq.EvaluationsWithMissingResponses[j]
	})
	dq.AllScoresFallback = len(in.Scored) > 0 && len(dq.EvaluationsWithMissingResponses) == len(in.Scored)

	seen := make(map[int64]bool)
	for _, r := range in.Responses {
		if r.unweighted() && !seen[r.QuestionID] {
			seen[r.QuestionID] = true
			dq.UnweightedQuestions = append(dq.UnweightedQuestions, r.QuestionID)
		}
	}
	sort.Slice(dq.UnweightedQuestions, func(i, j int) bool {
		return dq.UnweightedQuestions[i] < dq.UnweightedQuestions[j]
	})

	for _, c := range in.Categories {
		if c.LowSample {
			dq.LowSampleCategories = append(dq.LowSampleCategories, LowSampleEntry{
				ID: c.CategoryID, Name: c.Name, ResponseCount: c.ResponseCount,
			})
		}
	}
	for _, q := range in.Questions {
		if q.LowSample {
			dq.LowSampleQuestions = append(dq.LowSampleQuestions, LowSampleEntry{
				ID: q.QuestionID, Name: q.Text, ResponseCount: q.ResponseCount,
			})
		}
	}
	return dq
}
