package analytics

import "sort"

const (
	LabelExcellent        = "Excellent"
	LabelGood             = "Good"
	LabelSatisfactory     = "Satisfactory"
	LabelNeedsImprovement = "Needs Improvement"
	LabelNotAvailable     = "N/A"
)

// PerformanceLabel maps an average rating onto the reporting scale.
func PerformanceLabel(avg *float64) string {
	switch {
	case avg == nil:
		return LabelNotAvailable
	case *avg >= 4.5:
		return LabelExcellent
	case *avg >= 4.0:
		return LabelGood
	case *avg >= 3.5:
		return LabelSatisfactory
	default:
		return LabelNeedsImprovement
	}
}

// ComputeTopline summarizes the evaluation scores.
func ComputeTopline(scored []ScoredEvaluation) Topline {
	xs := scoresOf(scored)
	avg := mean(xs)
	sd := sampleStdDev(xs)
	return Topline{
		EvaluationsCount: len(xs),
		OverallAverage:   avg,
		StdDev:           sd,
		Min:              minOf(xs),
		Max:              maxOf(xs),
		Median:           percentile(xs, 50),
		MarginOfError:    marginOfError(sd, len(xs)),
		PerformanceLabel: PerformanceLabel(avg),
	}
}

// CategoryBreakdown aggregates responses per category, ordered by category id.
func CategoryBreakdown(responses []ResponseRecord, minResponses int) []CategoryStat {
	groups := make(map[int64][]ResponseRecord)
	for _, r := range responses {
		groups[r.CategoryID] = append(groups[r.CategoryID], r)
	}

	out := make([]CategoryStat, 0, len(groups))
	for id, rs := range groups {
		sortResponses(rs)
		var weighted, total float64
		ratings := make([]float64, len(rs))
		for i, r := range rs {
			w := r.effectiveWeight()
			weighted += r.Rating * w
			total += w
			ratings[i] = r.Rating
		}
		var avg *float64
		if total > 0 {
			v := weighted / total
			avg = &v
		}
		out = append(out, CategoryStat{
			CategoryID:       id,
			Name:             rs[0].CategoryName,
			WeightedAverage:  avg,
			ResponseCount:    len(rs),
			StdDev:           sampleStdDev(ratings),
			PerformanceLabel: PerformanceLabel(avg),
			LowSample:        len(rs) < minResponses,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out
}

// QuestionStatistics aggregates responses per question, ordered by question id.
func QuestionStatistics(responses []ResponseRecord, minResponses int) []QuestionStat {
	groups := make(map[int64][]ResponseRecord)
	for _, r := range responses {
		groups[r.QuestionID] = append(groups[r.QuestionID], r)
	}

	out := make([]QuestionStat, 0, len(groups))
	for id, rs := range groups {
		sortResponses(rs)
		ratings := make([]float64, len(rs))
		var below3, atLeast45 int
		for i, r := range rs {
			ratings[i] = r.Rating
			if r.Rating < 3 {
				below3++
			}
			if r.Rating >= 4.5 {
				atLeast45++
			}
		}
		avg := mean(ratings)
		qs := QuestionStat{
			QuestionID:       id,
			Text:             rs[0].QuestionText,
			CategoryID:       rs[0].CategoryID,
			CategoryName:     rs[0].CategoryName,
			Average:          avg,
			StdDev:           sampleStdDev(ratings),
			ResponseCount:    len(rs),
			LowSample:        len(rs) < minResponses,
			PerformanceLabel: PerformanceLabel(avg),
		}
		if n := len(rs); n > 0 {
			qs.PctBelow3 = 100 * float64(below3) / float64(n)
			qs.PctAtLeast45 = 100 * float64(atLeast45) / float64(n)
		}
		out = append(out, qs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// RankQuestions returns the n highest and n lowest average questions. Questions
// without responses never rank; ties are broken by ascending question id.
func RankQuestions(stats []QuestionStat, n int) (top, bottom []QuestionStat) {
	ranked := make([]QuestionStat, 0, len(stats))
	for _, q := range stats {
		if q.ResponseCount > 0 && q.Average != nil {
			ranked = append(ranked, q)
		}
	}

	top = append([]QuestionStat(nil), ranked...)
	sort.SliceStable(top, func(i, j int) bool {
		if *top[i].Average != *top[j].Average {
			return *top[i].Average > *top[j].Average
		}
		return top[i].QuestionID < top[j].QuestionID
	})

	bottom = append([]QuestionStat(nil), ranked...)
	sort.SliceStable(bottom, func(i, j int) bool {
		if *bottom[i].Average != *bottom[j].Average {
			return *bottom[i].Average < *bottom[j].Average
		}
		return bottom[i].QuestionID < bottom[j].QuestionID
	})

	return truncate(top, n), truncate(bottom, n)
}

func truncate(qs []QuestionStat, n int) []QuestionStat {
	if len(qs) > n {
		qs = qs[:n]
	}
	if qs == nil {
		qs = make([]QuestionStat, 0)
	}
	return qs
}

// sortResponses fixes the summation order so results do not depend on input order.
func sortResponses(rs []ResponseRecord) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.EvaluationID != b.EvaluationID {
			return a.EvaluationID < b.EvaluationID
		}
		if a.QuestionID != b.QuestionID {
			return a.QuestionID < b.QuestionID
		}
		if a.Rating != b.Rating {
			return a.Rating < b.Rating
		}
		return a.effectiveWeight() < b.effectiveWeight()
	})
}
