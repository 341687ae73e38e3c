package analytics

// ScoreEvaluations computes one score per evaluation. The score is the
// weight-normalized mean of the evaluation's ratings; evaluations without
// responses (or with no usable weight) fall back to their stored OverallScore.
func ScoreEvaluations(evals []EvaluationRecord, responses []ResponseRecord) []ScoredEvaluation {
	byEval := groupResponses(responses)

	out := make([]ScoredEvaluation, 0, len(evals))
	for _, e := range evals {
		se := ScoredEvaluation{Record: e}
		for _, r := range byEval[e.EvaluationID] {
			w := r.effectiveWeight()
			se.WeightedSum += r.Rating * w
			se.WeightTotal += w
			se.ResponsesCount++
		}
		if se.WeightTotal > 0 && se.ResponsesCount > 0 {
			se.Score = se.WeightedSum / se.WeightTotal
		} else {
			se.Score = e.OverallScore
			se.Fallback = true
		}
		out = append(out, se)
	}
	return out
}

func groupResponses(responses []ResponseRecord) map[int64][]ResponseRecord {
	byEval := make(map[int64][]ResponseRecord)
	for _, r := range responses {
		byEval[r.EvaluationID] = append(byEval[r.EvaluationID], r)
	}
	for _, rs := range byEval {
		sortResponses(rs)
	}
	return byEval
}

// responsesFor keeps only the responses that belong to evals.
func responsesFor(evals []EvaluationRecord, responses []ResponseRecord) []ResponseRecord {
	ids := make(map[int64]struct{}, len(evals))
	for _, e := range evals {
		ids[e.EvaluationID] = struct{}{}
	}
	out := make([]ResponseRecord, 0, len(responses))
	for _, r := range responses {
		if _, ok := ids[r.EvaluationID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func scoresOf(scored []ScoredEvaluation) []float64 {
	out := make([]float64, len(scored))
	for i, s := range scored {
		out[i] = s.Score
	}
	return out
}
