package analytics

import (
	"fmt"
	"math"
	"strings"
)

// ComposeInput gathers every stage result needed to build the report.
type ComposeInput struct {
	Profile      ProfessorProfile
	Scored       []ScoredEvaluation
	Topline      Topline
	Categories   []CategoryStat
	Questions    []QuestionStat
	Top          []QuestionStat
	Bottom       []QuestionStat
	Trend        []TrendPoint
	Comments     CommentsSummary
	Quality      DataQuality
	MinResponses int
}

// Compose renders the narrative summary, the structured output and the chart
// datasets. Narrative decisions use unrounded values; the structured output is
// rounded to two decimals.
func Compose(in ComposeInput) *Report {
	out := Output{
		Professor:         in.Profile,
		Topline:           roundTopline(in.Topline),
		CategoryBreakdown: roundCategories(in.Categories),
		QuestionStats:     roundQuestions(in.Questions),
		Trend:             roundTrend(in.Trend),
		TopQuestions:      roundQuestions(in.Top),
		BottomQuestions:   roundQuestions(in.Bottom),
		Comments:          in.Comments,
		DataQuality:       in.Quality,
	}

	charts := ChartDatasets{
		CategoryBar:   make([]ChartPoint, 0, len(out.CategoryBreakdown)),
		TrendLine:     make([]ChartPoint, 0, len(out.Trend)),
		DetailedTable: out.QuestionStats,
	}
	for _, c := range out.CategoryBreakdown {
		charts.CategoryBar = append(charts.CategoryBar, ChartPoint{Label: c.Name, Value: c.WeightedAverage})
	}
	for _, t := range out.Trend {
		charts.TrendLine = append(charts.TrendLine, ChartPoint{Label: t.Label, Value: t.Average})
	}

	return &Report{
		HumanSummary:  humanSummary(in),
		JSONOutput:    out,
		ChartDatasets: charts,
		Scores:        in.Scored,
	}
}

func humanSummary(in ComposeInput) string {
	name := in.Profile.FullName
	if name == "" {
		name = fmt.Sprintf("Instructor %d", in.Profile.UserID)
	}
	tl := in.Topline

	var sentences []string
	if tl.EvaluationsCount == 0 || tl.OverallAverage == nil {
		sentences = append(sentences, fmt.Sprintf("%s has no evaluations matching the selected filters.", name))
	} else {
		sentences = append(sentences, fmt.Sprintf(
			"%s received %s with an overall average of %.2f (min %.2f, max %.2f, median %.2f).",
			name, plural(tl.EvaluationsCount, "evaluation"), *tl.OverallAverage, *tl.Min, *tl.Max, *tl.Median))
	}

	if s := trendSentence(in.Trend); s != "" {
		sentences = append(sentences, s)
	}

	strongest, weakest := qualifyingExtremes(in.Categories)
	switch {
	case weakest == nil:
		sentences = append(sentences, fmt.Sprintf(
			"No category reached the minimum of %d responses needed for a strength comparison.", in.MinResponses))
		sentences = append(sentences, fmt.Sprintf(
			"Recommendation: collect more responses so that categories reach at least %d responses before drawing conclusions.", in.MinResponses))
	case strongest.CategoryID == weakest.CategoryID:
		sentences = append(sentences, fmt.Sprintf(
			"%s was the only category with at least %d responses, averaging %.2f.",
			weakest.Name, in.MinResponses, *weakest.WeightedAverage))
		sentences = append(sentences, recommendation(*weakest))
	default:
		sentences = append(sentences, fmt.Sprintf(
			"The strongest category was %s (%.2f) and the weakest was %s (%.2f).",
			strongest.Name, *strongest.WeightedAverage, weakest.Name, *weakest.WeightedAverage))
		sentences = append(sentences, recommendation(*weakest))
	}

	if tl.MarginOfError != nil {
		sentences = append(sentences, fmt.Sprintf(
			"The overall average carries a 95%% margin of error of ±%.2f, and categories or questions with fewer than %d responses are flagged as low sample.",
			*tl.MarginOfError, in.MinResponses))
	} else {
		sentences = append(sentences, fmt.Sprintf(
			"A margin of error cannot be computed from fewer than two evaluations, and categories or questions with fewer than %d responses are flagged as low sample.",
			in.MinResponses))
	}

	if in.Quality.AllScoresFallback {
		sentences = append(sentences,
			"Note: none of these evaluations had per-question responses, so every score fell back to the stored overall score.")
	}

	return strings.Join(sentences, " ")
}

func trendSentence(trend []TrendPoint) string {
	if len(trend) < 2 {
		return ""
	}
	prev, last := trend[len(trend)-2], trend[len(trend)-1]
	if prev.Average == nil || last.Average == nil {
		return ""
	}
	delta := round2(*last.Average - *prev.Average)
	switch {
	case delta > 0:
		return fmt.Sprintf("Scores rose by %.2f from %s (%.2f) to %s (%.2f).",
			delta, prev.Label, *prev.Average, last.Label, *last.Average)
	case delta < 0:
		return fmt.Sprintf("Scores fell by %.2f from %s (%.2f) to %s (%.2f).",
			math.Abs(delta), prev.Label, *prev.Average, last.Label, *last.Average)
	default:
		return fmt.Sprintf("Scores held steady at %.2f from %s to %s.", *last.Average, prev.Label, last.Label)
	}
}

// qualifyingExtremes picks the highest and lowest categories among those that
// meet the sample threshold. Ties go to the lower category id.
func qualifyingExtremes(cats []CategoryStat) (strongest, weakest *CategoryStat) {
	for i := range cats {
		c := &cats[i]
		if c.LowSample || c.WeightedAverage == nil {
			continue
		}
		if strongest == nil || *c.WeightedAverage > *strongest.WeightedAverage {
			strongest = c
		}
		if weakest == nil || *c.WeightedAverage < *weakest.WeightedAverage {
			weakest = c
		}
	}
	return strongest, weakest
}

func recommendation(weakest CategoryStat) string {
	return fmt.Sprintf("Recommendation: prioritize improvement in %s, currently rated %s.",
		weakest.Name, strings.ToLower(weakest.PerformanceLabel))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func roundTopline(t Topline) Topline {
	t.OverallAverage = round2p(t.OverallAverage)
	t.StdDev = round2p(t.StdDev)
	t.Min = round2p(t.Min)
	t.Max = round2p(t.Max)
	t.Median = round2p(t.Median)
	t.MarginOfError = round2p(t.MarginOfError)
	return t
}

func roundCategories(cs []CategoryStat) []CategoryStat {
	out := make([]CategoryStat, len(cs))
	for i, c := range cs {
		c.WeightedAverage = round2p(c.WeightedAverage)
		c.StdDev = round2p(c.StdDev)
		out[i] = c
	}
	return out
}

func roundQuestions(qs []QuestionStat) []QuestionStat {
	out := make([]QuestionStat, len(qs))
	for i, q := range qs {
		q.Average = round2p(q.Average)
		q.StdDev = round2p(q.StdDev)
		q.PctBelow3 = round2(q.PctBelow3)
		q.PctAtLeast45 = round2(q.PctAtLeast45)
		out[i] = q
	}
	return out
}

func roundTrend(ts []TrendPoint) []TrendPoint {
	out := make([]TrendPoint, len(ts))
	for i, t := range ts {
		t.Average = round2p(t.Average)
		out[i] = t
	}
	return out
}
