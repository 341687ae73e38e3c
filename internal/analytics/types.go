package analytics

import (
	"strings"
	"time"
)

// EvaluatorType is the normalized kind of person who submitted an evaluation.
type EvaluatorType string

const (
	EvaluatorStudent    EvaluatorType = "Student"
	EvaluatorFaculty    EvaluatorType = "Faculty"
	EvaluatorSupervisor EvaluatorType = "Supervisor"
)

// ParseEvaluatorType matches s case-insensitively against the known evaluator types.
func ParseEvaluatorType(s string) (EvaluatorType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return EvaluatorStudent, true
	case "faculty":
		return EvaluatorFaculty, true
	case "supervisor":
		return EvaluatorSupervisor, true
	}
	return "", false
}

// EvaluationRecord is one submitted evaluation of an instructor.
type EvaluationRecord struct {
	EvaluationID  int64
	EvaluatorID   int64
	EvaluateeID   int64
	EvaluatorType EvaluatorType
	DateSubmitted time.Time
	// OverallScore is the stored pre-aggregated score, used when no
	// weighted score can be derived from responses.
	OverallScore float64
	CourseID     int64
	Comments     *string
}

// ResponseRecord is a single question rating joined with its question and category.
type ResponseRecord struct {
	EvaluationID int64
	QuestionID   int64
	QuestionText string
	CategoryID   int64
	CategoryName string
	// Weight is the configured question weight; nil or non-positive means 1.
	Weight *float64
	Rating float64
}

// effectiveWeight returns the weight used for scoring.
func (r ResponseRecord) effectiveWeight() float64 {
	if r.Weight != nil && *r.Weight > 0 {
		return *r.Weight
	}
	return 1
}

// unweighted reports whether the question has no usable configured weight.
func (r ResponseRecord) unweighted() bool {
	return r.Weight == nil || *r.Weight <= 0
}

// ProfessorProfile identifies the evaluatee.
type ProfessorProfile struct {
	UserID     int64   `json:"user_id"`
	FullName   string  `json:"full_name"`
	Department *string `json:"department"`
}

// Snapshot is the already-fetched input for one engine invocation.
type Snapshot struct {
	Profile     *ProfessorProfile
	Evaluations []EvaluationRecord
	Responses   []ResponseRecord
}

// ScoredEvaluation is a deduplicated evaluation with its computed score.
type ScoredEvaluation struct {
	Record         EvaluationRecord
	Score          float64
	ResponsesCount int
	WeightedSum    float64
	WeightTotal    float64
	// Fallback is set when Score is the stored OverallScore.
	Fallback bool
}

// Topline holds the headline statistics over all evaluation scores.
type Topline struct {
	EvaluationsCount int      `json:"evaluations_count"`
	OverallAverage   *float64 `json:"overall_average"`
	StdDev           *float64 `json:"stddev"`
	Min              *float64 `json:"min"`
	Max              *float64 `json:"max"`
	Median           *float64 `json:"median"`
	MarginOfError    *float64 `json:"margin_of_error"`
	PerformanceLabel string   `json:"performance_label"`
}

// CategoryStat summarizes all responses of one category.
type CategoryStat struct {
	CategoryID       int64    `json:"category_id"`
	Name             string   `json:"category"`
	WeightedAverage  *float64 `json:"weighted_average"`
	ResponseCount    int      `json:"response_count"`
	StdDev           *float64 `json:"stddev"`
	PerformanceLabel string   `json:"performance_label"`
	LowSample        bool     `json:"low_sample"`
}

// QuestionStat summarizes all responses to one question.
type QuestionStat struct {
	QuestionID       int64    `json:"question_id"`
	Text             string   `json:"question_text"`
	CategoryID       int64    `json:"category_id"`
	CategoryName     string   `json:"category"`
	Average          *float64 `json:"average"`
	StdDev           *float64 `json:"stddev"`
	ResponseCount    int      `json:"response_count"`
	PctBelow3        float64  `json:"pct_below_3"`
	PctAtLeast45     float64  `json:"pct_at_least_4_5"`
	LowSample        bool     `json:"low_sample"`
	PerformanceLabel string   `json:"performance_label"`
}

// TrendPoint is the average score of one academic term.
type TrendPoint struct {
	Label            string   `json:"label"`
	Year             int      `json:"year"`
	Term             Term     `json:"term"`
	Average          *float64 `json:"average"`
	EvaluationsCount int      `json:"evaluations_count"`
}

// Sentiment is the keyword-rule classification of a comment.
type Sentiment string

const (
	SentimentPositive     Sentiment = "positive"
	SentimentNegative     Sentiment = "negative"
	SentimentConstructive Sentiment = "constructive"
	SentimentNeutral      Sentiment = "neutral"
)

// CommentAnalysis is the result for one free-text comment.
type CommentAnalysis struct {
	EvaluationID  int64     `json:"evaluation_id"`
	DateSubmitted time.Time `json:"date_submitted"`
	Comment       string    `json:"comment"`
	Sentiment     Sentiment `json:"sentiment"`
	Keywords      []string  `json:"keywords"`
}

type SentimentCounts struct {
	Positive     int `json:"positive"`
	Negative     int `json:"negative"`
	Constructive int `json:"constructive"`
	Neutral      int `json:"neutral"`
}

// CommentsSummary is the comment section of the report.
type CommentsSummary struct {
	Analyzed        int               `json:"analyzed"`
	SentimentCounts SentimentCounts   `json:"sentiment_counts"`
	Items           []CommentAnalysis `json:"items"`
}

// LowSampleEntry names a category or question below the response threshold.
type LowSampleEntry struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ResponseCount int    `json:"response_count"`
}

// DataQuality lists anomalies found in the filtered input.
type DataQuality struct {
	MinResponses                    int              `json:"min_responses"`
	EvaluationsWithMissingResponses []int64          `json:"evaluations_with_missing_responses"`
	DuplicateEvaluationIDs          []int64          `json:"duplicate_evaluation_ids"`
	UnweightedQuestions             []int64          `json:"unweighted_questions"`
	LowSampleCategories             []LowSampleEntry `json:"low_sample_categories"`
	LowSampleQuestions              []LowSampleEntry `json:"low_sample_questions"`
	FallbackScoreCount              int              `json:"fallback_score_count"`
	AllScoresFallback               bool             `json:"all_scores_fallback"`
}

// Output is the machine-readable report.
type Output struct {
	Professor         ProfessorProfile `json:"professor"`
	Topline           Topline          `json:"topline"`
	CategoryBreakdown []CategoryStat   `json:"category_breakdown"`
	QuestionStats     []QuestionStat   `json:"question_stats"`
	Trend             []TrendPoint     `json:"trend"`
	TopQuestions      []QuestionStat   `json:"top_questions"`
	BottomQuestions   []QuestionStat   `json:"bottom_questions"`
	Comments          CommentsSummary  `json:"comments"`
	DataQuality       DataQuality      `json:"data_quality"`
}

// ChartPoint is one labelled value of a chart series.
type ChartPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// ChartDatasets holds chart-ready series derived from Output.
type ChartDatasets struct {
	CategoryBar   []ChartPoint   `json:"category_bar"`
	TrendLine     []ChartPoint   `json:"trend_line"`
	DetailedTable []QuestionStat `json:"detailed_table"`
}

// Report is the complete result of one engine invocation.
type Report struct {
	HumanSummary  string        `json:"human_summary"`
	JSONOutput    Output        `json:"json_output"`
	ChartDatasets ChartDatasets `json:"chart_datasets"`

	// Scores carries per-evaluation scores for callers that need them; it is
	// not part of the serialized report.
	Scores []ScoredEvaluation `json:"-"`
}
