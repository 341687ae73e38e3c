package analytics

import (
	"github.com/shannong20/Evalytics-sub000/internal/lexicon"
)

// DefaultTopN is how many questions appear in each of the top and bottom lists.
const DefaultTopN = 5

// Engine turns a fetched Snapshot into a Report. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	lex          *lexicon.Lexicon
	commentLimit int
	topN         int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCommentLimit sets how many recent comments are analyzed.
func WithCommentLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.commentLimit = n
		}
	}
}

// WithTopN sets the length of the top and bottom question lists.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// New returns an Engine using lex for comment analysis. A nil lex selects the
// built-in lexicon.
func New(lex *lexicon.Lexicon, opts ...Option) *Engine {
	if lex == nil {
		lex = lexicon.MustDefault()
	}
	e := &Engine{lex: lex, commentLimit: DefaultCommentLimit, topN: DefaultTopN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full pipeline for f.EvaluateeID over snap.
func (e *Engine) Analyze(snap Snapshot, f Filter) (*Report, error) {
	if f.EvaluateeID <= 0 {
		return nil, &InvalidFilterError{Fields: []string{"evaluatee_id"}}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if snap.Profile == nil || snap.Profile.UserID != f.EvaluateeID {
		return nil, &NotFoundError{EvaluateeID: f.EvaluateeID}
	}
	minResponses := f.minResponses()

	evals, duplicates := FilterEvaluations(snap.Evaluations, f)
	responses := responsesFor(evals, snap.Responses)
	scored := ScoreEvaluations(evals, responses)

	categories := CategoryBreakdown(responses, minResponses)
	questions := QuestionStatistics(responses, minResponses)
	top, bottom := RankQuestions(questions, e.topN)

	quality := Audit(AuditInput{
		Scored:       scored,
		Duplicates:   duplicates,
		Responses:    responses,
		Categories:   categories,
		Questions:    questions,
		MinResponses: minResponses,
	})

	return Compose(ComposeInput{
		Profile:      *snap.Profile,
		Scored:       scored,
		Topline:      ComputeTopline(scored),
		Categories:   categories,
		Questions:    questions,
		Top:          top,
		Bottom:       bottom,
		Trend:        Trend(scored),
		Comments:     AnalyzeComments(evals, e.lex, e.commentLimit),
		Quality:      quality,
		MinResponses: minResponses,
	}), nil
}
