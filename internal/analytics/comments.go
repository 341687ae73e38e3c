package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shannong20/Evalytics-sub000/internal/lexicon"
)

const (
	// DefaultCommentLimit is how many of the most recent comments are analyzed.
	DefaultCommentLimit = 20

	keywordsPerComment = 3
)

// Tokenize lower-cases text, strips every non-alphanumeric character and
// splits on whitespace.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// ClassifySentiment applies the keyword rules in a fixed order: negative wins
// only with strictly more hits than positive, positive likewise, then any
// constructive hit, else neutral.
func ClassifySentiment(text string, lex *lexicon.Lexicon) Sentiment {
	var pos, neg, cons int
	for _, tok := range Tokenize(text) {
		if lex.IsPositive(tok) {
			pos++
		}
		if lex.IsNegative(tok) {
			neg++
		}
		if lex.IsConstructive(tok) {
			cons++
		}
	}
	switch {
	case neg > pos && neg >= 1:
		return SentimentNegative
	case pos > neg && pos >= 1:
		return SentimentPositive
	case cons >= 1:
		return SentimentConstructive
	default:
		return SentimentNeutral
	}
}

// ExtractKeywords returns up to three most frequent tokens longer than two
// characters that are not stopwords. Ties keep first-occurrence order.
func ExtractKeywords(text string, lex *lexicon.Lexicon) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokenize(text) {
		if len([]rune(tok)) <= 2 || lex.IsStopword(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > keywordsPerComment {
		order = order[:keywordsPerComment]
	}
	if order == nil {
		order = make([]string, 0)
	}
	return order
}

// AnalyzeComments classifies the limit most recent non-empty comments.
func AnalyzeComments(evals []EvaluationRecord, lex *lexicon.Lexicon, limit int) CommentsSummary {
	withText := make([]EvaluationRecord, 0, len(evals))
	for _, e := range evals {
		if e.Comments != nil && strings.TrimSpace(*e.Comments) != "" {
			withText = append(withText, e)
		}
	}
	sort.SliceStable(withText, func(i, j int) bool {
		if !withText[i].DateSubmitted.Equal(withText[j].DateSubmitted) {
			return withText[i].DateSubmitted.After(withText[j].DateSubmitted)
		}
		return withText[i].EvaluationID < withText[j].EvaluationID
	})
	if len(withText) > limit {
		withText = withText[:limit]
	}

	summary := CommentsSummary{Items: make([]CommentAnalysis, 0, len(withText))}
	for _, e := range withText {
		text := strings.TrimSpace(*e.Comments)
		s := ClassifySentiment(text, lex)
		switch s {
		case SentimentPositive:
			summary.SentimentCounts.Positive++
		case SentimentNegative:
			summary.SentimentCounts.Negative++
		case SentimentConstructive:
			summary.SentimentCounts.Constructive++
		default:
			summary.SentimentCounts.Neutral++
		}
		summary.Items = append(summary.Items, CommentAnalysis{
			EvaluationID:  e.EvaluationID,
			DateSubmitted: e.DateSubmitted,
			Comment:       text,
			Sentiment:     s,
			Keywords:      ExtractKeywords(text, lex),
		})
	}
	summary.Analyzed = len(summary.Items)
	return summary
}
