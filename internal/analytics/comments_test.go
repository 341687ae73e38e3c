package analytics

import (
	"testing"
	"time"

	"github.com/shannong20/Evalytics-sub000/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"great", "class", "wellorganized", "10", "stars"},
		Tokenize("Great class!\tWell-organized, 10 stars."))
	assert.Empty(t, Tokenize("  ?! "))
}

func TestClassifySentiment(t *testing.T) {
	lex := lexicon.MustDefault()

	cases := []struct {
		text string
		want Sentiment
	}{
		{"The course was confusing and the instructor was late", SentimentNegative},
		{"Great, clear and helpful lectures", SentimentPositive},
		{"Good examples but confusing homework", SentimentNeutral},
		{"Good examples but confusing homework, you should improve", SentimentConstructive},
		{"Please suggest more readings", SentimentConstructive},
		{"It met on Tuesdays", SentimentNeutral},
		{"The explanations were unclear", SentimentNegative},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySentiment(tc.text, lex), tc.text)
	}
}

func TestClassifySentimentTieBreak(t *testing.T) {
	lex, err := lexicon.New([]string{"good"}, []string{"bad"}, []string{"improve"}, nil)
	require.NoError(t, err)

	assert.Equal(t, SentimentNegative, ClassifySentiment("bad bad good", lex))
	assert.Equal(t, SentimentPositive, ClassifySentiment("good good bad improve", lex))
	assert.Equal(t, SentimentConstructive, ClassifySentiment("good bad improve", lex))
	assert.Equal(t, SentimentNeutral, ClassifySentiment("good bad", lex))
}

func TestExtractKeywords(t *testing.T) {
	lex := lexicon.MustDefault()

	assert.Equal(t,
		[]string{"course", "confusing", "instructor"},
		ExtractKeywords("The course was confusing and the instructor was late", lex))

	assert.Equal(t,
		[]string{"labs", "great", "lectures"},
		ExtractKeywords("Great lectures, great labs. Labs labs and lectures!", lex))

	kw := ExtractKeywords("It is ok", lex)
	assert.NotNil(t, kw)
	assert.Empty(t, kw)
}

func TestAnalyzeComments(t *testing.T) {
	lex := lexicon.MustDefault()
	at := func(d int) time.Time { return day(2024, 3, d) }

	evals := []EvaluationRecord{
		{EvaluationID: 1, DateSubmitted: at(1), Comments: sptr("Great and helpful")},
		{EvaluationID: 2, DateSubmitted: at(5), Comments: sptr("   ")},
		{EvaluationID: 3, DateSubmitted: at(5), Comments: sptr(" The course was confusing and the instructor was late ")},
		{EvaluationID: 4, DateSubmitted: at(3), Comments: nil},
		{EvaluationID: 5, DateSubmitted: at(5), Comments: sptr("You should add more examples")},
		{EvaluationID: 6, DateSubmitted: at(2), Comments: sptr("Fine")},
	}

	summary := AnalyzeComments(evals, lex, 3)

	require.Equal(t, 3, summary.Analyzed)
	require.Len(t, summary.Items, 3)
	assert.Equal(t, int64(3), summary.Items[0].EvaluationID)
	assert.Equal(t, int64(5), summary.Items[1].EvaluationID)
	assert.Equal(t, int64(6), summary.Items[2].EvaluationID)
	assert.Equal(t, "The course was confusing and the instructor was late", summary.Items[0].Comment)
	assert.Equal(t, SentimentNegative, summary.Items[0].Sentiment)
	assert.Equal(t, SentimentConstructive, summary.Items[1].Sentiment)
	assert.Equal(t, SentimentNeutral, summary.Items[2].Sentiment)
	assert.Equal(t, SentimentCounts{Negative: 1, Constructive: 1, Neutral: 1}, summary.SentimentCounts)

	empty := AnalyzeComments(nil, lex, DefaultCommentLimit)
	assert.Equal(t, 0, empty.Analyzed)
	assert.NotNil(t, empty.Items)
}
