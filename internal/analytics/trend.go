package analytics

import (
	"fmt"
	"sort"
	"time"
)

// Term is an academic period derived from a submission month.
type Term string

const (
	TermSpring Term = "Spring"
	TermSummer Term = "Summer"
	TermFall   Term = "Fall"
)

// order ranks terms chronologically within a year.
func (t Term) order() int {
	switch t {
	case TermSpring:
		return 1
	case TermSummer:
		return 2
	case TermFall:
		return 3
	}
	return 0
}

// TermOf assigns months 1-5 to Spring, 6-8 to Summer and 9-12 to Fall.
func TermOf(t time.Time) (int, Term) {
	switch m := t.Month(); {
	case m <= time.May:
		return t.Year(), TermSpring
	case m <= time.August:
		return t.Year(), TermSummer
	default:
		return t.Year(), TermFall
	}
}

// TermLabel formats a bucket label such as "Fall 2024".
func TermLabel(year int, term Term) string {
	return fmt.Sprintf("%s %d", term, year)
}

type termKey struct {
	year int
	term Term
}

// Trend buckets evaluation scores by academic term in chronological order.
func Trend(scored []ScoredEvaluation) []TrendPoint {
	buckets := make(map[termKey][]float64)
	for _, s := range scored {
		year, term := TermOf(s.Record.DateSubmitted)
		k := termKey{year: year, term: term}
		buckets[k] = append(buckets[k], s.Score)
	}

	keys := make([]termKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].term.order() < keys[j].term.order()
	})

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		xs := buckets[k]
		out = append(out, TrendPoint{
			Label:            TermLabel(k.year, k.term),
			Year:             k.year,
			Term:             k.term,
			Average:          mean(xs),
			EvaluationsCount: len(xs),
		})
	}
	return out
}
