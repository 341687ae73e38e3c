package analytics

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMinResponses is the low-sample threshold used when none is supplied.
	DefaultMinResponses = 5

	dateLayout = "2006-01-02"
)

// Filter selects the evaluations of one evaluatee. Zero values mean "no restriction".
type Filter struct {
	EvaluateeID   int64
	StartDate     *time.Time
	EndDate       *time.Time
	CourseIDs     []int64
	EvaluatorType EvaluatorType
	MinResponses  int
}

// RawFilter is the unparsed filter as received by a transport boundary.
type RawFilter struct {
	StartDate     string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	CourseIDs     []string `json:"course_ids" validate:"dive,number"`
	EvaluatorType string   `json:"evaluator_type"`
	MinResponses  string   `json:"min_responses" validate:"omitempty,number"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseFilter validates raw and converts it to a Filter. All offending fields
// are reported together in an *InvalidFilterError.
func ParseFilter(evaluateeID int64, raw RawFilter) (Filter, error) {
	f := Filter{EvaluateeID: evaluateeID, MinResponses: DefaultMinResponses}
	fields := newFieldSet()

	if evaluateeID <= 0 {
		fields.add("evaluatee_id")
	}

	for i := range raw.CourseIDs {
		raw.CourseIDs[i] = strings.TrimSpace(raw.CourseIDs[i])
	}
	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Filter{}, err
		}
		for _, fe := range verrs {
			// dive errors are reported as "course_ids[2]"
			name, _, _ := strings.Cut(fe.Field(), "[")
			fields.add(name)
		}
	}

	if raw.StartDate != "" && !fields.has("start_date") {
		t, _ := time.Parse(dateLayout, raw.StartDate)
		f.StartDate = &t
	}
	if raw.EndDate != "" && !fields.has("end_date") {
		t, _ := time.Parse(dateLayout, raw.EndDate)
		f.EndDate = &t
	}

	if !fields.has("course_ids") {
		for _, s := range raw.CourseIDs {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				fields.add("course_ids")
				break
			}
			f.CourseIDs = append(f.CourseIDs, id)
		}
	}

	if raw.EvaluatorType != "" {
		et, ok := ParseEvaluatorType(raw.EvaluatorType)
		if !ok {
			fields.add("evaluator_type")
		}
		f.EvaluatorType = et
	}

	if raw.MinResponses != "" && !fields.has("min_responses") {
		n, err := strconv.Atoi(raw.MinResponses)
		if err != nil || n < 1 {
			fields.add("min_responses")
		} else {
			f.MinResponses = n
		}
	}

	if err := f.Validate(); err != nil {
		var ife *InvalidFilterError
		if errors.As(err, &ife) {
			for _, name := range ife.Fields {
				fields.add(name)
			}
		}
	}

	if len(fields.names) > 0 {
		return Filter{}, &InvalidFilterError{Fields: fields.names}
	}
	return f, nil
}

// Validate checks the semantic constraints of an already-typed filter.
func (f Filter) Validate() error {
	var fields []string
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		fields = append(fields, "date_range")
	}
	if f.MinResponses < 0 {
		fields = append(fields, "min_responses")
	}
	if len(fields) > 0 {
		return &InvalidFilterError{Fields: fields}
	}
	return nil
}

func (f Filter) minResponses() int {
	if f.MinResponses <= 0 {
		return DefaultMinResponses
	}
	return f.MinResponses
}

// matches reports whether r satisfies every supplied filter. Date bounds are
// inclusive calendar days.
func (f Filter) matches(r EvaluationRecord) bool {
	if r.EvaluateeID != f.EvaluateeID {
		return false
	}
	if f.StartDate != nil && r.DateSubmitted.Before(startOfDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && !r.DateSubmitted.Before(startOfDay(*f.EndDate).AddDate(0, 0, 1)) {
		return false
	}
	if len(f.CourseIDs) > 0 && !containsID(f.CourseIDs, r.CourseID) {
		return false
	}
	if f.EvaluatorType != "" && r.EvaluatorType != f.EvaluatorType {
		return false
	}
	return true
}

// FilterEvaluations selects the records matching f and collapses duplicate
// evaluation ids, keeping the earliest submission of each. It returns the kept
// records ordered by submission date and the sorted ids that had duplicates
// discarded.
func FilterEvaluations(records []EvaluationRecord, f Filter) ([]EvaluationRecord, []int64) {
	matched := make([]EvaluationRecord, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].EvaluationID != matched[j].EvaluationID {
			return matched[i].EvaluationID < matched[j].EvaluationID
		}
		return matched[i].DateSubmitted.Before(matched[j].DateSubmitted)
	})

	kept := make([]EvaluationRecord, 0, len(matched))
	duplicates := make([]int64, 0)
	for i, r := range matched {
		if i > 0 && matched[i-1].EvaluationID == r.EvaluationID {
			if len(duplicates) == 0 || duplicates[len(duplicates)-1] != r.EvaluationID {
				duplicates = append(duplicates, r.EvaluationID)
			}
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].DateSubmitted.Equal(kept[j].DateSubmitted) {
			return kept[i].DateSubmitted.Before(kept[j].DateSubmitted)
		}
		return kept[i].EvaluationID < kept[j].EvaluationID
	})

	return kept, duplicates
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fieldSet struct {
	names []string
	seen  map[string]bool
}

func newFieldSet() *fieldSet {
	return &fieldSet{seen: make(map[string]bool)}
}

func (s *fieldSet) add(name string) {
	if !s.seen[name] {
		s.seen[name] = true
		s.names = append(s.names, name)
	}
}

func (s *fieldSet) has(name string) bool { return s.seen[name] }
