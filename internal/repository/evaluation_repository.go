package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
	"github.com/shannong20/Evalytics-sub000/internal/repository/models"
)

// EvaluationQuery narrows FetchEvaluations. Zero values mean no restriction.
type EvaluationQuery struct {
	EvaluateeID   int64
	StartDate     *time.Time
	EndDate       *time.Time
	CourseIDs     []int64
	EvaluatorType analytics.EvaluatorType
}

// EvaluationRepository reads evaluation data for the analytics engine.
type EvaluationRepository struct {
	db   *sqlx.DB
	caps Capabilities
}

func NewEvaluationRepository(db *sqlx.DB, caps Capabilities) *EvaluationRepository {
	return &EvaluationRepository{db: db, caps: caps}
}

// FetchProfessorProfile returns nil without error when the user does not exist.
func (r *EvaluationRepository) FetchProfessorProfile(ctx context.Context, evaluateeID int64) (*analytics.ProfessorProfile, error) {
	department := "NULL"
	if r.caps.UserDepartment {
		department = "u.department"
	}
	query := fmt.Sprintf(`
		SELECT u.id, u.full_name, %s AS department
		FROM users AS u
		WHERE u.id = ?
	`, department)

	var row models.ProfileRow
	if err := r.db.GetContext(ctx, &row, query, evaluateeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query FetchProfessorProfile: %w", err)
	}

	profile := &analytics.ProfessorProfile{UserID: row.ID, FullName: row.FullName}
	if row.Department.Valid {
		d := row.Department.String
		profile.Department = &d
	}
	return profile, nil
}

// FetchEvaluations returns the evaluations of q.EvaluateeID matching q. Rows
// are not deduplicated. The evaluator type is normalized from the legacy
// evaluator_type and role columns.
func (r *EvaluationRepository) FetchEvaluations(ctx context.Context, q EvaluationQuery) ([]analytics.EvaluationRecord, error) {
	var (
		where = []string{"e.evaluatee_id = ?"}
		args  = []any{q.EvaluateeID}
	)
	if q.StartDate != nil {
		where = append(where, "e.date_submitted >= ?")
		args = append(args, dayStart(*q.StartDate))
	}
	if q.EndDate != nil {
		where = append(where, "e.date_submitted < ?")
		args = append(args, dayStart(*q.EndDate).AddDate(0, 0, 1))
	}
	if len(q.CourseIDs) > 0 {
		where = append(where, "e.course_id IN (?)")
		args = append(args, q.CourseIDs)
	}

	query := `
		SELECT
			e.id, e.evaluator_id, e.evaluatee_id, e.course_id, e.date_submitted,
			e.overall_score, e.comments,
			u.evaluator_type AS evaluator_type,
			u.role AS evaluator_role
		FROM evaluations AS e
		LEFT JOIN users AS u ON u.id = e.evaluator_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY e.date_submitted, e.id
	`
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("expand FetchEvaluations query: %w", err)
	}

	var rows []models.EvaluationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query FetchEvaluations: %w", err)
	}

	out := make([]analytics.EvaluationRecord, 0, len(rows))
	for _, row := range rows {
		rec := toEvaluationRecord(row)
		if q.EvaluatorType != "" && rec.EvaluatorType != q.EvaluatorType {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchResponses returns the responses of the given evaluations joined with
// question and category metadata.
func (r *EvaluationRepository) FetchResponses(ctx context.Context, evaluationIDs []int64) ([]analytics.ResponseRecord, error) {
	if len(evaluationIDs) == 0 {
		return []analytics.ResponseRecord{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT
			r.evaluation_id,
			r.question_id,
			q.text AS question_text,
			c.id AS category_id,
			c.name AS category_name,
			q.weight,
			r.rating
		FROM responses AS r
		JOIN questions AS q ON q.id = r.question_id
		JOIN categories AS c ON c.id = q.category_id
		WHERE r.evaluation_id IN (?)
		ORDER BY r.evaluation_id, r.question_id, r.id
	`, evaluationIDs)
	if err != nil {
		return nil, fmt.Errorf("expand FetchResponses query: %w", err)
	}

	var rows []models.ResponseRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query FetchResponses: %w", err)
	}

	out := make([]analytics.ResponseRecord, 0, len(rows))
	for _, row := range rows {
		rec := analytics.ResponseRecord{
			EvaluationID: row.EvaluationID,
			QuestionID:   row.QuestionID,
			QuestionText: row.QuestionText,
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Rating:       row.Rating,
		}
		if row.Weight.Valid {
			w := row.Weight.Float64
			rec.Weight = &w
		}
		out = append(out, rec)
	}
	return out, nil
}

func toEvaluationRecord(row models.EvaluationRow) analytics.EvaluationRecord {
	rec := analytics.EvaluationRecord{
		EvaluationID:  row.ID,
		EvaluatorID:   row.EvaluatorID,
		EvaluateeID:   row.EvaluateeID,
		EvaluatorType: NormalizeEvaluatorType(row.EvaluatorType.String, row.EvaluatorRole.String),
		DateSubmitted: row.DateSubmitted.UTC(),
		OverallScore:  row.OverallScore.Float64,
		CourseID:      row.CourseID.Int64,
	}
	if row.Comments.Valid {
		c := row.Comments.String
		rec.Comments = &c
	}
	return rec
}

// NormalizeEvaluatorType resolves the legacy evaluator_type and role columns
// into a single value. evaluator_type wins when both are recognized.
func NormalizeEvaluatorType(evaluatorType, role string) analytics.EvaluatorType {
	if t, ok := analytics.ParseEvaluatorType(evaluatorType); ok {
		return t
	}
	if t, ok := analytics.ParseEvaluatorType(role); ok {
		return t
	}
	return ""
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
