package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shannong20/Evalytics-sub000/internal/repository/models"
)

// AccountRepository writes the reference data evaluations point at. It backs
// seeding and tests; the analytics path only reads.
type AccountRepository struct {
	db   *sqlx.DB
	caps Capabilities
}

func NewAccountRepository(db *sqlx.DB, caps Capabilities) *AccountRepository {
	return &AccountRepository{db: db, caps: caps}
}

// CreateUser inserts u and returns its id. Department is only written when the
// column exists.
func (r *AccountRepository) CreateUser(ctx context.Context, u models.User) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if r.caps.UserDepartment {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO users (full_name, email, role, evaluator_type, department) VALUES (?, ?, ?, ?, ?)`,
			u.FullName, nullString(u.Email), nullString(u.Role), nullString(u.EvaluatorType), u.Department)
	} else {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO users (full_name, email, role, evaluator_type) VALUES (?, ?, ?, ?)`,
			u.FullName, nullString(u.Email), nullString(u.Role), nullString(u.EvaluatorType))
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

func (r *AccountRepository) CreateCourse(ctx context.Context, code, title string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO courses (code, title) VALUES (?, ?)`, code, title)
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}
	return res.LastInsertId()
}

func (r *AccountRepository) CreateCategory(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

func (r *AccountRepository) CreateQuestion(ctx context.Context, q models.Question) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (category_id, text, weight) VALUES (?, ?, ?)`,
		q.CategoryID, q.Text, q.Weight)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return res.LastInsertId()
}

// CreateEvaluation inserts the header and its responses in one transaction.
// ratings maps question ids to ratings.
func (r *AccountRepository) CreateEvaluation(ctx context.Context, e models.Evaluation, ratings map[int64]float64) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin evaluation tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO evaluations (evaluator_id, evaluatee_id, course_id, date_submitted, overall_score, comments)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.EvaluatorID, e.EvaluateeID, e.CourseID, e.DateSubmitted.UTC(), e.OverallScore, e.Comments)
	if err != nil {
		return 0, fmt.Errorf("insert evaluation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("evaluation id: %w", err)
	}

	for questionID, rating := range ratings {
		if err := addResponse(ctx, tx, id, questionID, rating); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit evaluation: %w", err)
	}
	return id, nil
}

// AddResponse appends a single rating to an existing evaluation.
func (r *AccountRepository) AddResponse(ctx context.Context, evaluationID, questionID int64, rating float64) error {
	return addResponse(ctx, r.db, evaluationID, questionID, rating)
}

func addResponse(ctx context.Context, ex sqlx.ExecerContext, evaluationID, questionID int64, rating float64) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO responses (evaluation_id, question_id, rating) VALUES (?, ?, ?)`,
		evaluationID, questionID, rating)
	if err != nil {
		return fmt.Errorf("insert response for evaluation %d: %w", evaluationID, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
