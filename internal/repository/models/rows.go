package models

import (
	"database/sql"
	"time"
)

// EvaluationRow is one evaluations row joined with the evaluator's legacy
// type columns.
type EvaluationRow struct {
	ID            int64           `db:"id"`
	EvaluatorID   int64           `db:"evaluator_id"`
	EvaluateeID   int64           `db:"evaluatee_id"`
	CourseID      sql.NullInt64   `db:"course_id"`
	DateSubmitted time.Time       `db:"date_submitted"`
	OverallScore  sql.NullFloat64 `db:"overall_score"`
	Comments      sql.NullString  `db:"comments"`
	EvaluatorType sql.NullString  `db:"evaluator_type"`
	EvaluatorRole sql.NullString  `db:"evaluator_role"`
}

// ResponseRow is one responses row joined with its question and category.
type ResponseRow struct {
	EvaluationID int64           `db:"evaluation_id"`
	QuestionID   int64           `db:"question_id"`
	QuestionText string          `db:"question_text"`
	CategoryID   int64           `db:"category_id"`
	CategoryName string          `db:"category_name"`
	Weight       sql.NullFloat64 `db:"weight"`
	Rating       float64         `db:"rating"`
}

// ProfileRow is the subset of users needed to identify an evaluatee.
type ProfileRow struct {
	ID         int64          `db:"id"`
	FullName   string         `db:"full_name"`
	Department sql.NullString `db:"department"`
}

// User is an account as written by AccountRepository.
type User struct {
	ID            int64
	FullName      string
	Email         string
	Role          string
	EvaluatorType string
	Department    *string
}

// Question is an evaluation form item.
type Question struct {
	ID         int64
	CategoryID int64
	Text       string
	Weight     *float64
}

// Evaluation is a submitted evaluation header.
type Evaluation struct {
	ID            int64
	EvaluatorID   int64
	EvaluateeID   int64
	CourseID      *int64
	DateSubmitted time.Time
	OverallScore  float64
	Comments      *string
}
