package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/chandra197/tpo-attendance-api/internal/models"
)

const studentColumns = `id, hall_ticket_number, name, year, branch, section, degree, gender,
        date_of_birth, tenth_percentage, inter_percentage, cgpa, backlogs, created_at, updated_at`

// StudentRepository reads roster and profile data. The attendance core never
// mutates students; ownership stays with the admissions import.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListRoster returns every student in a (year, branch, section), ordered by hall ticket.
func (r *StudentRepository) ListRoster(ctx context.Context, year int, branch, section string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE year = $1 AND branch = $2 AND section = $3
        ORDER BY hall_ticket_number`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, year, branch, section); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return students, nil
}

// RosterIDs returns student ids for a roster inside the caller's transaction.
func (r *StudentRepository) RosterIDs(ctx context.Context, exec sqlx.ExtContext, year int, branch, section string) ([]string, error) {
	const query = `SELECT id FROM students WHERE year = $1 AND branch = $2 AND section = $3
        ORDER BY hall_ticket_number`
	var ids []string
	if err := sqlx.SelectContext(ctx, exec, &ids, query, year, branch, section); err != nil {
		return nil, fmt.Errorf("roster ids: %w", err)
	}
	return ids, nil
}

// Search returns the single best match for a free-text query: exact hall ticket
// matches rank first, then case-insensitive name substrings ordered by name.
// sql.ErrNoRows passes through when nothing matches.
func (r *StudentRepository) Search(ctx context.Context, term string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE hall_ticket_number = $1 OR LOWER(name) LIKE $2
        ORDER BY (hall_ticket_number = $1) DESC, name, hall_ticket_number
        LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, term, "%"+strings.ToLower(term)+"%"); err != nil {
		return nil, err
	}
	return &student, nil
}
