package models

import "time"

// Student represents a learner registered with the training office.
// Roster membership is derived from (year, branch, section).
type Student struct {
	ID               string     `db:"id" json:"id"`
	HallTicketNumber string     `db:"hall_ticket_number" json:"hall_ticket_number"`
	Name             string     `db:"name" json:"name"`
	Year             int        `db:"year" json:"year"`
	Branch           string     `db:"branch" json:"branch"`
	Section          string     `db:"section" json:"section"`
	Degree           string     `db:"degree" json:"degree"`
	Gender           string     `db:"gender" json:"gender"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	TenthPercentage  *float64   `db:"tenth_percentage" json:"tenth_percentage,omitempty"`
	InterPercentage  *float64   `db:"inter_percentage" json:"inter_percentage,omitempty"`
	CGPA             *float64   `db:"cgpa" json:"cgpa,omitempty"`
	Backlogs         *int       `db:"backlogs" json:"backlogs,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
