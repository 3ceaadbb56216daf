package models

import "time"

// SemesterWindow bounds session generation for a cohort. One window per
// (batch_year, year, semester, branch); re-saving overwrites the dates only.
type SemesterWindow struct {
	BatchYear int       `db:"batch_year" json:"batch_year"`
	Year      int       `db:"year" json:"year"`
	Semester  int       `db:"semester" json:"semester"`
	Branch    string    `db:"branch" json:"branch"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// TrainingSession is one dated occurrence of a class meeting. StartTime and
// EndTime are copied from the resolved time slots at generation so later slot
// edits never rewrite history.
type TrainingSession struct {
	ID          string    `db:"id" json:"id"`
	BatchYear   int       `db:"batch_year" json:"batch_year"`
	Year        int       `db:"year" json:"year"`
	Semester    int       `db:"semester" json:"semester"`
	Branch      string    `db:"branch" json:"branch"`
	Section     string    `db:"section" json:"section"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	IsGenerated bool      `db:"is_generated" json:"is_generated"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ExpansionResult reports what a semester window save produced.
type ExpansionResult struct {
	SessionsInserted int `json:"sessions_inserted"`
	SessionsSkipped  int `json:"sessions_skipped"`
}
