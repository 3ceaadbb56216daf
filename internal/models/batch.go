package models

// AcademicBatch identifies one section of a cohort for an academic offering.
type AcademicBatch struct {
	ID        string `db:"id" json:"id"`
	BatchYear int    `db:"batch_year" json:"batch_year"`
	Semester  int    `db:"semester" json:"semester"`
	Year      int    `db:"year" json:"year"`
	Branch    string `db:"branch" json:"branch"`
	Section   string `db:"section" json:"section"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// CohortFilter scopes section and session lookups to one academic offering.
// Section is empty when filtering at the branch level.
type CohortFilter struct {
	BatchYear int
	Semester  int
	Year      int
	Branch    string
	Section   string
}
