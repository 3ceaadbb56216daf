package models

import "time"

// TimeSlot maps a period number to wall-clock times for an academic year.
type TimeSlot struct {
	Year         int    `db:"year" json:"year"`
	PeriodNumber int    `db:"period_number" json:"period_number"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
}

// TrainingSchedule is a weekly recurring slot from which sessions are generated.
// DayOfWeek uses 0=Sunday..6=Saturday, matching time.Weekday.
type TrainingSchedule struct {
	ID          string    `db:"id" json:"id"`
	BatchYear   int       `db:"batch_year" json:"batch_year"`
	Semester    int       `db:"semester" json:"semester"`
	Year        int       `db:"year" json:"year"`
	Branch      string    `db:"branch" json:"branch"`
	Section     string    `db:"section" json:"section"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartPeriod int       `db:"start_period" json:"start_period"`
	EndPeriod   int       `db:"end_period" json:"end_period"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScheduleDetail extends a schedule with the wall-clock times its periods resolve to.
type ScheduleDetail struct {
	TrainingSchedule
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}
