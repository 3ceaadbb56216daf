package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceMode distinguishes first-time marking from correction.
type AttendanceMode string

const (
	AttendanceModeCreate AttendanceMode = "create"
	AttendanceModeUpdate AttendanceMode = "update"
)

// AttendanceRecord stores one student's status for one session.
// Exactly one row exists per (student_id, session_id).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SessionID string           `db:"session_id" json:"session_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionAttendanceRow joins a record with student identity for the update view.
type SessionAttendanceRow struct {
	StudentID        string           `db:"student_id" json:"student_id"`
	HallTicketNumber string           `db:"hall_ticket_number" json:"hall_ticket_number"`
	StudentName      string           `db:"student_name" json:"student_name"`
	Status           AttendanceStatus `db:"status" json:"status"`
}
