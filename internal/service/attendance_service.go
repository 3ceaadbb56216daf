package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/chandra197/tpo-attendance-api/internal/models"
	appErrors "github.com/chandra197/tpo-attendance-api/pkg/errors"
)

type attendanceRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionAttendanceRow, error)
	CountBySession(ctx context.Context, exec sqlx.ExtContext, sessionID string) (int, error)
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error
}

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSession, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TrainingSession, error)
}

type rosterReader interface {
	RosterIDs(ctx context.Context, exec sqlx.ExtContext, year int, branch, section string) ([]string, error)
}

// AttendanceService records and reads per-session attendance. Marking covers
// the whole roster in one write: students named absent get absent rows,
// everyone else on the roster gets present rows.
type AttendanceService struct {
	attendance attendanceRepository
	sessions   sessionReader
	students   rosterReader
	tx         txProvider
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService wires attendance dependencies.
func NewAttendanceService(
	attendance attendanceRepository,
	sessions sessionReader,
	students rosterReader,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		sessions:   sessions,
		students:   students,
		tx:         tx,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// RecordAttendanceRequest names the absentees for one session. Student IDs not
// on the session's roster are ignored.
type RecordAttendanceRequest struct {
	SessionID string                `json:"session_id" validate:"required,uuid"`
	AbsentIDs []string              `json:"absent_student_ids"`
	Mode      models.AttendanceMode `json:"-"`
}

// RecordAttendanceResult summarizes a completed marking.
type RecordAttendanceResult struct {
	SessionID string `json:"session_id"`
	Marked    int    `json:"marked"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
}

// SessionAttendance pairs a session with its per-student rows.
type SessionAttendance struct {
	Session *models.TrainingSession       `json:"session"`
	Records []models.SessionAttendanceRow `json:"records"`
}

// Record marks attendance for every student on the session's roster inside one
// transaction. The session row lock serializes concurrent markings; create
// mode refuses a session that already has records, update mode overwrites.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*RecordAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if req.Mode != models.AttendanceModeCreate && req.Mode != models.AttendanceModeUpdate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be create or update")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	session, lockErr := s.sessions.LockByID(ctx, tx, req.SessionID)
	if lockErr != nil {
		if errors.Is(lockErr, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "invalid session")
			return nil, err
		}
		err = appErrors.Wrap(lockErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock session")
		return nil, err
	}

	if req.Mode == models.AttendanceModeCreate {
		var count int
		if count, err = s.attendance.CountBySession(ctx, tx, session.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
			return nil, err
		}
		if count > 0 {
			err = appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this session")
			return nil, err
		}
	}

	roster, rosterErr := s.students.RosterIDs(ctx, tx, session.Year, session.Branch, session.Section)
	if rosterErr != nil {
		err = appErrors.Wrap(rosterErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
		return nil, err
	}

	absent := make(map[string]struct{}, len(req.AbsentIDs))
	for _, id := range req.AbsentIDs {
		absent[id] = struct{}{}
	}

	result := &RecordAttendanceResult{SessionID: session.ID, Marked: len(roster)}
	records := make([]models.AttendanceRecord, 0, len(roster))
	for _, studentID := range roster {
		status := models.AttendanceStatusPresent
		if _, ok := absent[studentID]; ok {
			status = models.AttendanceStatusAbsent
			result.Absent++
		} else {
			result.Present++
		}
		records = append(records, models.AttendanceRecord{
			StudentID: studentID,
			SessionID: session.ID,
			Status:    status,
		})
	}

	if err = s.attendance.UpsertBatch(ctx, tx, records); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit attendance")
		return nil, err
	}

	s.metrics.RecordAttendanceSave(string(req.Mode))
	s.logger.Info("attendance recorded",
		zap.String("session_id", session.ID),
		zap.String("mode", string(req.Mode)),
		zap.Int("marked", result.Marked),
		zap.Int("absent", result.Absent),
	)
	return result, nil
}

// GetSession returns a session together with its recorded attendance rows. An
// unmarked session comes back with an empty record list.
func (s *AttendanceService) GetSession(ctx context.Context, sessionID string) (*SessionAttendance, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invalid session")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	records, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if records == nil {
		records = []models.SessionAttendanceRow{}
	}
	return &SessionAttendance{Session: session, Records: records}, nil
}
