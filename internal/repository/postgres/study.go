package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

type studyRepository struct {
	BaseRepository
}

func NewStudyRepository(db *sqlx.DB) repository.StudyRepository {
	return &studyRepository{NewBaseRepository(db)}
}

func (r *studyRepository) Create(ctx context.Context, study *model.Study) error {
	query := `
		INSERT INTO studies (
			id, patient_id, study_type_id, requesting_doctor_id,
			name, date, files, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	study.ID = uuid.New()
	study.CreatedAt = time.Now()
	study.UpdatedAt = study.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		study.ID,
		study.PatientID,
		study.StudyTypeID,
		study.RequestingDoctorID,
		study.Name,
		study.Date,
		study.FilesJSON,
		study.Status,
		study.CreatedAt,
		study.UpdatedAt,
	)
	return translateErr(err)
}

func (r *studyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Study, error) {
	query := `SELECT * FROM studies WHERE id = $1`

	var study model.Study
	if err := r.db.GetContext(ctx, &study, query, id); err != nil {
		return nil, translateErr(err)
	}
	return &study, nil
}

func (r *studyRepository) CompleteWithReport(ctx context.Context, id uuid.UUID, files json.RawMessage, uploadedAt time.Time) error {
	query := `
		UPDATE studies SET
			files = $1,
			status = $2,
			report_uploaded_at = $3,
			updated_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		files,
		model.StudyStatusComplete,
		uploadedAt,
		time.Now(),
		id,
		model.StudyStatusIncomplete,
	)
	if err != nil {
		return translateErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	// Zero rows means a concurrent caller already completed the study
	// (or it vanished); either way the transition lost the race.
	if rows == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *studyRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) ([]*model.StudyDetail, error) {
	query := `
		SELECT s.*, t.name AS study_type_name, d.name AS doctor_name
		FROM studies s
		JOIN study_types t ON t.id = s.study_type_id
		JOIN doctors d ON d.id = s.requesting_doctor_id
		WHERE s.patient_id = $1
	`
	args := []interface{}{patientID}

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND s.requesting_doctor_id = $%d", len(args))
	}
	query += " ORDER BY s.date DESC"

	studies := []*model.StudyDetail{}
	if err := r.db.SelectContext(ctx, &studies, query, args...); err != nil {
		return nil, translateErr(err)
	}
	return studies, nil
}

func (r *studyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM studies`); err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}

func (r *studyRepository) CountByStatus(ctx context.Context, status model.StudyStatus) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM studies WHERE status = $1`, status); err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}

func (r *studyRepository) Recent(ctx context.Context, limit int) ([]*model.RecentStudy, error) {
	query := `
		SELECT
			s.id, s.name, s.created_at,
			p.first_name AS patient_first_name,
			p.last_name AS patient_last_name,
			t.name AS study_type_name
		FROM studies s
		JOIN patients p ON p.id = s.patient_id
		JOIN study_types t ON t.id = s.study_type_id
		ORDER BY s.created_at DESC
		LIMIT $1
	`

	studies := []*model.RecentStudy{}
	if err := r.db.SelectContext(ctx, &studies, query, limit); err != nil {
		return nil, translateErr(err)
	}
	return studies, nil
}
