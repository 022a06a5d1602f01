package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/policy"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error {
	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	patient.ID = uuid.New()
	patient.UserID = user.ID
	patient.CreatedAt = now
	patient.UpdatedAt = now

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		userQuery := `
			INSERT INTO users (
				id, email, password_hash, role, password_changed, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, userQuery,
			user.ID, user.Email, user.PasswordHash, user.Role,
			user.PasswordChanged, user.CreatedAt, user.UpdatedAt,
		); err != nil {
			return err
		}

		patientQuery := `
			INSERT INTO patients (
				id, user_id, first_name, last_name, id_number,
				address, phone, date_of_birth, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, patientQuery,
			patient.ID, patient.UserID, patient.FirstName, patient.LastName,
			patient.IDNumber, patient.Address, patient.Phone, patient.DateOfBirth,
			patient.CreatedAt, patient.UpdatedAt,
		)
		return err
	})
	return translateErr(err)
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT p.*, u.email
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, translateErr(err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT p.*, u.email
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		return nil, translateErr(err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByIDNumber(ctx context.Context, idNumber string) (*model.Patient, error) {
	query := `
		SELECT p.*, u.email
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.id_number = $1
	`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, idNumber); err != nil {
		return nil, translateErr(err)
	}
	return &patient, nil
}

// List renders the caller's scope into SQL. The empty scope is handled
// at the service layer and never reaches here.
func (r *patientRepository) List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error) {
	query := `
		SELECT p.*, u.email
		FROM patients p
		JOIN users u ON u.id = p.user_id
	`

	var conds []string
	var args []interface{}

	if scope.DoctorID != nil {
		args = append(args, *scope.DoctorID)
		conds = append(conds, fmt.Sprintf(
			`EXISTS (
				SELECT 1 FROM studies s
				WHERE s.patient_id = p.id AND s.requesting_doctor_id = $%d
			)`, len(args)))
	}

	if scope.Search != "" {
		args = append(args, scope.Search)
		n := len(args)
		// LIKE without ILIKE keeps the match case-sensitive
		conds = append(conds, fmt.Sprintf(
			`(p.first_name LIKE '%%' || $%d || '%%'
				OR p.last_name LIKE '%%' || $%d || '%%'
				OR p.id_number LIKE '%%' || $%d || '%%')`, n, n, n))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.last_name ASC"

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, translateErr(err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			first_name = $1,
			last_name = $2,
			id_number = $3,
			address = $4,
			phone = $5,
			date_of_birth = $6,
			updated_at = $7
		WHERE id = $8
	`

	patient.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.IDNumber,
		patient.Address,
		patient.Phone,
		patient.DateOfBirth,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return translateErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}
