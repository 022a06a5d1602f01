package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func (r *doctorRepository) CreateWithUser(ctx context.Context, user *model.User, doctor *model.Doctor) error {
	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	doctor.ID = uuid.New()
	doctor.UserID = user.ID
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

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

		doctorQuery := `
			INSERT INTO doctors (id, user_id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		_, err := tx.ExecContext(ctx, doctorQuery,
			doctor.ID, doctor.UserID, doctor.Name, doctor.CreatedAt, doctor.UpdatedAt,
		)
		return err
	})
	return translateErr(err)
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT d.*, u.email
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, translateErr(err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT d.*, u.email
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.user_id = $1
	`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, userID); err != nil {
		return nil, translateErr(err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT d.*, u.email
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.name ASC
	`

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, translateErr(err)
	}
	return doctors, nil
}

func (r *doctorRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE doctors SET name = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, name, time.Now(), id)
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

func (r *doctorRepository) DeleteWithUser(ctx context.Context, id uuid.UUID) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var userID uuid.UUID
		if err := tx.GetContext(ctx, &userID,
			`SELECT user_id FROM doctors WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}

		// The studies FK restricts this delete while the doctor is still
		// referenced; the whole transaction rolls back in that case.
		if _, err := tx.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		return err
	})
	return translateErr(err)
}
