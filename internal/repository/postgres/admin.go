package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

type adminRepository struct {
	BaseRepository
}

func NewAdminRepository(db *sqlx.DB) repository.AdminRepository {
	return &adminRepository{NewBaseRepository(db)}
}

func (r *adminRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminProfile, error) {
	query := `SELECT * FROM admins WHERE user_id = $1`

	var admin model.AdminProfile
	if err := r.db.GetContext(ctx, &admin, query, userID); err != nil {
		return nil, translateErr(err)
	}
	return &admin, nil
}
