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

type studyTypeRepository struct {
	BaseRepository
}

func NewStudyTypeRepository(db *sqlx.DB) repository.StudyTypeRepository {
	return &studyTypeRepository{NewBaseRepository(db)}
}

func (r *studyTypeRepository) Create(ctx context.Context, studyType *model.StudyType) error {
	query := `
		INSERT INTO study_types (id, name, normalized_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	studyType.ID = uuid.New()
	studyType.CreatedAt = time.Now()
	studyType.UpdatedAt = studyType.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		studyType.ID,
		studyType.Name,
		studyType.NormalizedName,
		studyType.CreatedAt,
		studyType.UpdatedAt,
	)
	return translateErr(err)
}

func (r *studyTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.StudyType, error) {
	query := `SELECT * FROM study_types WHERE id = $1`

	var studyType model.StudyType
	if err := r.db.GetContext(ctx, &studyType, query, id); err != nil {
		return nil, translateErr(err)
	}
	return &studyType, nil
}

func (r *studyTypeRepository) GetByNormalizedName(ctx context.Context, normalized string) (*model.StudyType, error) {
	query := `SELECT * FROM study_types WHERE normalized_name = $1`

	var studyType model.StudyType
	if err := r.db.GetContext(ctx, &studyType, query, normalized); err != nil {
		return nil, translateErr(err)
	}
	return &studyType, nil
}

func (r *studyTypeRepository) List(ctx context.Context) ([]*model.StudyType, error) {
	query := `SELECT * FROM study_types ORDER BY name ASC`

	studyTypes := []*model.StudyType{}
	if err := r.db.SelectContext(ctx, &studyTypes, query); err != nil {
		return nil, translateErr(err)
	}
	return studyTypes, nil
}

func (r *studyTypeRepository) SearchNormalized(ctx context.Context, normalized string) ([]*model.StudyType, error) {
	query := `
		SELECT * FROM study_types
		WHERE normalized_name LIKE '%' || $1 || '%'
		ORDER BY name ASC
	`

	studyTypes := []*model.StudyType{}
	if err := r.db.SelectContext(ctx, &studyTypes, query, normalized); err != nil {
		return nil, translateErr(err)
	}
	return studyTypes, nil
}

func (r *studyTypeRepository) Update(ctx context.Context, studyType *model.StudyType) error {
	query := `
		UPDATE study_types
		SET name = $1, normalized_name = $2, updated_at = $3
		WHERE id = $4
	`

	studyType.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		studyType.Name,
		studyType.NormalizedName,
		studyType.UpdatedAt,
		studyType.ID,
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

func (r *studyTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM study_types WHERE id = $1`, id)
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
