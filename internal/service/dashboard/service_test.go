package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/policy"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

type fakePatientRepo struct {
	count int64
}

func (r *fakePatientRepo) CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error {
	return nil
}
func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) GetByIDNumber(ctx context.Context, idNumber string) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error) {
	return nil, nil
}
func (r *fakePatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }
func (r *fakePatientRepo) Count(ctx context.Context) (int64, error)                 { return r.count, nil }

type fakeStudyRepo struct {
	total    int64
	pending  int64
	recent   []*model.RecentStudy
	askedFor int
}

func (r *fakeStudyRepo) Create(ctx context.Context, study *model.Study) error { return nil }
func (r *fakeStudyRepo) Get(ctx context.Context, id uuid.UUID) (*model.Study, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeStudyRepo) CompleteWithReport(ctx context.Context, id uuid.UUID, files json.RawMessage, uploadedAt time.Time) error {
	return nil
}
func (r *fakeStudyRepo) ListForPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) ([]*model.StudyDetail, error) {
	return nil, nil
}
func (r *fakeStudyRepo) Count(ctx context.Context) (int64, error) { return r.total, nil }
func (r *fakeStudyRepo) CountByStatus(ctx context.Context, status model.StudyStatus) (int64, error) {
	if status == model.StudyStatusIncomplete {
		return r.pending, nil
	}
	return r.total - r.pending, nil
}
func (r *fakeStudyRepo) Recent(ctx context.Context, limit int) ([]*model.RecentStudy, error) {
	r.askedFor = limit
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func TestStats(t *testing.T) {
	recent := []*model.RecentStudy{
		{ID: uuid.New(), Name: "radiografia.pdf"},
		{ID: uuid.New(), Name: "ecografia.pdf"},
	}
	patients := &fakePatientRepo{count: 42}
	studies := &fakeStudyRepo{total: 10, pending: 3, recent: recent}

	svc := NewService(patients, studies)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.PatientCount)
	assert.Equal(t, int64(10), stats.TotalStudies)
	assert.Equal(t, int64(3), stats.PendingStudies)
	assert.Len(t, stats.RecentStudies, 2)
	assert.Equal(t, 5, studies.askedFor)
}
