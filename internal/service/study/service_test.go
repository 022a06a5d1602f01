package study

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/policy"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
)

type fakeStudyRepo struct {
	studies   map[uuid.UUID]*model.Study
	createErr error
}

func newFakeStudyRepo() *fakeStudyRepo {
	return &fakeStudyRepo{studies: make(map[uuid.UUID]*model.Study)}
}

func (r *fakeStudyRepo) Create(ctx context.Context, study *model.Study) error {
	if r.createErr != nil {
		return r.createErr
	}
	if study.ID == uuid.Nil {
		study.ID = uuid.New()
	}
	cp := *study
	r.studies[cp.ID] = &cp
	return nil
}

func (r *fakeStudyRepo) Get(ctx context.Context, id uuid.UUID) (*model.Study, error) {
	s, ok := r.studies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStudyRepo) CompleteWithReport(ctx context.Context, id uuid.UUID, files json.RawMessage, uploadedAt time.Time) error {
	s, ok := r.studies[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.Status != model.StudyStatusIncomplete {
		return repository.ErrConflict
	}
	s.FilesJSON = files
	s.Status = model.StudyStatusComplete
	s.ReportUploadedAt = &uploadedAt
	return nil
}

func (r *fakeStudyRepo) ListForPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) ([]*model.StudyDetail, error) {
	var out []*model.StudyDetail
	for _, s := range r.studies {
		if s.PatientID != patientID {
			continue
		}
		if doctorID != nil && s.RequestingDoctorID != *doctorID {
			continue
		}
		cp := *s
		out = append(out, &model.StudyDetail{Study: cp})
	}
	return out, nil
}

func (r *fakeStudyRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.studies)), nil
}

func (r *fakeStudyRepo) CountByStatus(ctx context.Context, status model.StudyStatus) (int64, error) {
	var n int64
	for _, s := range r.studies {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeStudyRepo) Recent(ctx context.Context, limit int) ([]*model.RecentStudy, error) {
	return nil, nil
}

type fakePatientRepo struct {
	byUserID map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error {
	return nil
}
func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	if p, ok := r.byUserID[userID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) GetByIDNumber(ctx context.Context, idNumber string) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (r *fakePatientRepo) List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error) {
	return nil, nil
}
func (r *fakePatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }
func (r *fakePatientRepo) Count(ctx context.Context) (int64, error)                 { return 0, nil }

type fakePresigner struct{}

func (p *fakePresigner) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return fmt.Sprintf("https://bucket.example.com/%s?sig=upload", key), nil
}

func (p *fakePresigner) PresignDownload(ctx context.Context, key, fileName, disposition string) (string, error) {
	return fmt.Sprintf("https://bucket.example.com/%s?sig=download&disposition=%s", key, disposition), nil
}

func newTestService() (*Service, *fakeStudyRepo, *fakePatientRepo) {
	studies := newFakeStudyRepo()
	patients := &fakePatientRepo{byUserID: make(map[uuid.UUID]*model.Patient)}
	return NewService(studies, patients, &fakePresigner{}), studies, patients
}

func uploadRequest(patientID uuid.UUID) *model.GenerateUploadURLRequest {
	return &model.GenerateUploadURLRequest{
		PatientID:          patientID,
		StudyTypeID:        uuid.New(),
		RequestingDoctorID: uuid.New(),
		StudyDate:          time.Now(),
		FileName:           "radiografia.pdf",
		ContentType:        "application/pdf",
	}
}

func TestRequestUploadCreatesIncompleteStudy(t *testing.T) {
	svc, studies, _ := newTestService()
	patientID := uuid.New()

	resp, err := svc.RequestUpload(context.Background(), uploadRequest(patientID))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, resp.StudyID)
	assert.Contains(t, resp.UploadURL, fmt.Sprintf("patient-%s/study-", patientID))

	study, err := studies.Get(context.Background(), resp.StudyID)
	require.NoError(t, err)
	assert.Equal(t, model.StudyStatusIncomplete, study.Status)

	var files model.StudyFiles
	require.NoError(t, json.Unmarshal(study.FilesJSON, &files))
	assert.True(t, strings.HasSuffix(files.StudyFileKey, "-radiografia.pdf"))
	assert.Empty(t, files.ReportFileKey)
}

func TestRequestUploadMissingReference(t *testing.T) {
	svc, studies, _ := newTestService()
	studies.createErr = fmt.Errorf("%w: studies_patient_id_fkey", repository.ErrConflict)

	_, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDownloadStudyFileBeforeReport(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	download, err := svc.RequestDownload(context.Background(), resp.StudyID, model.FileKindStudy, "")
	require.NoError(t, err)
	assert.Contains(t, download.DownloadURL, "disposition=attachment")

	_, err = svc.RequestDownload(context.Background(), resp.StudyID, model.FileKindReport, "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDownloadInlineDisposition(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	download, err := svc.RequestDownload(context.Background(), resp.StudyID, model.FileKindStudy, model.DispositionInline)
	require.NoError(t, err)
	assert.Contains(t, download.DownloadURL, "disposition=inline")
}

func TestDownloadUnknownFileKind(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	_, err = svc.RequestDownload(context.Background(), resp.StudyID, "thumbnail", "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestReportUploadCompletesStudy(t *testing.T) {
	svc, studies, _ := newTestService()
	patientID := uuid.New()

	created, err := svc.RequestUpload(context.Background(), uploadRequest(patientID))
	require.NoError(t, err)

	report, err := svc.RequestReportUpload(context.Background(), created.StudyID, &model.ReportUploadURLRequest{
		FileName:    "informe.pdf",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Contains(t, report.UploadURL, fmt.Sprintf("patient-%s/report-", patientID))

	study, err := studies.Get(context.Background(), created.StudyID)
	require.NoError(t, err)
	assert.Equal(t, model.StudyStatusComplete, study.Status)
	require.NotNil(t, study.ReportUploadedAt)

	var files model.StudyFiles
	require.NoError(t, json.Unmarshal(study.FilesJSON, &files))
	assert.NotEmpty(t, files.StudyFileKey)
	assert.NotEmpty(t, files.ReportFileKey)

	// Both files are now downloadable
	_, err = svc.RequestDownload(context.Background(), created.StudyID, model.FileKindStudy, "")
	assert.NoError(t, err)
	_, err = svc.RequestDownload(context.Background(), created.StudyID, model.FileKindReport, "")
	assert.NoError(t, err)
}

func TestSecondReportUploadRejected(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	req := &model.ReportUploadURLRequest{FileName: "informe.pdf", ContentType: "application/pdf"}
	_, err = svc.RequestReportUpload(context.Background(), created.StudyID, req)
	require.NoError(t, err)

	_, err = svc.RequestReportUpload(context.Background(), created.StudyID, req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestReportUploadUnknownStudy(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RequestReportUpload(context.Background(), uuid.New(), &model.ReportUploadURLRequest{
		FileName:    "informe.pdf",
		ContentType: "application/pdf",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestListForOwner(t *testing.T) {
	svc, _, patients := newTestService()

	userID := uuid.New()
	patientID := uuid.New()
	patients.byUserID[userID] = &model.Patient{Base: model.Base{ID: patientID}, UserID: userID}

	created, err := svc.RequestUpload(context.Background(), uploadRequest(patientID))
	require.NoError(t, err)
	_, err = svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	own, err := svc.ListForOwner(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, created.StudyID, own[0].ID)
	assert.NotEmpty(t, own[0].Files.StudyFileKey)
}

func TestListForOwnerWithoutProfile(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListForOwner(context.Background(), uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDownloadForOwnerRequiresOwnership(t *testing.T) {
	svc, _, patients := newTestService()

	userID := uuid.New()
	ownPatientID := uuid.New()
	patients.byUserID[userID] = &model.Patient{Base: model.Base{ID: ownPatientID}, UserID: userID}

	foreign, err := svc.RequestUpload(context.Background(), uploadRequest(uuid.New()))
	require.NoError(t, err)

	_, err = svc.RequestDownloadForOwner(context.Background(), userID, foreign.StudyID, model.FileKindStudy, "")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	own, err := svc.RequestUpload(context.Background(), uploadRequest(ownPatientID))
	require.NoError(t, err)

	_, err = svc.RequestDownloadForOwner(context.Background(), userID, own.StudyID, model.FileKindStudy, "")
	assert.NoError(t, err)
}

func TestListForPatientNarrowedToDoctor(t *testing.T) {
	svc, studies, _ := newTestService()
	patientID := uuid.New()
	doctorID := uuid.New()

	req := uploadRequest(patientID)
	req.RequestingDoctorID = doctorID
	mine, err := svc.RequestUpload(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.RequestUpload(context.Background(), uploadRequest(patientID))
	require.NoError(t, err)

	all, err := svc.ListForPatient(context.Background(), patientID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	narrowed, err := svc.ListForPatient(context.Background(), patientID, &doctorID)
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, mine.StudyID, narrowed[0].ID)

	_, err = studies.Get(context.Background(), mine.StudyID)
	require.NoError(t, err)
}
