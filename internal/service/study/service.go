package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
	"github.com/jwalitptl/clinica-api/pkg/storage"
)

type Service struct {
	studies   repository.StudyRepository
	patients  repository.PatientRepository
	presigner storage.Presigner
}

func NewService(
	studies repository.StudyRepository,
	patients repository.PatientRepository,
	presigner storage.Presigner,
) *Service {
	return &Service{
		studies:   studies,
		patients:  patients,
		presigner: presigner,
	}
}

// fileKey builds a collision-resistant, human-traceable object key:
// the patient id keeps keys browsable per patient, the random id keeps
// them unique, the original file name keeps them recognizable.
func fileKey(patientID uuid.UUID, kind, fileName string) string {
	return fmt.Sprintf("patient-%s/%s-%s-%s", patientID, kind, uuid.New(), fileName)
}

// RequestUpload reserves the study record before the bytes exist and
// hands back a delegated upload URL; the binary never transits here.
func (s *Service) RequestUpload(ctx context.Context, req *model.GenerateUploadURLRequest) (*model.UploadURLResponse, error) {
	key := fileKey(req.PatientID, "study", req.FileName)

	files := model.StudyFiles{StudyFileKey: key}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal file keys: %w", err)
	}

	study := &model.Study{
		PatientID:          req.PatientID,
		StudyTypeID:        req.StudyTypeID,
		RequestingDoctorID: req.RequestingDoctorID,
		Name:               req.FileName,
		Date:               req.StudyDate,
		FilesJSON:          filesJSON,
		Status:             model.StudyStatusIncomplete,
	}

	if err := s.studies.Create(ctx, study); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NotFound("referenced patient, study type or doctor", err)
		}
		return nil, fmt.Errorf("failed to create study: %w", err)
	}

	uploadURL, err := s.presigner.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &model.UploadURLResponse{UploadURL: uploadURL, StudyID: study.ID}, nil
}

// RequestReportUpload is the only transition into COMPLETE. A study that
// already completed is rejected with Conflict, and the status flip is a
// compare-and-swap so concurrent calls cannot both win.
func (s *Service) RequestReportUpload(ctx context.Context, studyID uuid.UUID, req *model.ReportUploadURLRequest) (*model.ReportUploadURLResponse, error) {
	study, err := s.studies.Get(ctx, studyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("study", err)
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	if study.Status == model.StudyStatusComplete {
		return nil, apperrors.Conflict("study report has already been uploaded")
	}

	var files model.StudyFiles
	if len(study.FilesJSON) > 0 {
		if err := json.Unmarshal(study.FilesJSON, &files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file keys: %w", err)
		}
	}

	key := fileKey(study.PatientID, "report", req.FileName)
	files.ReportFileKey = key

	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal file keys: %w", err)
	}

	if err := s.studies.CompleteWithReport(ctx, studyID, filesJSON, time.Now()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.Conflict("study report has already been uploaded")
		}
		return nil, fmt.Errorf("failed to complete study: %w", err)
	}

	uploadURL, err := s.presigner.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &model.ReportUploadURLResponse{UploadURL: uploadURL}, nil
}

// RequestDownload brokers a time-limited download URL for either file of
// a study. The browser hint uses the study's display name.
func (s *Service) RequestDownload(ctx context.Context, studyID uuid.UUID, fileKind, disposition string) (*model.DownloadURLResponse, error) {
	study, err := s.studies.Get(ctx, studyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("study", err)
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	var files model.StudyFiles
	if len(study.FilesJSON) == 0 {
		return nil, apperrors.NotFound("study files", nil)
	}
	if err := json.Unmarshal(study.FilesJSON, &files); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file keys: %w", err)
	}

	var key string
	switch fileKind {
	case model.FileKindStudy:
		key = files.StudyFileKey
	case model.FileKindReport:
		key = files.ReportFileKey
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown file kind %q", fileKind), nil)
	}
	if key == "" {
		return nil, apperrors.NotFound(fmt.Sprintf("%s file", fileKind), nil)
	}

	if disposition != model.DispositionInline {
		disposition = model.DispositionAttachment
	}

	downloadURL, err := s.presigner.PresignDownload(ctx, key, study.Name, disposition)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	return &model.DownloadURLResponse{DownloadURL: downloadURL}, nil
}

// RequestDownloadForOwner is the patient-facing download path. The
// caller must own the study through their patient profile.
func (s *Service) RequestDownloadForOwner(ctx context.Context, callerUserID, studyID uuid.UUID, fileKind, disposition string) (*model.DownloadURLResponse, error) {
	patient, err := s.patients.GetByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient profile", err)
		}
		return nil, fmt.Errorf("failed to resolve patient profile: %w", err)
	}

	study, err := s.studies.Get(ctx, studyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("study", err)
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	if study.PatientID != patient.ID {
		// Indistinguishable from a missing study on purpose
		return nil, apperrors.NotFound("study", nil)
	}

	return s.RequestDownload(ctx, studyID, fileKind, disposition)
}

// ListForPatient returns a patient's studies, optionally narrowed to one
// requesting doctor, most recent first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) ([]*model.StudyDetail, error) {
	studies, err := s.studies.ListForPatient(ctx, patientID, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}

	for _, st := range studies {
		if len(st.FilesJSON) > 0 {
			if err := json.Unmarshal(st.FilesJSON, &st.Files); err != nil {
				return nil, fmt.Errorf("failed to unmarshal file keys: %w", err)
			}
		}
	}
	return studies, nil
}

// ListForOwner resolves the caller's own patient profile. Unlike the
// staff listing, a caller without one is an error, not an empty result.
func (s *Service) ListForOwner(ctx context.Context, callerUserID uuid.UUID) ([]*model.StudyDetail, error) {
	patient, err := s.patients.GetByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient profile", err)
		}
		return nil, fmt.Errorf("failed to resolve patient profile: %w", err)
	}

	return s.ListForPatient(ctx, patient.ID, nil)
}
