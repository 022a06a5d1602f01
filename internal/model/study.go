package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Study status constants. COMPLETE is terminal; the only transition into
// it is the report upload.
type StudyStatus string

const (
	StudyStatusIncomplete StudyStatus = "INCOMPLETE"
	StudyStatusComplete   StudyStatus = "COMPLETE"
)

// File kinds a download can target
const (
	FileKindStudy  = "study"
	FileKindReport = "report"
)

// Download dispositions
const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

// StudyFiles maps the study's external object keys. The study file key is
// set at creation and never mutated; the report key appears on completion.
type StudyFiles struct {
	StudyFileKey  string `json:"study_file_key"`
	ReportFileKey string `json:"report_file_key,omitempty"`
}

// Study ties a patient, a study type and a requesting doctor to up to two
// external file references and a completion state. The binary payloads
// live in object storage; only the keys are recorded here.
type Study struct {
	Base
	PatientID          uuid.UUID       `json:"patient_id" db:"patient_id"`
	StudyTypeID        uuid.UUID       `json:"study_type_id" db:"study_type_id"`
	RequestingDoctorID uuid.UUID       `json:"requesting_doctor_id" db:"requesting_doctor_id"`
	Name               string          `json:"name" db:"name"`
	Date               time.Time       `json:"date" db:"date"`
	FilesJSON          json.RawMessage `json:"-" db:"files"`
	Files              StudyFiles      `json:"files" db:"-"`
	Status             StudyStatus     `json:"status" db:"status"`
	ReportUploadedAt   *time.Time      `json:"report_uploaded_at" db:"report_uploaded_at"`
}

// StudyDetail is a study enriched with its study type and requesting
// doctor for listings
type StudyDetail struct {
	Study
	StudyTypeName string `json:"study_type_name" db:"study_type_name"`
	DoctorName    string `json:"requesting_doctor_name" db:"doctor_name"`
}

// GenerateUploadURLRequest reserves a study record and asks for a
// delegated upload URL
type GenerateUploadURLRequest struct {
	PatientID          uuid.UUID `json:"patient_id" binding:"required"`
	StudyTypeID        uuid.UUID `json:"study_type_id" binding:"required"`
	RequestingDoctorID uuid.UUID `json:"requesting_doctor_id" binding:"required"`
	StudyDate          time.Time `json:"study_date" binding:"required"`
	FileName           string    `json:"file_name" binding:"required"`
	ContentType        string    `json:"content_type" binding:"required"`
}

// ReportUploadURLRequest asks for a delegated upload URL for a report
type ReportUploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadURLResponse returns the brokered URL for a new study upload
type UploadURLResponse struct {
	UploadURL string    `json:"upload_url"`
	StudyID   uuid.UUID `json:"study_id"`
}

// ReportUploadURLResponse returns the brokered URL for a report upload
type ReportUploadURLResponse struct {
	UploadURL string `json:"upload_url"`
}

// DownloadURLResponse returns the brokered download URL
type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}
