package diagnosis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/namaste/internal/domain/terminology"
)

// Severity grades a diagnosis.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// ParseSeverity accepts exactly one of the four lowercase level names.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", &ValidationError{Reason: ReasonInvalidSeverity, Detail: s}
	}
	return sev, nil
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical:
		return true
	}
	return false
}

// StatusActive is the status of every newly recorded diagnosis.
const StatusActive = "active"

// Record is a patient's problem-list entry. Codes and names are copied from
// the selected terminology entry at build time.
type Record struct {
	ID                uuid.UUID  `json:"id"`
	PatientID         uuid.UUID  `json:"patient_id"`
	ClinicianID       uuid.UUID  `json:"doctor_id"`
	ClinicianName     string     `json:"doctor_name,omitempty"`
	FacilityID        *uuid.UUID `json:"hospital_id,omitempty"`
	NamasteCode       string     `json:"namaste_code"`
	NamasteName       string     `json:"namaste_name"`
	ICDCode           string     `json:"icd_code"`
	ICDName           string     `json:"icd_name"`
	VernacularName    string     `json:"disease_name_hindi,omitempty"`
	Severity          Severity   `json:"severity"`
	TreatmentApproach string     `json:"treatment_approach"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	DiagnosisDate     time.Time  `json:"diagnosis_date"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Payload converts the record to the body mirrored to the registry.
func (r *Record) Payload() *terminology.DiagnosisPayload {
	p := &terminology.DiagnosisPayload{
		PatientID:         r.PatientID.String(),
		DoctorID:          r.ClinicianID.String(),
		NamasteCode:       r.NamasteCode,
		NamasteName:       r.NamasteName,
		ICDCode:           r.ICDCode,
		ICDName:           r.ICDName,
		VernacularName:    r.VernacularName,
		Severity:          string(r.Severity),
		TreatmentApproach: r.TreatmentApproach,
		Notes:             r.Notes,
	}
	if r.FacilityID != nil {
		p.HospitalID = r.FacilityID.String()
	}
	return p
}

// CommitStatus is the outcome of a dual write.
type CommitStatus string

const (
	// Committed: stored locally and accepted by the registry.
	Committed CommitStatus = "committed"
	// CommittedPrimaryOnly: stored locally; the registry mirror did not take.
	CommittedPrimaryOnly CommitStatus = "committed_primary_only"
	// Rejected: the local store failed and nothing was mirrored.
	Rejected CommitStatus = "rejected"
)

type CommitResult struct {
	Status CommitStatus
	// Reason explains a Rejected commit in user-facing terms.
	Reason string
	// Retry is set when a Rejected commit may succeed if resubmitted.
	Retry bool
	// Err is the underlying primary store error for Rejected.
	Err error
	// MirrorMessage is the registry's message, or the local one when offline.
	MirrorMessage string
}
