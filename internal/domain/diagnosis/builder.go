package diagnosis

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/namaste/internal/domain/terminology"
)

// BuildInput carries what a clinician chose on the diagnosis form.
type BuildInput struct {
	PatientID   uuid.UUID
	ClinicianID uuid.UUID
	FacilityID  *uuid.UUID
	Selected    *terminology.Entry
	Severity    string
	// TreatmentApproach defaults to the entry's first approach when empty.
	TreatmentApproach string
	Notes             string
}

// Builder turns a selected entry plus clinical context into a Record.
type Builder struct {
	now   func() time.Time
	newID func() uuid.UUID
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now, newID: uuid.New}
}

// Build validates in and returns a new active record. All failures are
// *ValidationError.
func (b *Builder) Build(in BuildInput) (*Record, error) {
	if in.PatientID == uuid.Nil {
		return nil, &ValidationError{Reason: ReasonMissingPatient}
	}
	if in.ClinicianID == uuid.Nil {
		return nil, &ValidationError{Reason: ReasonMissingClinician}
	}
	if in.Selected == nil {
		return nil, &ValidationError{Reason: ReasonNoEntrySelected}
	}
	entry := *in.Selected
	if strings.TrimSpace(entry.NamasteCode) == "" || strings.TrimSpace(entry.ICDCode) == "" {
		return nil, &ValidationError{Reason: ReasonIncompleteEntry, Detail: entry.ID}
	}

	severity, err := ParseSeverity(in.Severity)
	if err != nil {
		return nil, err
	}

	approach := strings.TrimSpace(in.TreatmentApproach)
	if approach == "" {
		approach = entry.DefaultApproach()
	} else if !entry.AllowsApproach(approach) {
		return nil, &ValidationError{Reason: ReasonApproachNotAllowed, Detail: approach}
	}

	var facility *uuid.UUID
	if in.FacilityID != nil && *in.FacilityID != uuid.Nil {
		f := *in.FacilityID
		facility = &f
	}

	now := b.now().UTC()
	return &Record{
		ID:                b.newID(),
		PatientID:         in.PatientID,
		ClinicianID:       in.ClinicianID,
		FacilityID:        facility,
		NamasteCode:       strings.TrimSpace(entry.NamasteCode),
		NamasteName:       entry.NamasteName,
		ICDCode:           strings.TrimSpace(entry.ICDCode),
		ICDName:           entry.ICDName,
		VernacularName:    entry.VernacularName,
		Severity:          severity,
		TreatmentApproach: approach,
		Notes:             strings.TrimSpace(in.Notes),
		Status:            StatusActive,
		DiagnosisDate:     now,
		CreatedAt:         now,
	}, nil
}
