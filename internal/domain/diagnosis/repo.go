package diagnosis

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ehr/namaste/pkg/pagination"
)

// Insert fails with these when a referenced row does not exist. Retrying
// cannot help.
var (
	ErrUnknownPatient   = errors.New("patient not found")
	ErrUnknownReference = errors.New("clinician or facility not found")
)

// Store is the primary, authoritative diagnosis store.
type Store interface {
	// Insert writes r. A missing patient yields ErrUnknownPatient and any
	// other missing reference ErrUnknownReference.
	Insert(ctx context.Context, r *Record) error
	// ListByPatient returns one page of the patient's problem list, newest
	// first, and the patient's total count.
	ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Record, int, error)
}
