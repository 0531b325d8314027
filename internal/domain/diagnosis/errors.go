package diagnosis

import "fmt"

// Reason identifies why a diagnosis could not be built.
type Reason string

const (
	ReasonNoEntrySelected    Reason = "no_entry_selected"
	ReasonApproachNotAllowed Reason = "approach_not_allowed"
	ReasonInvalidSeverity    Reason = "invalid_severity"
	ReasonMissingPatient     Reason = "missing_patient"
	ReasonMissingClinician   Reason = "missing_clinician"
	ReasonIncompleteEntry    Reason = "incomplete_entry"
	ReasonUnverifiedEntry    Reason = "unverified_entry"
)

var reasonMessages = map[Reason]string{
	ReasonNoEntrySelected:    "no terminology entry selected",
	ReasonApproachNotAllowed: "treatment approach not allowed for this entry",
	ReasonInvalidSeverity:    "severity must be one of mild, moderate, severe, critical",
	ReasonMissingPatient:     "patient is required",
	ReasonMissingClinician:   "clinician is required",
	ReasonIncompleteEntry:    "entry lacks a NAMASTE or ICD code",
	ReasonUnverifiedEntry:    "entry is not a bundled entry and the registry did not confirm it",
}

// ValidationError is returned by Builder.Build. It is never retried.
type ValidationError struct {
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	msg := reasonMessages[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %q", msg, e.Detail)
	}
	return msg
}

// Is matches another *ValidationError with the same reason, so the sentinels
// below work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrNoEntrySelected    = &ValidationError{Reason: ReasonNoEntrySelected}
	ErrApproachNotAllowed = &ValidationError{Reason: ReasonApproachNotAllowed}
	ErrInvalidSeverity    = &ValidationError{Reason: ReasonInvalidSeverity}
	ErrMissingPatient     = &ValidationError{Reason: ReasonMissingPatient}
	ErrMissingClinician   = &ValidationError{Reason: ReasonMissingClinician}
	ErrIncompleteEntry    = &ValidationError{Reason: ReasonIncompleteEntry}
	ErrUnverifiedEntry    = &ValidationError{Reason: ReasonUnverifiedEntry}
)
