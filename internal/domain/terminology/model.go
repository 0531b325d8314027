package terminology

import "strings"

// DefaultTreatmentApproach is assigned to entries whose source lists none.
const DefaultTreatmentApproach = "allopathic"

// Entry is a dual-coded disease reference: a NAMASTE code paired with an
// ICD-11 code. Entries are read-only once loaded.
type Entry struct {
	ID                  string   `json:"id"`
	NamasteCode         string   `json:"namaste_code"`
	NamasteName         string   `json:"namaste_name"`
	ICDCode             string   `json:"icd_code"`
	ICDName             string   `json:"icd_name"`
	VernacularName      string   `json:"disease_name_hindi,omitempty"`
	Category            string   `json:"category"`
	Description         string   `json:"description,omitempty"`
	Synonyms            []string `json:"synonyms,omitempty"`
	TreatmentApproaches []string `json:"treatment_approach"`
}

// normalized returns a copy with whitespace trimmed from the codes and a
// non-empty approach list.
func (e Entry) normalized() Entry {
	e.NamasteCode = strings.TrimSpace(e.NamasteCode)
	e.ICDCode = strings.TrimSpace(e.ICDCode)

	approaches := make([]string, 0, len(e.TreatmentApproaches))
	for _, a := range e.TreatmentApproaches {
		if a = strings.TrimSpace(a); a != "" {
			approaches = append(approaches, a)
		}
	}
	if len(approaches) == 0 {
		approaches = []string{DefaultTreatmentApproach}
	}
	e.TreatmentApproaches = approaches

	if e.Synonyms != nil {
		e.Synonyms = append([]string(nil), e.Synonyms...)
	}
	return e
}

// complete reports whether both halves of the dual code are present.
func (e Entry) complete() bool {
	return e.NamasteCode != "" && e.ICDCode != ""
}

// AllowsApproach reports whether approach is one of the entry's treatment
// approaches.
func (e Entry) AllowsApproach(approach string) bool {
	for _, a := range e.TreatmentApproaches {
		if a == approach {
			return true
		}
	}
	return false
}

// DefaultApproach returns the first allowed treatment approach.
func (e Entry) DefaultApproach() string {
	if len(e.TreatmentApproaches) == 0 {
		return DefaultTreatmentApproach
	}
	return e.TreatmentApproaches[0]
}

// SearchResult is the answer to a terminology search.
type SearchResult struct {
	Entries []Entry `json:"entries"`
	Source  string  `json:"source"`
}

// Search result sources.
const (
	SourceRegistry = "registry"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// DiagnosisPayload is the body mirrored to the registry's diagnosis endpoint.
type DiagnosisPayload struct {
	PatientID         string `json:"patient_id"`
	DoctorID          string `json:"doctor_id"`
	HospitalID        string `json:"hospital_id"`
	NamasteCode       string `json:"namaste_code"`
	NamasteName       string `json:"namaste_name"`
	ICDCode           string `json:"icd_code"`
	ICDName           string `json:"icd_name"`
	VernacularName    string `json:"disease_name_hindi"`
	Severity          string `json:"severity"`
	TreatmentApproach string `json:"treatment_approach"`
	Notes             string `json:"notes,omitempty"`
}

// SubmitResult is the registry's answer to a diagnosis submission. Offline is
// set when the registry could not be reached and the result was synthesised
// locally.
type SubmitResult struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
	Offline  bool   `json:"offline,omitempty"`
}

// OfflineSubmitMessage is reported when a submission is soft-accepted
// without reaching the registry.
const OfflineSubmitMessage = "Diagnosis saved successfully (offline mode)"
