package types

// Operation is the top-level semantic tag on a Patch selecting whole-document
// behavior.
type Operation string

// Operation constants define the three supported patch operations.
const (
	// OperationPatch merges the patch fields into the existing document.
	OperationPatch Operation = "patch"
	// OperationReplace overwrites the whole document from CompleteResume.
	OperationReplace Operation = "replace"
	// OperationReset returns the document to the empty state.
	OperationReset Operation = "reset"
)

// ParseOperation resolves a raw operation string. Anything other than the
// exact strings "replace" and "reset" defaults to "patch".
func ParseOperation(raw string) Operation {
	switch raw {
	case string(OperationReplace):
		return OperationReplace
	case string(OperationReset):
		return OperationReset
	default:
		return OperationPatch
	}
}

// Section names accepted in Patch.ClearSections.
const (
	SectionExperiences = "experiences"
	SectionSkills      = "skills"
	SectionSummary     = "summary"
)

// ResumePayload is a full replacement payload carried by a replace patch.
// Sections absent in the payload default to empty.
type ResumePayload struct {
	Contact     *Contact     `json:"contact,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
}

// Patch is the canonical, normalized description of an edit to the resume
// document. All fields besides Operation are optional; an empty Patch with
// only an operation tag is valid and inert. Field names mirror the embedded
// block wire format.
type Patch struct {
	Operation         Operation      `json:"operation"`
	Experience        *Experience    `json:"experience,omitempty"`
	Experiences       []Experience   `json:"experiences,omitempty"`
	Skills            []string       `json:"skills,omitempty"`
	RemoveSkills      []string       `json:"removeSkills,omitempty"`
	RemoveExperiences []string       `json:"removeExperiences,omitempty"`
	ClearSections     []string       `json:"clearSections,omitempty"`
	Summary           string         `json:"summary,omitempty"`
	CompleteResume    *ResumePayload `json:"completeResume,omitempty"`
	Contact           *Contact       `json:"contact,omitempty"`
}

// IsEmpty reports whether the patch carries no actionable fields. Reset is
// always actionable.
func (p *Patch) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.Operation == OperationReset {
		return false
	}
	return p.Experience == nil &&
		len(p.Experiences) == 0 &&
		len(p.Skills) == 0 &&
		len(p.RemoveSkills) == 0 &&
		len(p.RemoveExperiences) == 0 &&
		len(p.ClearSections) == 0 &&
		p.Summary == "" &&
		p.CompleteResume == nil &&
		p.Contact == nil
}
