// Package types provides type definitions for the resume document and the
// canonical patch representation used throughout the resume-chat-builder system.
package types

import "strings"

// Contact holds the contact fields of a resume document. Empty string means
// the field has not been provided.
type Contact struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Title    string `json:"title,omitempty"`
}

// IsZero reports whether no contact field is set.
func (c Contact) IsZero() bool {
	return c.FullName == "" && c.Email == "" && c.Phone == "" &&
		c.Location == "" && c.Title == ""
}

// Experience represents a single work experience entry.
// ID is assigned on first creation and never reassigned once set.
// Company is the case-insensitive natural key when no ID match exists.
type Experience struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	Title       string   `json:"title,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Clone returns a deep copy of the experience.
func (e Experience) Clone() Experience {
	out := e
	if e.Description != nil {
		out.Description = make([]string, len(e.Description))
		copy(out.Description, e.Description)
	}
	return out
}

// CompanyKey returns the natural key used to match this experience when no
// stable ID match exists.
func (e Experience) CompanyKey() string {
	return CompanyKey(e.Company)
}

// CompanyKey normalizes a company name for case-insensitive matching.
func CompanyKey(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

// ResumeDocument is the authoritative resume state for one session.
// It is mutated exclusively by the patch applicator.
type ResumeDocument struct {
	Contact     Contact      `json:"contact"`
	Summary     string       `json:"summary"`
	Experiences []Experience `json:"experiences"`
	Skills      []string     `json:"skills"`
}

// NewResumeDocument returns an empty document with initialized sections.
func NewResumeDocument() *ResumeDocument {
	return &ResumeDocument{
		Experiences: []Experience{},
		Skills:      []string{},
	}
}

// Clone returns a deep copy of the document.
func (d *ResumeDocument) Clone() *ResumeDocument {
	out := &ResumeDocument{
		Contact:     d.Contact,
		Summary:     d.Summary,
		Experiences: make([]Experience, 0, len(d.Experiences)),
		Skills:      make([]string, len(d.Skills)),
	}
	for _, exp := range d.Experiences {
		out.Experiences = append(out.Experiences, exp.Clone())
	}
	copy(out.Skills, d.Skills)
	return out
}

// IsEmpty reports whether the document holds no user data.
func (d *ResumeDocument) IsEmpty() bool {
	return d.Contact.IsZero() && d.Summary == "" &&
		len(d.Experiences) == 0 && len(d.Skills) == 0
}
