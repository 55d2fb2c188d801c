// Package merge applies a canonical Patch to a resume document. Apply is a
// total function: a malformed or empty patch produces the input document
// unchanged, and every document it returns satisfies the data-model
// invariants (non-empty companies, case-insensitive unique skills, no
// duplicate description lines, unique experience IDs).
package merge

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-chat-builder/internal/types"
)

// Apply transitions a resume document to its next state under the patch's
// operation semantics. The input document is never mutated; a new value is
// returned.
func Apply(doc *types.ResumeDocument, patch *types.Patch) *types.ResumeDocument {
	if doc == nil {
		doc = types.NewResumeDocument()
	}
	if patch == nil {
		return doc.Clone()
	}

	switch {
	case patch.Operation == types.OperationReset:
		// Reset is absorbing: all other patch fields are ignored.
		return types.NewResumeDocument()
	case patch.Operation == types.OperationReplace && patch.CompleteResume != nil:
		return buildFromPayload(patch.CompleteResume)
	}

	// Operation "patch", or "replace" without a payload, which degrades to a
	// field-level merge.
	next := doc.Clone()
	clearSections(next, patch.ClearSections)
	for _, exp := range incomingExperiences(patch) {
		upsertExperience(next, exp)
	}
	removeExperiences(next, patch.RemoveExperiences)
	next.Skills = unionSkills(next.Skills, patch.Skills)
	next.Skills = removeSkills(next.Skills, patch.RemoveSkills)
	if summary := strings.TrimSpace(patch.Summary); summary != "" {
		next.Summary = summary
	}
	setContact(next, patch.Contact)
	return next
}

// buildFromPayload constructs a whole document from a replacement payload.
// Sections absent in the payload default to empty.
func buildFromPayload(payload *types.ResumePayload) *types.ResumeDocument {
	doc := types.NewResumeDocument()
	if payload.Contact != nil {
		setContact(doc, payload.Contact)
	}
	doc.Summary = strings.TrimSpace(payload.Summary)
	for _, exp := range payload.Experiences {
		upsertExperience(doc, exp)
	}
	doc.Skills = unionSkills(doc.Skills, payload.Skills)
	return doc
}

// clearSections empties the named sections. Clears run before additions so a
// clear-then-add in the same patch is well-defined.
func clearSections(doc *types.ResumeDocument, sections []string) {
	for _, section := range sections {
		switch section {
		case types.SectionExperiences:
			doc.Experiences = []types.Experience{}
		case types.SectionSkills:
			doc.Skills = []string{}
		case types.SectionSummary:
			doc.Summary = ""
		}
	}
}

func incomingExperiences(patch *types.Patch) []types.Experience {
	if len(patch.Experiences) > 0 {
		return patch.Experiences
	}
	if patch.Experience != nil {
		return []types.Experience{*patch.Experience}
	}
	return nil
}

// upsertExperience merges an incoming experience into the document. An
// existing entry is matched by exact ID first, then by the company natural
// key. Scalar fields override only when the incoming value is non-empty;
// description lines union with exact-string dedup, existing order first.
func upsertExperience(doc *types.ResumeDocument, incoming types.Experience) {
	incoming.Company = strings.TrimSpace(incoming.Company)
	if incoming.Company == "" {
		return
	}

	if idx := findExperience(doc, incoming); idx >= 0 {
		existing := &doc.Experiences[idx]
		if title := strings.TrimSpace(incoming.Title); title != "" {
			existing.Title = title
		}
		if duration := strings.TrimSpace(incoming.Duration); duration != "" {
			existing.Duration = duration
		}
		existing.Description = unionDescription(existing.Description, incoming.Description)
		return
	}

	doc.Experiences = append(doc.Experiences, types.Experience{
		ID:          uuid.NewString(),
		Company:     incoming.Company,
		Title:       strings.TrimSpace(incoming.Title),
		Duration:    strings.TrimSpace(incoming.Duration),
		Description: unionDescription(nil, incoming.Description),
	})
}

func findExperience(doc *types.ResumeDocument, incoming types.Experience) int {
	if incoming.ID != "" {
		for i, exp := range doc.Experiences {
			if exp.ID == incoming.ID {
				return i
			}
		}
	}
	key := incoming.CompanyKey()
	for i, exp := range doc.Experiences {
		if exp.CompanyKey() == key {
			return i
		}
	}
	return -1
}

// unionDescription appends new lines to existing ones, deduplicating by
// exact string and preserving existing order.
func unionDescription(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, line := range existing {
		if line != "" && !seen[line] {
			out = append(out, line)
			seen[line] = true
		}
	}
	for _, line := range incoming {
		line = strings.TrimSpace(line)
		if line != "" && !seen[line] {
			out = append(out, line)
			seen[line] = true
		}
	}
	return out
}

// removeExperiences deletes entries whose ID or case-insensitive company
// name equals any removal key.
func removeExperiences(doc *types.ResumeDocument, keys []string) {
	if len(keys) == 0 {
		return
	}
	kept := doc.Experiences[:0]
	for _, exp := range doc.Experiences {
		if matchesRemovalKey(exp, keys) {
			continue
		}
		kept = append(kept, exp)
	}
	doc.Experiences = kept
}

func matchesRemovalKey(exp types.Experience, keys []string) bool {
	for _, key := range keys {
		if exp.ID != "" && exp.ID == key {
			return true
		}
		if exp.CompanyKey() == types.CompanyKey(key) {
			return true
		}
	}
	return false
}

// unionSkills merges incoming skills with case-insensitive dedup, keeping
// first-seen casing and append order.
func unionSkills(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, skill := range append(append([]string{}, existing...), incoming...) {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}

// removeSkills deletes skills whose case-insensitive trimmed form matches
// any removal entry.
func removeSkills(skills, removals []string) []string {
	if len(removals) == 0 {
		return skills
	}
	drop := make(map[string]bool, len(removals))
	for _, removal := range removals {
		drop[strings.ToLower(strings.TrimSpace(removal))] = true
	}
	out := skills[:0]
	for _, skill := range skills {
		if drop[strings.ToLower(strings.TrimSpace(skill))] {
			continue
		}
		out = append(out, skill)
	}
	return out
}

// setContact overwrites each document contact field that is present in the
// incoming contact.
func setContact(doc *types.ResumeDocument, contact *types.Contact) {
	if contact == nil {
		return
	}
	if contact.FullName != "" {
		doc.Contact.FullName = contact.FullName
	}
	if contact.Email != "" {
		doc.Contact.Email = contact.Email
	}
	if contact.Phone != "" {
		doc.Contact.Phone = contact.Phone
	}
	if contact.Location != "" {
		doc.Contact.Location = contact.Location
	}
	if contact.Title != "" {
		doc.Contact.Title = contact.Title
	}
}
