// Package normalize consumes the extractor's generic object and emits one
// canonical Patch value with an explicit operation tag. It tolerates the many
// field shapes a model may produce: singular/plural keys, nested containers,
// and string-vs-array fields. Normalization never fails; a field that cannot
// be confidently resolved is omitted from the output.
package normalize

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-chat-builder/internal/types"
)

// Normalize converts a raw extracted JSON block into a canonical Patch.
// An empty Patch with only an operation tag is a valid, if inert, result.
func Normalize(raw []byte) *types.Patch {
	root := gjson.ParseBytes(raw)
	patch := &types.Patch{
		Operation: types.ParseOperation(root.Get("operation").String()),
	}
	if !root.IsObject() {
		return patch
	}

	if exps := resolveExperiences(root); len(exps) > 0 {
		patch.Experience = &exps[0]
		if len(exps) > 1 {
			patch.Experiences = exps
		}
	}

	patch.Skills = stringArray(root.Get("skills"))
	patch.RemoveSkills = stringArray(root.Get("removeSkills"))
	patch.RemoveExperiences = stringArray(root.Get("removeExperiences"))
	patch.ClearSections = sectionNames(root.Get("clearSections"))

	if summary := root.Get("summary"); summary.Type == gjson.String {
		patch.Summary = summary.String()
	}

	if patch.Operation == types.OperationReplace {
		if payload := root.Get("completeResume"); payload.IsObject() {
			patch.CompleteResume = resumePayload(payload)
		}
	}

	patch.Contact = resolveContact(root)

	return patch
}

// resolveExperiences probes the ordered container alias table for the
// experience payload and returns the normalized entries. A wrapping container
// one level deep is unwrapped once, re-applying the first-of-array rule.
func resolveExperiences(root gjson.Result) []types.Experience {
	container, ok := firstPresent(root, experienceContainerAliases)
	if !ok {
		return nil
	}
	container = unwrapContainer(container)

	if container.IsArray() {
		var out []types.Experience
		for _, elem := range container.Array() {
			if exp := experienceFrom(elem); exp != nil {
				out = append(out, *exp)
			}
		}
		return out
	}
	if exp := experienceFrom(container); exp != nil {
		return []types.Experience{*exp}
	}
	return nil
}

// unwrapContainer handles a resolved object that itself wraps one of the
// alias keys (e.g. {"experience": {"job": {...}}}). Only container-shaped
// inner values are unwrapped so that a scalar "position" or "role" field on
// a real experience object is left alone.
func unwrapContainer(v gjson.Result) gjson.Result {
	if v.IsObject() {
		if inner, ok := firstPresent(v, experienceContainerAliases); ok {
			if inner.IsObject() || inner.IsArray() {
				v = inner
			}
		}
	}
	return v
}

// experienceFrom normalizes a single experience object, resolving field
// aliases and coercing the description into a list of lines.
func experienceFrom(v gjson.Result) *types.Experience {
	if !v.IsObject() {
		return nil
	}

	exp := &types.Experience{
		Company:     firstString(v, companyAliases),
		Title:       firstString(v, titleAliases),
		Duration:    firstString(v, durationAliases),
		Description: coerceDescription(v.Get("description")),
	}
	if id := v.Get("id"); id.Type == gjson.String || id.Type == gjson.Number {
		exp.ID = trimmed(id.String())
	}

	if exp.Company == "" && exp.Title == "" && exp.Duration == "" && len(exp.Description) == 0 {
		return nil
	}
	return exp
}

// descriptionSeparators splits a prose description into individual lines:
// newlines, bullet characters, semicolons, commas, or hyphens used as
// separators. A hyphen only separates when surrounded by spaces, so in-word
// hyphens survive.
var descriptionSeparators = []string{"\n", "•", "·", ";", ",", " - "}

// coerceDescription accepts either an array of lines or a single delimited
// string. Empty pieces are dropped.
func coerceDescription(v gjson.Result) []string {
	switch {
	case v.IsArray():
		var out []string
		for _, elem := range v.Array() {
			if line := trimBullet(elem.String()); line != "" {
				out = append(out, line)
			}
		}
		return out
	case v.Type == gjson.String:
		return splitDescription(v.String())
	default:
		return nil
	}
}

// splitDescription breaks a single string into description lines.
func splitDescription(s string) []string {
	pieces := []string{s}
	for _, sep := range descriptionSeparators {
		pieces = splitAll(pieces, sep)
	}

	var out []string
	for _, piece := range pieces {
		if line := trimBullet(piece); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitAll(pieces []string, sep string) []string {
	var out []string
	for _, piece := range pieces {
		out = append(out, strings.Split(piece, sep)...)
	}
	return out
}

// trimBullet trims whitespace and a leading bullet or dash glyph.
func trimBullet(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"-", "*", "•", "·"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return s
}

// stringArray copies a pass-through array field. Non-array values are
// silently ignored rather than erroring.
func stringArray(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, elem := range v.Array() {
		if elem.Type != gjson.String {
			continue
		}
		if s := trimmed(elem.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sectionNames copies clearSections, keeping only the known section names.
func sectionNames(v gjson.Result) []string {
	var out []string
	for _, name := range stringArray(v) {
		switch strings.ToLower(name) {
		case types.SectionExperiences, types.SectionSkills, types.SectionSummary:
			out = append(out, strings.ToLower(name))
		}
	}
	return out
}

// resolveContact reads the top-level contact object, falling back to the one
// nested inside completeResume when absent.
func resolveContact(root gjson.Result) *types.Contact {
	v := root.Get("contact")
	if !v.IsObject() {
		v = root.Get("completeResume.contact")
	}
	return contactFrom(v)
}

// contactFrom builds a Contact from an object, trimming each sub-field that
// is a string.
func contactFrom(v gjson.Result) *types.Contact {
	if !v.IsObject() {
		return nil
	}
	contact := &types.Contact{
		FullName: firstString(v, fullNameAliases),
		Email:    stringField(v, "email"),
		Phone:    stringField(v, "phone"),
		Location: stringField(v, "location"),
		Title:    stringField(v, "title"),
	}
	if contact.IsZero() {
		return nil
	}
	return contact
}

// resumePayload builds a full replacement payload from a completeResume
// object. Sections absent in the payload stay empty.
func resumePayload(v gjson.Result) *types.ResumePayload {
	payload := &types.ResumePayload{
		Summary: stringField(v, "summary"),
		Skills:  stringArray(v.Get("skills")),
		Contact: contactFrom(v.Get("contact")),
	}
	if exps := v.Get("experiences"); exps.IsArray() {
		for _, elem := range exps.Array() {
			if exp := experienceFrom(elem); exp != nil {
				payload.Experiences = append(payload.Experiences, *exp)
			}
		}
	}
	return payload
}

func stringField(obj gjson.Result, key string) string {
	if v := obj.Get(key); v.Type == gjson.String {
		return trimmed(v.String())
	}
	return ""
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
