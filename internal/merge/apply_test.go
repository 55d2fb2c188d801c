package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-builder/internal/types"
)

func docWithAcme() *types.ResumeDocument {
	doc := types.NewResumeDocument()
	doc.Experiences = []types.Experience{
		{ID: "1", Company: "Acme", Title: "Eng", Description: []string{"Shipped X"}},
	}
	return doc
}

func TestApplyNilAndEmptyPatch(t *testing.T) {
	doc := docWithAcme()
	doc.Skills = []string{"Go"}

	assert.Equal(t, doc, Apply(doc, nil))
	assert.Equal(t, doc, Apply(doc, &types.Patch{Operation: types.OperationPatch}))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{Company: "Acme", Description: []string{"Shipped Y"}},
		Skills:     []string{"Go"},
	}

	_ = Apply(doc, patch)

	assert.Equal(t, []string{"Shipped X"}, doc.Experiences[0].Description)
	assert.Empty(t, doc.Skills)
}

func TestApplyResetIsAbsorbing(t *testing.T) {
	doc := docWithAcme()
	doc.Summary = "Engineer"
	doc.Skills = []string{"Go"}

	patch := &types.Patch{
		Operation:  types.OperationReset,
		Experience: &types.Experience{Company: "Globex"},
		Skills:     []string{"Rust"},
		Summary:    "ignored",
	}

	next := Apply(doc, patch)

	assert.True(t, next.IsEmpty())
}

func TestApplyReplaceWithCompleteResume(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation: types.OperationReplace,
		CompleteResume: &types.ResumePayload{
			Summary:     "Platform engineer",
			Skills:      []string{"Go", "go", "Rust"},
			Experiences: []types.Experience{{Company: "Globex", Description: []string{"Built Z", "Built Z"}}},
			Contact:     &types.Contact{FullName: "Ada Lovelace"},
		},
		// Ignored: replace with a payload is terminal.
		Skills:  []string{"PHP"},
		Summary: "ignored",
	}

	next := Apply(doc, patch)

	assert.Equal(t, "Platform engineer", next.Summary)
	assert.Equal(t, []string{"Go", "Rust"}, next.Skills)
	require.Len(t, next.Experiences, 1)
	assert.Equal(t, "Globex", next.Experiences[0].Company)
	assert.Equal(t, []string{"Built Z"}, next.Experiences[0].Description)
	assert.NotEmpty(t, next.Experiences[0].ID)
	assert.Equal(t, "Ada Lovelace", next.Contact.FullName)
}

func TestApplyReplaceWithoutPayloadDegradesToPatch(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation: types.OperationReplace,
		Skills:    []string{"Go"},
	}

	next := Apply(doc, patch)

	// Existing content survives; the patch fields merge in.
	require.Len(t, next.Experiences, 1)
	assert.Equal(t, []string{"Go"}, next.Skills)
}

func TestApplyExperienceMergeByCompany(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{Company: "Acme", Description: []string{"Shipped Y"}},
	}

	next := Apply(doc, patch)

	require.Len(t, next.Experiences, 1)
	exp := next.Experiences[0]
	assert.Equal(t, "1", exp.ID, "ID is never reassigned once set")
	assert.Equal(t, "Eng", exp.Title, "empty incoming title must not override")
	assert.Equal(t, []string{"Shipped X", "Shipped Y"}, exp.Description)
}

func TestApplyExperienceMergeCaseInsensitiveCompany(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{Company: "  ACME ", Title: "Staff Eng"},
	}

	next := Apply(doc, patch)

	require.Len(t, next.Experiences, 1)
	assert.Equal(t, "Acme", next.Experiences[0].Company, "first-seen casing kept")
	assert.Equal(t, "Staff Eng", next.Experiences[0].Title)
}

func TestApplyExperienceMergeByID(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{ID: "1", Company: "Acme Corp", Duration: "2020-2024"},
	}

	next := Apply(doc, patch)

	require.Len(t, next.Experiences, 1, "ID match wins even when company differs")
	assert.Equal(t, "2020-2024", next.Experiences[0].Duration)
}

func TestApplyExperienceInsertNew(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{Company: "Globex", Title: "SRE"},
	}

	next := Apply(doc, patch)

	require.Len(t, next.Experiences, 2)
	assert.Equal(t, "Globex", next.Experiences[1].Company)
	assert.NotEmpty(t, next.Experiences[1].ID)
	assert.NotEqual(t, "1", next.Experiences[1].ID)
}

func TestApplyExperienceEmptyCompanyIgnored(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation:  types.OperationPatch,
		Experience: &types.Experience{Company: "   ", Title: "SRE"},
	}

	next := Apply(doc, patch)

	assert.Len(t, next.Experiences, 1)
}

func TestApplyMultipleExperiences(t *testing.T) {
	doc := types.NewResumeDocument()
	patch := &types.Patch{
		Operation: types.OperationPatch,
		Experiences: []types.Experience{
			{Company: "Acme"},
			{Company: "Globex"},
			{Company: "acme", Title: "Eng"},
		},
	}

	next := Apply(doc, patch)

	require.Len(t, next.Experiences, 2)
	assert.Equal(t, "Eng", next.Experiences[0].Title)
}

func TestApplyRemoveExperiences(t *testing.T) {
	doc := docWithAcme()
	doc.Experiences = append(doc.Experiences, types.Experience{ID: "2", Company: "Globex"})

	t.Run("by company case-insensitive", func(t *testing.T) {
		next := Apply(doc, &types.Patch{Operation: types.OperationPatch, RemoveExperiences: []string{"acme"}})
		require.Len(t, next.Experiences, 1)
		assert.Equal(t, "Globex", next.Experiences[0].Company)
	})

	t.Run("by id", func(t *testing.T) {
		next := Apply(doc, &types.Patch{Operation: types.OperationPatch, RemoveExperiences: []string{"2"}})
		require.Len(t, next.Experiences, 1)
		assert.Equal(t, "Acme", next.Experiences[0].Company)
	})

	t.Run("unknown key is a no-op", func(t *testing.T) {
		next := Apply(doc, &types.Patch{Operation: types.OperationPatch, RemoveExperiences: []string{"Initech"}})
		assert.Len(t, next.Experiences, 2)
	})
}

func TestApplySkillUnion(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go", "Rust"}
	patch := &types.Patch{
		Operation: types.OperationPatch,
		Skills:    []string{"go", "Kubernetes", " Terraform ", "kubernetes"},
	}

	next := Apply(doc, patch)

	assert.Equal(t, []string{"Go", "Rust", "Kubernetes", "Terraform"}, next.Skills)
}

func TestApplySkillRemoval(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go", "Rust", "PHP"}
	patch := &types.Patch{
		Operation:    types.OperationPatch,
		RemoveSkills: []string{" php ", "RUST"},
	}

	next := Apply(doc, patch)

	assert.Equal(t, []string{"Go"}, next.Skills)
}

func TestApplyClearThenAddOrdering(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Old1", "Old2"}
	patch := &types.Patch{
		Operation:     types.OperationPatch,
		ClearSections: []string{types.SectionSkills},
		Skills:        []string{"A", "B"},
	}

	next := Apply(doc, patch)

	assert.Equal(t, []string{"A", "B"}, next.Skills)
}

func TestApplyClearSections(t *testing.T) {
	doc := docWithAcme()
	doc.Summary = "Engineer"
	doc.Skills = []string{"Go"}
	patch := &types.Patch{
		Operation:     types.OperationPatch,
		ClearSections: []string{types.SectionExperiences, types.SectionSummary},
	}

	next := Apply(doc, patch)

	assert.Empty(t, next.Experiences)
	assert.Empty(t, next.Summary)
	assert.Equal(t, []string{"Go"}, next.Skills, "uncleared sections survive")
}

func TestApplySummarySet(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Summary = "Old"

	next := Apply(doc, &types.Patch{Operation: types.OperationPatch, Summary: "  New summary  "})
	assert.Equal(t, "New summary", next.Summary)

	next = Apply(next, &types.Patch{Operation: types.OperationPatch, Summary: "   "})
	assert.Equal(t, "New summary", next.Summary, "blank summary must not clear")
}

func TestApplyContactSet(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Contact = types.Contact{FullName: "Ada Lovelace", Email: "ada@example.com"}

	next := Apply(doc, &types.Patch{
		Operation: types.OperationPatch,
		Contact:   &types.Contact{Phone: "555-0100", Email: "ada@acme.example"},
	})

	assert.Equal(t, "Ada Lovelace", next.Contact.FullName, "absent sub-fields survive")
	assert.Equal(t, "ada@acme.example", next.Contact.Email)
	assert.Equal(t, "555-0100", next.Contact.Phone)
}

func TestApplyAdditiveIdempotence(t *testing.T) {
	doc := docWithAcme()
	patch := &types.Patch{
		Operation: types.OperationPatch,
		Experience: &types.Experience{
			Company:     "Acme",
			Title:       "Staff Eng",
			Description: []string{"Shipped Y", "Shipped Z"},
		},
		Skills: []string{"Go", "Kubernetes"},
	}

	once := Apply(doc, patch)
	twice := Apply(once, patch)

	assert.Equal(t, once, twice)
}

func TestApplyDedupInvariants(t *testing.T) {
	doc := types.NewResumeDocument()
	patches := []*types.Patch{
		{Operation: types.OperationPatch, Skills: []string{"Go", "GO", " go "}},
		{Operation: types.OperationPatch, Experience: &types.Experience{Company: "Acme", Description: []string{"X", "X", " X "}}},
		{Operation: types.OperationPatch, Experience: &types.Experience{Company: "ACME", Description: []string{"X", "Y"}}},
		{Operation: types.OperationPatch, Skills: []string{"go"}},
	}

	for _, patch := range patches {
		doc = Apply(doc, patch)
	}

	assert.Equal(t, []string{"Go"}, doc.Skills)
	require.Len(t, doc.Experiences, 1)
	assert.Equal(t, []string{"X", "Y"}, doc.Experiences[0].Description)
}
