package normalize

import "github.com/tidwall/gjson"

// Models emit the same concept under many key spellings. Each canonical field
// has an explicit, ordered alias table; the first key present wins.
var (
	// experienceContainerAliases are probed for the experience payload when
	// the canonical "experience" key is absent.
	experienceContainerAliases = []string{
		"experience", "experiences", "work", "education", "job", "role", "position",
	}

	companyAliases  = []string{"company", "companyName", "employer"}
	titleAliases    = []string{"title", "position"}
	durationAliases = []string{"duration", "period"}
	fullNameAliases = []string{"fullName", "full_name", "name"}
)

// firstPresent returns the first alias whose value exists on the object.
func firstPresent(obj gjson.Result, aliases []string) (gjson.Result, bool) {
	for _, alias := range aliases {
		if v := obj.Get(alias); v.Exists() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// firstString resolves an ordered alias list to a trimmed string value.
// Non-string values are treated as absent.
func firstString(obj gjson.Result, aliases []string) string {
	for _, alias := range aliases {
		if v := obj.Get(alias); v.Type == gjson.String {
			return trimmed(v.String())
		}
	}
	return ""
}
