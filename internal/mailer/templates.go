package mailer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rahmanmohd/incubator-api/internal/domain"
)

// TemplateGeneric is the fallback for kinds the mapping does not know.
// Falling back keeps a status update deliverable even if a new form type
// ships before its templates do.
const TemplateGeneric = "application-status-generic"

var templatesByKind = map[domain.Kind]string{
	domain.KindIncubation:  "incubation-status",
	domain.KindInvestment:  "investment-status",
	domain.KindProgram:     "program-status",
	domain.KindMentor:      "mentor-status",
	domain.KindGrant:       "grant-status",
	domain.KindPartnership: "partnership-status",
	domain.KindHackathon:   "hackathon-status",
}

// TemplateFor resolves the template key for a kind. The first-ever review of
// a row sends the confirmation variant; later reviews send the update
// variant.
func TemplateFor(kind domain.Kind, firstReview bool) string {
	key, ok := templatesByKind[kind]
	if !ok {
		key = TemplateGeneric
	}
	if firstReview {
		return key + "-confirmation"
	}
	return key + "-update"
}

// StatusLabel renders a status for human-facing template data, e.g.
// "under_review" becomes "Under Review".
func StatusLabel(status domain.Status) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "_", " "))
}
