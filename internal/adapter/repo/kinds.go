package repo

import (
	"fmt"

	"github.com/rahmanmohd/incubator-api/internal/domain"
)

// kindSpec is the single place that knows how each application table maps
// into the normalized shape. Column names differ per form type; everything
// after the SELECT list is uniform.
type kindSpec struct {
	kind      domain.Kind
	table     string
	subject   string
	applicant string
	email     string
	stage     string
}

var kindSpecs = []kindSpec{
	{
		kind:      domain.KindIncubation,
		table:     "incubation_applications",
		subject:   "startup_name",
		applicant: "founder_name",
		email:     "email",
		stage:     "stage",
	},
	{
		kind:      domain.KindInvestment,
		table:     "investment_applications",
		subject:   "startup_name",
		applicant: "founder_name",
		email:     "email",
		stage:     "funding_stage",
	},
	{
		kind:      domain.KindProgram,
		table:     "program_applications",
		subject:   "startup_name",
		applicant: "applicant_name",
		email:     "email",
		stage:     "program_name",
	},
	{
		kind:      domain.KindMentor,
		table:     "mentor_applications",
		subject:   "full_name",
		applicant: "full_name",
		email:     "email",
		stage:     "expertise_area",
	},
	{
		kind:      domain.KindGrant,
		table:     "grant_applications",
		subject:   "startup_name",
		applicant: "founder_name",
		email:     "contact_email",
		stage:     "grant_category",
	},
	{
		kind:      domain.KindPartnership,
		table:     "partnership_applications",
		subject:   "company_name",
		applicant: "contact_person",
		email:     "contact_email",
		stage:     "partnership_type",
	},
	{
		kind:      domain.KindHackathon,
		table:     "hackathon_applications",
		subject:   "team_name",
		applicant: "full_name",
		email:     "email",
		stage:     "track",
	},
}

// kindQueries holds the statements built from a kindSpec once at package
// init, so request paths only ever look up prepared strings.
type kindQueries struct {
	selectAll     string
	selectOne     string
	countByStatus string
	updatePlain   string
	updateGuarded string
	exists        string
	deleteOne     string
}

var queriesByKind = buildQueries()

func buildQueries() map[domain.Kind]kindQueries {
	out := make(map[domain.Kind]kindQueries, len(kindSpecs))
	for _, spec := range kindSpecs {
		// NULL name columns coalesce to sentinels here so normalization is
		// total before rows ever reach the aggregator.
		columns := fmt.Sprintf(
			"id::text, COALESCE(%s, 'N/A'), COALESCE(%s, 'N/A'), COALESCE(%s, ''), COALESCE(%s, 'N/A'), COALESCE(status, 'pending'), submitted_at, reviewed_by, reviewed_at, admin_notes",
			spec.subject, spec.applicant, spec.email, spec.stage,
		)
		out[spec.kind] = kindQueries{
			selectAll: fmt.Sprintf(
				"SELECT %s FROM %s ORDER BY submitted_at DESC, id", columns, spec.table),
			selectOne: fmt.Sprintf(
				"SELECT %s FROM %s WHERE id::text = $1", columns, spec.table),
			// Status casing and spacing are normalized the same way
			// NormalizeStatus does, so a row stored as "Under Review" counts
			// under under_review exactly as it lists.
			countByStatus: fmt.Sprintf(
				"SELECT COUNT(*) FROM %s WHERE REPLACE(LOWER(status), ' ', '_') = $1", spec.table),
			updatePlain: fmt.Sprintf(
				"UPDATE %s SET status = $2, admin_notes = COALESCE($3, admin_notes), reviewed_by = $4, reviewed_at = NOW() WHERE id::text = $1 RETURNING %s",
				spec.table, columns),
			updateGuarded: fmt.Sprintf(
				"UPDATE %s SET status = $2, admin_notes = COALESCE($3, admin_notes), reviewed_by = $4, reviewed_at = NOW() WHERE id::text = $1 AND reviewed_at IS NOT DISTINCT FROM $5 RETURNING %s",
				spec.table, columns),
			exists: fmt.Sprintf(
				"SELECT COUNT(*) FROM %s WHERE id::text = $1", spec.table),
			deleteOne: fmt.Sprintf(
				"DELETE FROM %s WHERE id::text = $1", spec.table),
		}
	}
	return out
}

func queriesFor(kind domain.Kind) (kindQueries, error) {
	q, ok := queriesByKind[kind]
	if !ok {
		return kindQueries{}, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	return q, nil
}
