package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

const (
	uncategorized = "uncategorized"
	fteEpsilon    = 1e-9
)

// roleBucket accumulates roster and MSP coverage for one category.
type roleBucket struct {
	role     *template.ExpectedRole
	category string
	names    []string
	ids      []string
	staffFTE float64
	mspFTE   float64
	mspNotes []string
}

// StaffingComparator compares the organization roster to expected roles.
type StaffingComparator struct {
	weights map[string]float64
}

// NewStaffingComparator creates a comparator with MSP dependency weights.
func NewStaffingComparator(weights map[string]float64) *StaffingComparator {
	if weights == nil {
		weights = DefaultMSPWeights()
	}
	return &StaffingComparator{weights: weights}
}

func (s *StaffingComparator) weight(dep model.DependencyLevel) float64 {
	if w, ok := s.weights[string(dep)]; ok {
		return w
	}
	// Unknown or unset dependency counts conservatively.
	return s.weights[string(model.DependencySupplemental)]
}

// Compare returns one row per template role in declared order, followed by
// roster or MSP categories the template does not name, sorted by key.
// A nil organization yields zero observed and variance none for every role.
func (s *StaffingComparator) Compare(org *model.Organization, expected template.ExpectedOrganization) []model.StaffingComparison {
	buckets := make(map[string]*roleBucket, len(expected.Roles))
	order := make([]string, 0, len(expected.Roles))
	for i := range expected.Roles {
		r := &expected.Roles[i]
		buckets[r.Category] = &roleBucket{role: r, category: r.Category}
		order = append(order, r.Category)
	}

	if org == nil {
		rows := make([]model.StaffingComparison, 0, len(order))
		for _, key := range order {
			row := baseRow(buckets[key])
			row.Variance = model.StaffingNone
			row.Notes = "No organization data provided."
			rows = append(rows, row)
		}
		return rows
	}

	var extra []string
	bucketFor := func(category string) *roleBucket {
		if b, ok := buckets[category]; ok {
			return b
		}
		b := &roleBucket{category: category}
		buckets[category] = b
		extra = append(extra, category)
		return b
	}

	staff := append([]model.StaffMember(nil), org.Staff...)
	sort.SliceStable(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	for _, m := range staff {
		b := bucketFor(assignRole(m, expected.Roles))
		b.names = append(b.names, m.Name)
		b.ids = append(b.ids, m.ID)
		b.staffFTE += m.EffectiveFTE()
	}

	msps := append([]model.MSPRelationship(nil), org.MSPs...)
	sort.SliceStable(msps, func(i, j int) bool { return msps[i].ID < msps[j].ID })
	for _, msp := range msps {
		cats := serviceRoles(msp.Services, expected.Roles)
		if len(cats) == 0 || msp.FTEEquivalent <= 0 {
			continue
		}
		// The FTE-equivalent is split evenly across the categories it covers.
		w := s.weight(msp.Dependency)
		share := msp.FTEEquivalent / float64(len(cats)) * w
		for _, cat := range cats {
			b := bucketFor(cat)
			b.mspFTE += share
			b.ids = append(b.ids, msp.ID)
			b.mspNotes = append(b.mspNotes, fmt.Sprintf("%s (%s dependency, weight %.2f) contributes %.2f FTE-equivalent",
				msp.Vendor, dependencyLabel(msp.Dependency), w, share))
		}
	}

	sort.Strings(extra)
	order = append(order, extra...)

	emptyOrg := len(org.Staff) == 0 && len(org.MSPs) == 0
	rows := make([]model.StaffingComparison, 0, len(order))
	for _, key := range order {
		rows = append(rows, s.classify(buckets[key], expected.OutsourcingPatterns, emptyOrg))
	}
	return rows
}

// assignRole picks the category for a staff member: the matching template
// role, then the member's own category.
func assignRole(m model.StaffMember, roles []template.ExpectedRole) string {
	cat := normalizeCategory(m.Category)
	if r := matchRole(cat, m.Role, roles); r != "" {
		return r
	}
	if cat != "" {
		return cat
	}
	return uncategorized
}

// serviceRoles maps an MSP's declared services onto role categories, sorted
// and deduplicated. A service no template role claims keeps its own key.
func serviceRoles(services []string, roles []template.ExpectedRole) []string {
	out := make([]string, 0, len(services))
	for _, svc := range services {
		cat := normalizeCategory(svc)
		if r := matchRole(cat, svc, roles); r != "" {
			cat = r
		}
		if cat != "" {
			out = append(out, cat)
		}
	}
	return sortedUnique(out)
}

// matchRole returns the first template role whose key equals cat, then the
// first whose titles appear in text, then the first whose service names
// (template, then DefaultRoleServices) appear in text. Empty when none fit.
func matchRole(cat, text string, roles []template.ExpectedRole) string {
	if cat != "" {
		for _, r := range roles {
			if r.Category == cat {
				return r.Category
			}
		}
	}
	norm := NormalizeName(text)
	if norm == "" {
		return ""
	}
	for _, r := range roles {
		if anyPhrase(norm, normalizeAllNames(r.Titles)) {
			return r.Category
		}
	}
	for _, r := range roles {
		if anyPhrase(norm, normalizeAllNames(r.Services)) || anyPhrase(norm, DefaultRoleServices[r.Category]) {
			return r.Category
		}
	}
	return ""
}

func baseRow(b *roleBucket) model.StaffingComparison {
	row := model.StaffingComparison{
		Category:      b.category,
		Label:         strings.ReplaceAll(b.category, "_", " "),
		ObservedNames: []string{},
	}
	if b.role != nil {
		row.Label = b.role.Label
		if low, high, ok := b.role.Range(); ok {
			row.ExpectedLow = &low
			row.ExpectedHigh = &high
			row.ExpectedLabel = b.role.RangeLabel()
		}
	}
	return row
}

// classify picks the staffing variance. An expected role nobody covers is
// lean, unless the organization is empty, which reports none throughout.
func (s *StaffingComparator) classify(b *roleBucket, patterns []string, emptyOrg bool) model.StaffingComparison {
	row := baseRow(b)
	row.ObservedNames = append(row.ObservedNames, b.names...)
	row.ObservedCount = len(b.names)
	row.ObservedFTE = b.staffFTE
	row.MSPEquivalent = b.mspFTE
	row.TotalFTE = b.staffFTE + b.mspFTE
	row.SourceIDs = sortedUnique(b.ids)
	if len(b.mspNotes) > 0 {
		row.MSPCoverageNote = strings.Join(b.mspNotes, "; ") + "."
	}

	total := row.TotalFTE
	hasExp := row.HasExpectation()
	switch {
	case hasExp && *row.ExpectedHigh == 0 && total <= fteEpsilon:
		row.Variance = model.StaffingMatch
	case b.staffFTE <= fteEpsilon && b.mspFTE > fteEpsilon:
		row.Variance = model.StaffingMSP
	case !hasExp && total > fteEpsilon:
		row.Variance = model.StaffingUnknown
		row.Notes = "No template expectation for this category."
	case total <= fteEpsilon && (!hasExp || emptyOrg):
		row.Variance = model.StaffingNone
	case total < *row.ExpectedLow-fteEpsilon:
		row.Variance = model.StaffingLean
	case total > *row.ExpectedHigh+fteEpsilon:
		row.Variance = model.StaffingOver
	default:
		row.Variance = model.StaffingMatch
	}

	if (row.Variance == model.StaffingLean || row.Variance == model.StaffingNone) && hasExp && len(patterns) > 0 {
		row.Notes = "Industry outsourcing patterns: " + strings.Join(patterns, "; ") + "."
	}
	return row
}

func normalizeAllNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := NormalizeName(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func dependencyLabel(d model.DependencyLevel) string {
	if d == "" {
		return "unspecified"
	}
	return string(d)
}
