package benchmark

import (
	"fmt"
	"sort"

	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// NotFoundNote is attached to every expected system with no inventory match.
// Absence from the data room is not evidence of absence from the business.
const NotFoundNote = "Not identified in the data room inventory. This system may be " +
	"(i) outsourced or handled by a third party, " +
	"(ii) present under a different name not yet reconciled, or " +
	"(iii) undocumented in the materials provided."

// vendorNotStated fills ObservedVendor for matched items without a vendor.
const vendorNotStated = "not stated"

// Matcher resolves expected system categories against an inventory using
// exact, alias and partial tiers, first match wins.
type Matcher struct {
	threshold float64
	aliases   map[string][]string
}

// NewMatcher creates a matcher. aliases supplements per-template aliases,
// keyed by category; nil uses DefaultAliases.
func NewMatcher(threshold float64, aliases map[string][]string) *Matcher {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Matcher{threshold: threshold, aliases: aliases}
}

// candidate is an inventory item with its normalized match keys.
type candidate struct {
	item     model.InventoryItem
	name     string
	vendor   string
	category string
}

func (c candidate) keys() []string {
	out := make([]string, 0, 2)
	if c.name != "" {
		out = append(out, c.name)
	}
	if c.vendor != "" && c.vendor != c.name {
		out = append(out, c.vendor)
	}
	return out
}

// prepareCandidates normalizes inventory items once per comparison, ordered by id
// so that tier ties resolve to the lowest id.
func prepareCandidates(items []model.InventoryItem) []candidate {
	out := make([]candidate, 0, len(items))
	for _, it := range items {
		out = append(out, candidate{
			item:     it,
			name:     NormalizeName(it.Name),
			vendor:   NormalizeName(it.Vendor),
			category: normalizeCategory(it.Category),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].item.ID < out[j].item.ID })
	return out
}

// Match compares one expected system against the prepared candidates.
func (m *Matcher) Match(sys template.TieredSystem, cands []candidate) model.SystemComparison {
	row := model.SystemComparison{
		Category:      sys.Category,
		Description:   sys.Description,
		Criticality:   sys.Criticality,
		IsCritical:    sys.Criticality == model.CriticalityCritical,
		CommonVendors: append([]string{}, sys.CommonVendors...),
		Status:        model.MatchNotFound,
		MatchTier:     model.TierNone,
		Confidence:    model.ConfidenceLow,
		Notes:         NotFoundNote,
	}

	targets := m.targets(sys)

	// Exact tier.
	for _, c := range cands {
		for _, k := range c.keys() {
			if targets[k] {
				return m.matched(row, c, model.MatchFound, model.TierExact, model.ConfidenceHigh,
					fmt.Sprintf("Exact match on %q.", k))
			}
		}
	}

	// Alias tier.
	aliases := m.aliasesFor(sys)
	for _, c := range cands {
		if c.category != "" && c.category == sys.Category {
			return m.matched(row, c, model.MatchFound, model.TierAlias, model.ConfidenceMedium,
				fmt.Sprintf("Inventory category %q matches.", c.item.Category))
		}
		for _, k := range c.keys() {
			for _, a := range aliases {
				if k == a || containsPhrase(k, a) {
					return m.matched(row, c, model.MatchFound, model.TierAlias, model.ConfidenceMedium,
						fmt.Sprintf("Matched via alias %q.", a))
				}
			}
		}
	}

	// Partial tier.
	targetTokens := make([]map[string]bool, 0, len(targets))
	for _, t := range sortedKeys(targets) {
		targetTokens = append(targetTokens, tokenSet(t))
	}
	bestIdx, bestRatio := -1, 0.0
	for i, c := range cands {
		cand := tokenSet(c.name + " " + c.vendor)
		for _, tt := range targetTokens {
			r := overlapRatio(cand, tt)
			if r >= m.threshold && r > bestRatio {
				bestIdx, bestRatio = i, r
			}
		}
	}
	if bestIdx >= 0 {
		return m.matched(row, cands[bestIdx], model.MatchPartial, model.TierPartial, model.ConfidenceLow,
			fmt.Sprintf("Partial name overlap (%.0f%%); confirm with management.", bestRatio*100))
	}

	return row
}

// targets are the normalized canonical name and common vendors.
func (m *Matcher) targets(sys template.TieredSystem) map[string]bool {
	out := make(map[string]bool, len(sys.CommonVendors)+1)
	if n := canonicalName(sys.Category); n != "" {
		out[n] = true
	}
	for _, v := range sys.CommonVendors {
		if n := NormalizeName(v); n != "" {
			out[n] = true
		}
	}
	return out
}

// aliasesFor returns template aliases followed by built-in ones, normalized
// and de-duplicated in that order.
func (m *Matcher) aliasesFor(sys template.TieredSystem) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(list []string) {
		for _, a := range list {
			n := NormalizeName(a)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	add(sys.Aliases)
	add(m.aliases[sys.Category])
	return out
}

func (m *Matcher) matched(row model.SystemComparison, c candidate, status model.MatchStatus,
	tier model.MatchTier, ceiling model.Confidence, note string) model.SystemComparison {
	cal := Calibrate(ceiling, []Evidence{{
		Name:       "inventory item " + c.item.ID,
		Provenance: c.item.Provenance,
		Documents:  nonEmpty(c.item.SourceDocument),
	}})

	row.Status = status
	row.MatchTier = tier
	row.ObservedName = c.item.Name
	row.ObservedVendor = c.item.Vendor
	if row.ObservedVendor == "" {
		row.ObservedVendor = vendorNotStated
	}
	if row.ObservedName == "" {
		row.ObservedName = row.ObservedVendor
	}
	row.InventoryItemID = c.item.ID
	row.SourceDocument = c.item.SourceDocument
	row.Confidence = cal.Confidence
	row.Notes = note
	if cal.Confidence.Rank() < ceiling.Rank() {
		row.Notes += " " + cal.Rationale
	}
	return row
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
