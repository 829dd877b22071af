package benchmark

import (
	"sort"
	"strings"

	"github.com/sells-group/benchmark-cli/internal/model"
	"github.com/sells-group/benchmark-cli/internal/template"
)

// considerations filters the template's considerations to the active lens
// and annotates each with inventory and fact evidence. Evidence is only what
// was observed: keyword hits in item or fact text, or inventory items that
// matched one of the consideration's related system categories.
func considerations(tpl *template.Template, lens string, cands []candidate, facts []model.Fact, systems []model.SystemComparison) []model.Consideration {
	defs := tpl.Considerations(lens)
	out := make([]model.Consideration, 0, len(defs))
	if len(defs) == 0 {
		return out
	}

	// Items matched per category by the system matcher.
	matchedBy := make(map[string]string, len(systems))
	for _, s := range systems {
		if s.Status != model.MatchNotFound && s.InventoryItemID != "" {
			matchedBy[s.Category] = s.InventoryItemID
		}
	}

	sortedFacts := append([]model.Fact(nil), facts...)
	sort.SliceStable(sortedFacts, func(i, j int) bool { return sortedFacts[i].ID < sortedFacts[j].ID })

	for _, def := range defs {
		keywords := normalizeAllText(def.Keywords)
		related := make(map[string]bool, len(def.RelatedSystems))
		for _, cat := range def.RelatedSystems {
			if id, ok := matchedBy[cat]; ok {
				related[id] = true
			}
		}

		var ev []model.EvidenceRef
		for _, c := range cands {
			text := NormalizeText(strings.Join([]string{c.item.Name, c.item.Vendor, c.item.Category}, " "))
			if related[c.item.ID] || anyPhrase(text, keywords) {
				ev = append(ev, model.EvidenceRef{
					Kind:           "inventory",
					ID:             c.item.ID,
					Description:    describeItem(c.item),
					SourceDocument: c.item.SourceDocument,
				})
			}
		}
		for _, f := range sortedFacts {
			text := NormalizeText(strings.Join([]string{f.Category, f.Item, f.Evidence}, " "))
			if anyPhrase(text, keywords) {
				ev = append(ev, model.EvidenceRef{
					Kind:           "fact",
					ID:             f.ID,
					Description:    f.Item,
					SourceDocument: f.SourceDocument,
				})
			}
		}

		status := model.EvidenceNone
		if len(ev) > 0 {
			status = model.EvidenceFound
		} else {
			ev = []model.EvidenceRef{}
		}
		out = append(out, model.Consideration{
			ID:       def.ID,
			Title:    def.Title,
			Text:     def.Text,
			Priority: def.Priority,
			Status:   status,
			Evidence: ev,
		})
	}
	return out
}

func normalizeAllText(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := NormalizeText(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}

func describeItem(it model.InventoryItem) string {
	if it.Vendor == "" {
		return it.Name
	}
	return it.Name + " (" + it.Vendor + ")"
}
