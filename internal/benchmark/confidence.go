package benchmark

import (
	"sort"
	"strings"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Evidence is one contributing input to a comparison.
type Evidence struct {
	Name       string // human label, e.g. "IT budget"
	Provenance model.ProvenanceKind
	Confidence model.Confidence // extraction confidence; empty means not stated
	Documents  []string
	FactIDs    []string
}

// Calibration is the confidence label for a comparison plus its sources.
type Calibration struct {
	Confidence model.Confidence
	Rationale  string
	FactIDs    []string
	Documents  []string
}

// effectiveProvenance resolves an unset provenance: inputs that cite a
// source document are document-sourced, anything else is unknown.
func effectiveProvenance(e Evidence) model.ProvenanceKind {
	if e.Provenance != "" {
		return e.Provenance
	}
	if len(e.Documents) > 0 {
		return model.ProvenanceDocument
	}
	return ""
}

// Calibrate computes the confidence a comparison may claim. High is only
// possible when every input is document-sourced or user-specified; an
// inferred input caps at medium; a default or unsourced input caps at low.
// An input's own extraction confidence is a further cap.
func Calibrate(ceiling model.Confidence, evidence []Evidence) Calibration {
	if len(evidence) == 0 {
		return Calibration{Confidence: model.ConfidenceLow, Rationale: "No contributing inputs."}
	}
	if !ceiling.Valid() {
		ceiling = model.ConfidenceHigh
	}

	conf := ceiling
	var notes []string
	capTo := func(c model.Confidence, note string) {
		if c.Rank() < conf.Rank() {
			conf = c
		}
		notes = append(notes, note)
	}

	var facts, docs []string
	for _, e := range evidence {
		switch effectiveProvenance(e) {
		case model.ProvenanceDocument, model.ProvenanceUserSpecified:
		case model.ProvenanceInferred:
			capTo(model.ConfidenceMedium, e.Name+" is inferred")
		case model.ProvenanceDefault:
			capTo(model.ConfidenceLow, e.Name+" uses a default value")
		default:
			capTo(model.ConfidenceLow, e.Name+" has no recorded source")
		}
		if e.Confidence.Valid() && e.Confidence.Rank() < ceiling.Rank() {
			capTo(e.Confidence, e.Name+" was extracted with "+string(e.Confidence)+" confidence")
		}
		facts = append(facts, e.FactIDs...)
		docs = append(docs, e.Documents...)
	}

	rationale := "All contributing inputs are document-sourced or user-specified."
	if ceiling != model.ConfidenceHigh {
		rationale = "Match method limits confidence to " + string(ceiling) + "."
	}
	if len(notes) > 0 {
		rationale = "Capped at " + string(conf) + ": " + strings.Join(notes, "; ") + "."
	}

	return Calibration{
		Confidence: conf,
		Rationale:  rationale,
		FactIDs:    sortedUnique(facts),
		Documents:  sortedUnique(docs),
	}
}

// fieldEvidence describes a profile field as calibration input.
func fieldEvidence(key string, f *model.ProfileField) Evidence {
	if f == nil {
		return Evidence{Name: model.FieldLabel(key)}
	}
	return Evidence{
		Name:       model.FieldLabel(key),
		Provenance: f.Provenance,
		Confidence: f.Confidence,
		Documents:  f.SourceDocuments,
		FactIDs:    f.SourceFactIDs,
	}
}

// inventoryEvidence folds the inventory into one input carrying the weakest
// provenance of any item.
func inventoryEvidence(items []model.InventoryItem) Evidence {
	e := Evidence{Name: "inventory", Provenance: model.ProvenanceDocument}
	worst := 0
	for _, it := range items {
		p := effectiveProvenance(Evidence{Provenance: it.Provenance, Documents: nonEmpty(it.SourceDocument)})
		if w := provenanceWeakness(p); w > worst {
			worst = w
			e.Provenance = p
		}
		e.FactIDs = append(e.FactIDs, it.ID)
		e.Documents = append(e.Documents, nonEmpty(it.SourceDocument)...)
	}
	return e
}

func provenanceWeakness(p model.ProvenanceKind) int {
	switch p {
	case model.ProvenanceDocument, model.ProvenanceUserSpecified:
		return 0
	case model.ProvenanceInferred:
		return 1
	case model.ProvenanceDefault:
		return 2
	}
	return 3
}

// OverallConfidence returns the most frequent label among eligible metric
// comparisons, preferring the lower label on ties. Low when none are eligible.
func OverallConfidence(metrics []model.MetricComparison) model.Confidence {
	counts := make(map[model.Confidence]int, 3)
	for _, m := range metrics {
		if m.Eligible && m.Confidence.Valid() {
			counts[m.Confidence]++
		}
	}
	best := model.ConfidenceLow
	bestN := 0
	// Ascending rank so ties keep the lower label.
	for _, c := range []model.Confidence{model.ConfidenceLow, model.ConfidenceMedium, model.ConfidenceHigh} {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
