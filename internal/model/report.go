package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// VarianceCategory classifies an observed metric against its expected range.
// Bands are ordered from far below to far above.
type VarianceCategory string

const (
	VarianceFarBelow         VarianceCategory = "far_below"
	VarianceBelowRange       VarianceCategory = "below_range"
	VarianceLowEnd           VarianceCategory = "low_end"
	VarianceWithinRange      VarianceCategory = "within_range"
	VarianceHighEnd          VarianceCategory = "high_end"
	VarianceAboveRange       VarianceCategory = "above_range"
	VarianceFarAbove         VarianceCategory = "far_above"
	VarianceInsufficientData VarianceCategory = "insufficient_data"
)

// Severity returns the signed distance of the band from within_range:
// negative below, positive above, 0 within. insufficient_data has no severity.
func (v VarianceCategory) Severity() (int, bool) {
	switch v {
	case VarianceFarBelow:
		return -3, true
	case VarianceBelowRange:
		return -2, true
	case VarianceLowEnd:
		return -1, true
	case VarianceWithinRange:
		return 0, true
	case VarianceHighEnd:
		return 1, true
	case VarianceAboveRange:
		return 2, true
	case VarianceFarAbove:
		return 3, true
	}
	return 0, false
}

// MatchStatus is the outcome of matching an expected system against inventory.
type MatchStatus string

const (
	MatchFound    MatchStatus = "found"
	MatchPartial  MatchStatus = "partial"
	MatchNotFound MatchStatus = "not_found"
)

// MatchTier records which resolution tier produced a match.
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierAlias   MatchTier = "alias"
	TierPartial MatchTier = "partial"
	TierNone    MatchTier = "none"
)

// Criticality is the template tier an expected system belongs to.
type Criticality string

const (
	CriticalityCritical          Criticality = "critical"
	CriticalityCommon            Criticality = "common"
	CriticalityGeneralEnterprise Criticality = "general_enterprise"
)

// StaffingVariance classifies observed staffing against the expectation.
type StaffingVariance string

const (
	StaffingMatch   StaffingVariance = "match"
	StaffingOver    StaffingVariance = "over"
	StaffingLean    StaffingVariance = "lean"
	StaffingNone    StaffingVariance = "none"
	StaffingMSP     StaffingVariance = "msp"
	StaffingUnknown StaffingVariance = "unknown"
)

// EvidenceStatus records whether a deal-lens consideration has supporting evidence.
type EvidenceStatus string

const (
	EvidenceFound EvidenceStatus = "evidence_found"
	EvidenceNone  EvidenceStatus = "no_evidence"
)

// Provenance explains where a metric comparison's numbers came from.
type Provenance struct {
	ExpectedSource      string   `json:"expected_source"`
	TemplateID          string   `json:"template_id"`
	TemplateVersion     string   `json:"template_version"`
	Computation         string   `json:"computation"`
	SourceFactIDs       []string `json:"source_fact_ids"`
	SourceDocuments     []string `json:"source_documents"`
	ConfidenceRationale string   `json:"confidence_rationale"`
}

// MetricComparison is one template metric compared against the profile.
type MetricComparison struct {
	MetricID         string           `json:"metric_id"`
	Label            string           `json:"label"`
	ExpectedLow      float64          `json:"expected_low"`
	ExpectedTypical  float64          `json:"expected_typical"`
	ExpectedHigh     float64          `json:"expected_high"`
	Unit             string           `json:"unit"`
	Observed         *float64         `json:"observed"`
	ObservedDisplay  string           `json:"observed_display"`
	Variance         VarianceCategory `json:"variance_category,omitempty"`
	Eligible         bool             `json:"eligible"`
	IneligibleReason string           `json:"ineligibility_reason,omitempty"`
	Confidence       Confidence       `json:"confidence"`
	Provenance       *Provenance      `json:"provenance,omitempty"`
}

// SystemComparison is one expected system matched against the inventory.
type SystemComparison struct {
	Category        string      `json:"category"`
	Description     string      `json:"description"`
	Criticality     Criticality `json:"criticality"`
	IsCritical      bool        `json:"is_critical"`
	CommonVendors   []string    `json:"common_vendors"`
	Status          MatchStatus `json:"status"`
	MatchTier       MatchTier   `json:"match_tier"`
	ObservedName    string      `json:"observed_name,omitempty"`
	ObservedVendor  string      `json:"observed_vendor,omitempty"`
	InventoryItemID string      `json:"inventory_item_id,omitempty"`
	SourceDocument  string      `json:"source_document,omitempty"`
	Confidence      Confidence  `json:"confidence"`
	Notes           string      `json:"notes,omitempty"`
}

// StaffingComparison is one role category compared against the roster.
type StaffingComparison struct {
	Category        string           `json:"category"`
	Label           string           `json:"label"`
	ExpectedLow     *float64         `json:"expected_low,omitempty"`
	ExpectedHigh    *float64         `json:"expected_high,omitempty"`
	ExpectedLabel   string           `json:"expected_label,omitempty"`
	ObservedCount   int              `json:"observed_count"`
	ObservedNames   []string         `json:"observed_names"`
	ObservedFTE     float64          `json:"observed_fte"`
	MSPEquivalent   float64          `json:"msp_equivalent"`
	TotalFTE        float64          `json:"total_fte"`
	Variance        StaffingVariance `json:"variance"`
	MSPCoverageNote string           `json:"msp_coverage_note,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	SourceIDs       []string         `json:"source_ids,omitempty"`
}

// HasExpectation reports whether the template defines a count for the category.
func (s StaffingComparison) HasExpectation() bool {
	return s.ExpectedLow != nil && s.ExpectedHigh != nil
}

// EvidenceRef points at an inventory item or fact supporting a consideration.
type EvidenceRef struct {
	Kind           string `json:"kind"` // "inventory" or "fact"
	ID             string `json:"id"`
	Description    string `json:"description"`
	SourceDocument string `json:"source_document,omitempty"`
}

// Consideration is a deal-lens business consideration with its evidence.
type Consideration struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Text     string         `json:"text"`
	Priority string         `json:"priority,omitempty"`
	Status   EvidenceStatus `json:"status"`
	Evidence []EvidenceRef  `json:"evidence"`
}

// BenchmarkReport is the immutable result of one comparison.
type BenchmarkReport struct {
	CompanyID           string               `json:"company_id"`
	CompanyName         string               `json:"company_name,omitempty"`
	TemplateID          string               `json:"template_id"`
	TemplateVersion     string               `json:"template_version"`
	Metrics             []MetricComparison   `json:"metric_comparisons"`
	Systems             []SystemComparison   `json:"system_comparisons"`
	Staffing            []StaffingComparison `json:"staffing_comparisons"`
	EligibleMetricCount int                  `json:"eligible_metric_count"`
	TotalMetricCount    int                  `json:"total_metric_count"`
	OverallConfidence   Confidence           `json:"overall_confidence"`
	DealLens            string               `json:"deal_lens,omitempty"`
	Considerations      []Consideration      `json:"considerations"`
	IsDeterministic     bool                 `json:"is_deterministic"`
	ComputedAt          time.Time            `json:"computed_at"`
}

// CanonicalJSON encodes the report with the computation timestamp zeroed,
// so two runs over identical input encode to identical bytes.
func (r *BenchmarkReport) CanonicalJSON() ([]byte, error) {
	if r == nil {
		return nil, eris.New("model: nil report")
	}
	cp := *r
	cp.ComputedAt = time.Time{}
	b, err := json.Marshal(cp)
	if err != nil {
		return nil, eris.Wrap(err, "model: marshal report")
	}
	return b, nil
}

// Fingerprint returns the hex SHA-256 of the canonical encoding.
func (r *BenchmarkReport) Fingerprint() (string, error) {
	b, err := r.CanonicalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// StatusCounts tallies system match statuses.
type StatusCounts struct {
	Found    int `json:"found"`
	Partial  int `json:"partial"`
	NotFound int `json:"not_found"`
}

func (c *StatusCounts) add(s MatchStatus) {
	switch s {
	case MatchFound:
		c.Found++
	case MatchPartial:
		c.Partial++
	case MatchNotFound:
		c.NotFound++
	}
}

// SystemSummary is the per-tier breakdown of system match statuses.
type SystemSummary struct {
	ByTier map[Criticality]StatusCounts `json:"by_tier"`
	Total  StatusCounts                 `json:"total"`
}

// SystemSummary derives match counts per criticality tier.
func (r *BenchmarkReport) SystemSummary() SystemSummary {
	sum := SystemSummary{ByTier: make(map[Criticality]StatusCounts)}
	for _, s := range r.Systems {
		c := sum.ByTier[s.Criticality]
		c.add(s.Status)
		sum.ByTier[s.Criticality] = c
		sum.Total.add(s.Status)
	}
	return sum
}

// StaffingSummary counts role categories per staffing variance.
func (r *BenchmarkReport) StaffingSummary() map[StaffingVariance]int {
	out := make(map[StaffingVariance]int)
	for _, s := range r.Staffing {
		out[s.Variance]++
	}
	return out
}
