package model

// ProvenanceKind describes where a profile value came from.
type ProvenanceKind string

const (
	ProvenanceDocument      ProvenanceKind = "document"       // extracted from a data-room document
	ProvenanceUserSpecified ProvenanceKind = "user_specified" // entered by the deal team
	ProvenanceInferred      ProvenanceKind = "inferred"       // derived from other values
	ProvenanceDefault       ProvenanceKind = "default"        // placeholder or default value
)

// Valid reports whether p is a known provenance kind.
func (p ProvenanceKind) Valid() bool {
	switch p {
	case ProvenanceDocument, ProvenanceUserSpecified, ProvenanceInferred, ProvenanceDefault:
		return true
	}
	return false
}

// Confidence is a coarse confidence label.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence labels: low=1, medium=2, high=3. Unknown labels rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Valid reports whether c is a known confidence label.
func (c Confidence) Valid() bool { return c.Rank() > 0 }

// MinConfidence returns the lower of two labels. Unknown labels count as low.
func MinConfidence(a, b Confidence) Confidence {
	if !a.Valid() {
		a = ConfidenceLow
	}
	if !b.Valid() {
		b = ConfidenceLow
	}
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// Profile field keys.
const (
	FieldRevenue        = "revenue"
	FieldEmployeeCount  = "employee_count"
	FieldITHeadcount    = "it_headcount"
	FieldITBudget       = "it_budget"
	FieldGeography      = "geography"
	FieldOperatingModel = "operating_model"
	FieldSizeTier       = "size_tier"
)

var fieldLabels = map[string]string{
	FieldRevenue:        "revenue",
	FieldEmployeeCount:  "employee count",
	FieldITHeadcount:    "IT headcount",
	FieldITBudget:       "IT budget",
	FieldGeography:      "geography",
	FieldOperatingModel: "operating model",
	FieldSizeTier:       "size tier",
}

// FieldLabel returns the human-readable name of a profile field key.
func FieldLabel(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return key
}

// ProfileField is a single valued profile attribute with its evidence.
type ProfileField struct {
	Value           any            `json:"value" yaml:"value"`
	Confidence      Confidence     `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Provenance      ProvenanceKind `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	SourceDocuments []string       `json:"source_documents,omitempty" yaml:"source_documents,omitempty"`
	SourceFactIDs   []string       `json:"source_fact_ids,omitempty" yaml:"source_fact_ids,omitempty"`
}

// IsNull reports whether the field is absent or carries no value.
func (f *ProfileField) IsNull() bool { return f == nil || f.Value == nil }

// CompanyProfile is the extracted profile of the target company.
type CompanyProfile struct {
	Name           string        `json:"name,omitempty" yaml:"name,omitempty"`
	Revenue        *ProfileField `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	EmployeeCount  *ProfileField `json:"employee_count,omitempty" yaml:"employee_count,omitempty"`
	ITHeadcount    *ProfileField `json:"it_headcount,omitempty" yaml:"it_headcount,omitempty"`
	ITBudget       *ProfileField `json:"it_budget,omitempty" yaml:"it_budget,omitempty"`
	Geography      *ProfileField `json:"geography,omitempty" yaml:"geography,omitempty"`
	OperatingModel *ProfileField `json:"operating_model,omitempty" yaml:"operating_model,omitempty"`
	SizeTier       *ProfileField `json:"size_tier,omitempty" yaml:"size_tier,omitempty"`
}

// Field returns the profile field for key, or nil if unset or unknown.
// Safe on a nil profile.
func (p *CompanyProfile) Field(key string) *ProfileField {
	if p == nil {
		return nil
	}
	switch key {
	case FieldRevenue:
		return p.Revenue
	case FieldEmployeeCount:
		return p.EmployeeCount
	case FieldITHeadcount:
		return p.ITHeadcount
	case FieldITBudget:
		return p.ITBudget
	case FieldGeography:
		return p.Geography
	case FieldOperatingModel:
		return p.OperatingModel
	case FieldSizeTier:
		return p.SizeTier
	}
	return nil
}
