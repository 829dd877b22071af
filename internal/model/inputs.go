package model

// Fact is a single extracted statement from the data room.
type Fact struct {
	ID             string         `json:"id" yaml:"id"`
	Domain         string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Category       string         `json:"category,omitempty" yaml:"category,omitempty"`
	Item           string         `json:"item" yaml:"item"`
	Details        map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Status         string         `json:"status,omitempty" yaml:"status,omitempty"`
	SourceDocument string         `json:"source_document,omitempty" yaml:"source_document,omitempty"`
	Evidence       string         `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// InventoryItem is a discovered application or system.
type InventoryItem struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Vendor         string         `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Category       string         `json:"category,omitempty" yaml:"category,omitempty"`
	Version        string         `json:"version,omitempty" yaml:"version,omitempty"`
	Provenance     ProvenanceKind `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	SourceDocument string         `json:"source_document,omitempty" yaml:"source_document,omitempty"`
}

// StaffMember is one person on the IT roster.
type StaffMember struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Role           string   `json:"role,omitempty" yaml:"role,omitempty"`
	Category       string   `json:"category,omitempty" yaml:"category,omitempty"`
	FTE            *float64 `json:"fte,omitempty" yaml:"fte,omitempty"` // nil means 1.0
	SourceDocument string   `json:"source_document,omitempty" yaml:"source_document,omitempty"`
}

// EffectiveFTE returns the member's FTE, defaulting to a full-time person.
func (s StaffMember) EffectiveFTE() float64 {
	if s.FTE == nil {
		return 1.0
	}
	return *s.FTE
}

// DependencyLevel is how much the company relies on an MSP.
type DependencyLevel string

const (
	DependencyPrimary      DependencyLevel = "primary"
	DependencyPartial      DependencyLevel = "partial"
	DependencySupplemental DependencyLevel = "supplemental"
)

// MSPRelationship is a managed-service-provider engagement.
type MSPRelationship struct {
	ID             string          `json:"id" yaml:"id"`
	Vendor         string          `json:"vendor" yaml:"vendor"`
	Services       []string        `json:"services,omitempty" yaml:"services,omitempty"` // role category keys
	FTEEquivalent  float64         `json:"fte_equivalent" yaml:"fte_equivalent"`
	Dependency     DependencyLevel `json:"dependency,omitempty" yaml:"dependency,omitempty"`
	SourceDocument string          `json:"source_document,omitempty" yaml:"source_document,omitempty"`
}

// Organization is the IT roster plus MSP relationships.
type Organization struct {
	Staff []StaffMember     `json:"staff,omitempty" yaml:"staff,omitempty"`
	MSPs  []MSPRelationship `json:"msps,omitempty" yaml:"msps,omitempty"`
}

// Snapshot is the full, already-materialized input to one comparison.
// Organization is nil when no organization data was extracted.
type Snapshot struct {
	CompanyID      string                 `json:"company_id" yaml:"company_id"`
	Profile        CompanyProfile         `json:"profile" yaml:"profile"`
	Classification IndustryClassification `json:"classification" yaml:"classification"`
	Facts          []Fact                 `json:"facts,omitempty" yaml:"facts,omitempty"`
	Inventory      []InventoryItem        `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Organization   *Organization          `json:"organization,omitempty" yaml:"organization,omitempty"`
	DealLens       string                 `json:"deal_lens,omitempty" yaml:"deal_lens,omitempty"`
	TemplateID     string                 `json:"template_id,omitempty" yaml:"template_id,omitempty"` // overrides classification-based resolution
}
