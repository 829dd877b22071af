package model

// IndustryClassification is the output of the external industry classifier.
type IndustryClassification struct {
	PrimaryIndustry     string     `json:"primary_industry" yaml:"primary_industry"`
	SubIndustry         string     `json:"sub_industry,omitempty" yaml:"sub_industry,omitempty"`
	SecondaryIndustries []string   `json:"secondary_industries,omitempty" yaml:"secondary_industries,omitempty"`
	Confidence          Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Evidence            []string   `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}
