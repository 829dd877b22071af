// Package template defines industry reference templates: the expected
// metrics, systems, organization and deal-lens considerations a company is
// benchmarked against.
package template

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Template is a validated industry reference template. Loaded templates are
// shared by the cache and must be treated as read-only.
type Template struct {
	ID           string                     `json:"id" yaml:"id"`
	Version      string                     `json:"version" yaml:"version"`
	Name         string                     `json:"name,omitempty" yaml:"name,omitempty"`
	Industry     string                     `json:"industry,omitempty" yaml:"industry,omitempty"`
	SubIndustry  string                     `json:"sub_industry,omitempty" yaml:"sub_industry,omitempty"`
	Metrics      []ExpectedMetric           `json:"expected_metrics" yaml:"expected_metrics"`
	Systems      ExpectedSystems            `json:"expected_systems" yaml:"expected_systems"`
	Organization ExpectedOrganization       `json:"expected_organization" yaml:"expected_organization"`
	DealLenses   map[string][]Consideration `json:"deal_lenses,omitempty" yaml:"deal_lenses,omitempty"`
	Workflows    []string                   `json:"workflows,omitempty" yaml:"workflows,omitempty"`
}

// ExpectedMetric is the expected range for one benchmark metric.
type ExpectedMetric struct {
	Key     string  `json:"key" yaml:"key"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	Low     float64 `json:"low" yaml:"low"`
	Typical float64 `json:"typical,omitempty" yaml:"typical,omitempty"` // 0 = midpoint of low/high
	High    float64 `json:"high" yaml:"high"`
	Unit    string  `json:"unit" yaml:"unit"`
	Source  string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// ExpectedSystem is a canonical system category the industry usually runs.
type ExpectedSystem struct {
	Category      string   `json:"category" yaml:"category"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	CommonVendors []string `json:"common_vendors,omitempty" yaml:"common_vendors,omitempty"`
	Aliases       []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// ExpectedSystems groups expected systems by criticality tier.
type ExpectedSystems struct {
	Critical          []ExpectedSystem `json:"critical,omitempty" yaml:"critical,omitempty"`
	Common            []ExpectedSystem `json:"common,omitempty" yaml:"common,omitempty"`
	GeneralEnterprise []ExpectedSystem `json:"general_enterprise,omitempty" yaml:"general_enterprise,omitempty"`
}

// TieredSystem is an expected system with its tier attached.
type TieredSystem struct {
	ExpectedSystem
	Criticality model.Criticality
}

// All returns every expected system in report order: critical, common,
// then general enterprise, each in declared order.
func (s ExpectedSystems) All() []TieredSystem {
	out := make([]TieredSystem, 0, len(s.Critical)+len(s.Common)+len(s.GeneralEnterprise))
	for _, es := range s.Critical {
		out = append(out, TieredSystem{ExpectedSystem: es, Criticality: model.CriticalityCritical})
	}
	for _, es := range s.Common {
		out = append(out, TieredSystem{ExpectedSystem: es, Criticality: model.CriticalityCommon})
	}
	for _, es := range s.GeneralEnterprise {
		out = append(out, TieredSystem{ExpectedSystem: es, Criticality: model.CriticalityGeneralEnterprise})
	}
	return out
}

// ExpectedRole is an IT role category and its expected headcount. Either
// Count or the Low/High pair is set.
type ExpectedRole struct {
	Category string   `json:"category" yaml:"category"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Count    *float64 `json:"count,omitempty" yaml:"count,omitempty"`
	Low      *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High     *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	Titles   []string `json:"titles,omitempty" yaml:"titles,omitempty"`
	// Services are MSP service names that count toward this role.
	Services []string `json:"services,omitempty" yaml:"services,omitempty"`
}

// Range returns the expected [low, high] headcount. ok is false when the
// role carries no expectation.
func (r ExpectedRole) Range() (low, high float64, ok bool) {
	if r.Count != nil {
		return *r.Count, *r.Count, true
	}
	if r.Low != nil && r.High != nil {
		return *r.Low, *r.High, true
	}
	return 0, 0, false
}

// RangeLabel renders the expectation as "3" or "2-4".
func (r ExpectedRole) RangeLabel() string {
	low, high, ok := r.Range()
	if !ok {
		return ""
	}
	if low == high {
		return formatCount(low)
	}
	return formatCount(low) + "-" + formatCount(high)
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// ExpectedOrganization is the expected IT organization shape.
type ExpectedOrganization struct {
	Roles               []ExpectedRole `json:"roles,omitempty" yaml:"roles,omitempty"`
	OutsourcingPatterns []string       `json:"outsourcing_patterns,omitempty" yaml:"outsourcing_patterns,omitempty"`
}

// Consideration is a deal-lens business consideration.
type Consideration struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text           string   `json:"text" yaml:"text"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	RelatedSystems []string `json:"related_systems,omitempty" yaml:"related_systems,omitempty"`
	Priority       string   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Considerations returns the considerations for lens in declared order.
func (t *Template) Considerations(lens string) []Consideration {
	if t == nil || lens == "" {
		return nil
	}
	return t.DealLenses[lens]
}

// Metric returns the expected metric with the given key.
func (t *Template) Metric(key string) (ExpectedMetric, bool) {
	for _, m := range t.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return ExpectedMetric{}, false
}

// normalize fills optional fields that have a derived default.
func (t *Template) normalize() {
	for i := range t.Metrics {
		m := &t.Metrics[i]
		if m.Label == "" {
			m.Label = humanize(m.Key)
		}
		if m.Typical == 0 && (m.Low != 0 || m.High != 0) {
			m.Typical = (m.Low + m.High) / 2
		}
	}
	for i := range t.Organization.Roles {
		r := &t.Organization.Roles[i]
		if r.Label == "" {
			r.Label = humanize(r.Category)
		}
	}
}

func humanize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Validate checks the template's structural invariants and returns every
// problem found in a single error.
func Validate(t *Template) error {
	if t == nil {
		return eris.New("template: nil template")
	}

	var errs []string
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if t.ID == "" {
		addf("id is required")
	}
	if t.Version == "" {
		addf("version is required")
	}

	seenMetric := make(map[string]bool, len(t.Metrics))
	for i, m := range t.Metrics {
		if m.Key == "" {
			addf("metric %d: key is required", i)
			continue
		}
		if seenMetric[m.Key] {
			addf("metric %s: duplicate key", m.Key)
		}
		seenMetric[m.Key] = true
		if m.Unit == "" {
			addf("metric %s: unit is required", m.Key)
		}
		if !isFinite(m.Low) || !isFinite(m.Typical) || !isFinite(m.High) {
			addf("metric %s: bounds must be finite", m.Key)
			continue
		}
		if m.Low > m.High {
			addf("metric %s: low %g > high %g", m.Key, m.Low, m.High)
		} else if m.Typical < m.Low || m.Typical > m.High {
			addf("metric %s: typical %g outside [%g, %g]", m.Key, m.Typical, m.Low, m.High)
		}
	}

	seenSystem := make(map[string]bool)
	for _, ts := range t.Systems.All() {
		if ts.Category == "" {
			addf("%s system: category is required", ts.Criticality)
			continue
		}
		if seenSystem[ts.Category] {
			addf("system %s: duplicate category", ts.Category)
		}
		seenSystem[ts.Category] = true
		if ts.Criticality == model.CriticalityCritical && len(ts.CommonVendors) == 0 {
			addf("system %s: critical systems need at least one common vendor", ts.Category)
		}
		for _, v := range ts.CommonVendors {
			if strings.TrimSpace(v) == "" {
				addf("system %s: empty vendor name", ts.Category)
				break
			}
		}
	}

	seenRole := make(map[string]bool)
	for i, r := range t.Organization.Roles {
		if r.Category == "" {
			addf("role %d: category is required", i)
			continue
		}
		if seenRole[r.Category] {
			addf("role %s: duplicate category", r.Category)
		}
		seenRole[r.Category] = true
		if r.Count != nil && (r.Low != nil || r.High != nil) {
			addf("role %s: set either count or low/high, not both", r.Category)
			continue
		}
		if (r.Low == nil) != (r.High == nil) {
			addf("role %s: low and high must be set together", r.Category)
			continue
		}
		low, high, ok := r.Range()
		if !ok {
			continue
		}
		if low < 0 || high < 0 {
			addf("role %s: counts must be non-negative", r.Category)
		} else if low > high {
			addf("role %s: low %g > high %g", r.Category, low, high)
		}
	}

	for lens, items := range t.DealLenses {
		seen := make(map[string]bool, len(items))
		for i, c := range items {
			if c.ID == "" {
				addf("deal lens %s: consideration %d: id is required", lens, i)
				continue
			}
			if seen[c.ID] {
				addf("deal lens %s: duplicate consideration %s", lens, c.ID)
			}
			seen[c.ID] = true
			if strings.TrimSpace(c.Text) == "" {
				addf("deal lens %s: consideration %s: text is required", lens, c.ID)
			}
		}
	}

	if len(errs) > 0 {
		// Map iteration above is unordered; keep the message stable.
		sort.Strings(errs)
		return eris.Errorf("template: %q invalid: %s", t.ID, strings.Join(errs, "; "))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
