// Package snapshot loads analysis input bundles (profile, classification,
// facts, inventory and organization) from disk.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// Decode parses a snapshot in the given format ("json" or "yaml"). JSON
// numbers are kept as json.Number so large integers survive intact.
func Decode(data []byte, format string) (*model.Snapshot, error) {
	var s model.Snapshot
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&s); err != nil {
			return nil, eris.Wrap(err, "snapshot: parse json")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, eris.Wrap(err, "snapshot: parse yaml")
		}
	default:
		return nil, eris.Errorf("snapshot: unsupported format %q", format)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a snapshot file; the format follows the extension.
func LoadFile(path string) (*model.Snapshot, error) {
	format, ok := formatFor(path)
	if !ok {
		return nil, eris.Errorf("snapshot: unsupported file extension %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: read %s", path)
	}
	s, err := Decode(data, format)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: load %s", path)
	}
	if s.CompanyID == "" {
		s.CompanyID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ListDir returns the snapshot files in dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "snapshot: read dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := formatFor(e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func formatFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	}
	return "", false
}

// Validate rejects records with empty or duplicate ids. Output ordering
// relies on ids being unique keys.
func Validate(s *model.Snapshot) error {
	var errs []string
	check := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for i, id := range ids {
			if id == "" {
				errs = append(errs, fmt.Sprintf("%s %d: id is required", kind, i))
				continue
			}
			if seen[id] {
				errs = append(errs, fmt.Sprintf("%s %s: duplicate id", kind, id))
			}
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(s.Facts))
	for _, f := range s.Facts {
		ids = append(ids, f.ID)
	}
	check("fact", ids)

	ids = ids[:0]
	for _, it := range s.Inventory {
		ids = append(ids, it.ID)
	}
	check("inventory item", ids)

	if s.Organization != nil {
		ids = ids[:0]
		for _, m := range s.Organization.Staff {
			ids = append(ids, m.ID)
		}
		check("staff member", ids)

		ids = ids[:0]
		for _, m := range s.Organization.MSPs {
			ids = append(ids, m.ID)
		}
		check("msp", ids)
	}

	for _, key := range []string{model.FieldRevenue, model.FieldEmployeeCount, model.FieldITHeadcount, model.FieldITBudget} {
		if f := s.Profile.Field(key); f != nil {
			if f.Provenance != "" && !f.Provenance.Valid() {
				errs = append(errs, fmt.Sprintf("profile %s: unknown provenance %q", key, f.Provenance))
			}
			if f.Confidence != "" && !f.Confidence.Valid() {
				errs = append(errs, fmt.Sprintf("profile %s: unknown confidence %q", key, f.Confidence))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("snapshot: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
