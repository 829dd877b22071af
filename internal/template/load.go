package template

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Parse decodes a template from data in the given format ("json" or
// "yaml"), fills derived defaults and validates it.
func Parse(data []byte, format string) (*Template, error) {
	var t Template
	switch format {
	case "json":
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, eris.Wrap(err, "template: parse json")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, eris.Wrap(err, "template: parse yaml")
		}
	default:
		return nil, eris.Errorf("template: unsupported format %q", format)
	}

	t.normalize()
	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a single template file. The format follows the extension.
func LoadFile(path string) (*Template, error) {
	format, ok := formatFor(path)
	if !ok {
		return nil, eris.Errorf("template: unsupported file extension %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "template: read %s", path)
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, eris.Wrapf(err, "template: load %s", path)
	}
	return t, nil
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

// Source supplies the full set of templates to a Cache.
type Source interface {
	Load(ctx context.Context) ([]*Template, error)
}

// DirSource loads every .json, .yaml and .yml file in a directory.
type DirSource struct {
	Dir string
}

// Load implements Source. Files are read in name order; duplicate template
// ids across files are an error.
func (d DirSource) Load(ctx context.Context) ([]*Template, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, eris.Wrapf(err, "template: read dir %s", d.Dir)
	}

	var out []*Template
	origin := make(map[string]string)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "template: load cancelled")
		}
		if e.IsDir() {
			continue
		}
		if _, ok := formatFor(e.Name()); !ok {
			continue
		}
		path := filepath.Join(d.Dir, e.Name())
		t, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := origin[t.ID]; dup {
			return nil, eris.Errorf("template: duplicate id %q in %s and %s", t.ID, prev, path)
		}
		origin[t.ID] = path
		out = append(out, t)
	}
	return out, nil
}

// StaticSource serves a fixed set of templates.
type StaticSource []*Template

// Load implements Source.
func (s StaticSource) Load(_ context.Context) ([]*Template, error) {
	for _, t := range s {
		if err := Validate(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}
