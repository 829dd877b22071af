package template

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// ErrNotFound is returned when no template matches.
var ErrNotFound = eris.New("template: not found")

// Resolution levels, in fallback order.
const (
	MatchedSubIndustry       = "sub_industry"
	MatchedPrimaryIndustry   = "primary_industry"
	MatchedSecondaryIndustry = "secondary_industry"
	MatchedDefault           = "default"
	MatchedExplicit          = "explicit"
)

// Resolution is the outcome of resolving a classification to a template.
type Resolution struct {
	Template  *Template
	MatchedOn string
	Key       string
}

// Cache holds loaded templates and resolves classifications to them.
// Templates are loaded lazily from the Source on first use.
type Cache struct {
	src       Source
	defaultID string

	mu        sync.RWMutex
	loaded    bool
	templates map[string]*Template
	byKey     map[string]string // industry/sub-industry key -> template id
	stale     map[string]bool
}

// NewCache creates a cache backed by src. defaultID names the template
// used when no industry key matches.
func NewCache(src Source, defaultID string) *Cache {
	return &Cache{
		src:       src,
		defaultID: defaultID,
		templates: make(map[string]*Template),
		byKey:     make(map[string]string),
		stale:     make(map[string]bool),
	}
}

// Reload replaces the cached templates with a fresh load from the source.
// On failure the previous contents are kept.
func (c *Cache) Reload(ctx context.Context) error {
	list, err := c.src.Load(ctx)
	if err != nil {
		return eris.Wrap(err, "template: reload")
	}

	templates := make(map[string]*Template, len(list))
	for _, t := range list {
		if _, dup := templates[t.ID]; dup {
			return eris.Errorf("template: reload: duplicate id %q", t.ID)
		}
		templates[t.ID] = t
	}

	c.mu.Lock()
	c.templates = templates
	c.byKey = indexKeys(templates)
	c.stale = make(map[string]bool)
	c.loaded = true
	c.mu.Unlock()

	zap.L().Debug("template: cache reloaded", zap.Int("templates", len(templates)))
	return nil
}

// indexKeys maps industry and sub-industry keys to template ids. Sub-industry
// keys win over industry keys; for an industry key, a template without a
// sub-industry wins; remaining ties go to the lowest id.
func indexKeys(templates map[string]*Template) map[string]string {
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	idx := make(map[string]string)
	put := func(key, id string) {
		key = normalizeKey(key)
		if key == "" {
			return
		}
		if _, ok := idx[key]; !ok {
			idx[key] = id
		}
	}
	for _, id := range ids {
		put(templates[id].SubIndustry, id)
	}
	for _, id := range ids {
		if templates[id].SubIndustry == "" {
			put(templates[id].Industry, id)
		}
	}
	for _, id := range ids {
		put(templates[id].Industry, id)
	}
	return idx
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "&", "and").Replace(s)
}

// ensureLoaded loads the cache on first use and reloads it while any
// template is invalidated, so lookups never fall through past a dropped id.
func (c *Cache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	fresh := c.loaded && len(c.stale) == 0
	c.mu.RUnlock()
	if fresh {
		return nil
	}
	return c.Reload(ctx)
}

// Get returns the template with the given id. An id that was invalidated is
// reloaded from the source.
func (c *Cache) Get(ctx context.Context, id string) (*Template, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	t, ok := c.templates[id]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "template: id %q", id)
}

// Resolve picks the template for a classification, trying the sub-industry,
// the primary industry, each secondary industry in order, then the default.
func (c *Cache) Resolve(ctx context.Context, cls model.IndustryClassification) (*Resolution, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	type candidate struct {
		key, level string
	}
	cands := []candidate{
		{cls.SubIndustry, MatchedSubIndustry},
		{cls.PrimaryIndustry, MatchedPrimaryIndustry},
	}
	for _, s := range cls.SecondaryIndustries {
		cands = append(cands, candidate{s, MatchedSecondaryIndustry})
	}

	c.mu.RLock()
	for _, cand := range cands {
		key := normalizeKey(cand.key)
		if key == "" {
			continue
		}
		id, ok := c.byKey[key]
		if !ok {
			if _, direct := c.templates[key]; direct {
				id, ok = key, true
			}
		}
		if ok {
			t := c.templates[id]
			c.mu.RUnlock()
			return &Resolution{Template: t, MatchedOn: cand.level, Key: cand.key}, nil
		}
	}
	c.mu.RUnlock()

	if c.defaultID == "" {
		return nil, eris.Wrap(ErrNotFound, "template: no match and no default configured")
	}
	t, err := c.Get(ctx, c.defaultID)
	if err != nil {
		return nil, eris.Wrap(err, "template: default")
	}
	zap.L().Debug("template: falling back to default",
		zap.String("primary_industry", cls.PrimaryIndustry),
		zap.String("default", c.defaultID),
	)
	return &Resolution{Template: t, MatchedOn: MatchedDefault, Key: c.defaultID}, nil
}

// List returns all cached templates sorted by id.
func (c *Cache) List(ctx context.Context) ([]*Template, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Invalidate drops one template (or all, for an empty id). The next lookup
// of any kind reloads from the source.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.loaded = false
		return
	}
	delete(c.templates, id)
	c.byKey = indexKeys(c.templates)
	c.stale[id] = true
}

// ForSnapshot resolves the template for an analysis input. An explicit
// template id on the snapshot wins over classification.
func (c *Cache) ForSnapshot(ctx context.Context, snap *model.Snapshot) (*Resolution, error) {
	if snap == nil {
		return nil, eris.New("template: snapshot is nil")
	}
	if snap.TemplateID != "" {
		t, err := c.Get(ctx, snap.TemplateID)
		if err != nil {
			return nil, err
		}
		return &Resolution{Template: t, MatchedOn: MatchedExplicit, Key: snap.TemplateID}, nil
	}
	return c.Resolve(ctx, snap.Classification)
}
