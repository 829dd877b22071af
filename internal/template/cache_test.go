package template

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/benchmark-cli/internal/model"
)

// countingSource wraps a StaticSource and records how often it is loaded.
type countingSource struct {
	templates []*Template
	calls     atomic.Int32
	err       error
}

func (s *countingSource) Load(ctx context.Context) ([]*Template, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return StaticSource(s.templates).Load(ctx)
}

func tpl(id, industry, sub string) *Template {
	return &Template{ID: id, Version: "1", Industry: industry, SubIndustry: sub}
}

func newTestCache() (*Cache, *countingSource) {
	src := &countingSource{templates: []*Template{
		tpl("general_enterprise", "", ""),
		tpl("insurance_general", "insurance", ""),
		tpl("insurance_pc", "insurance", "property_casualty"),
		tpl("manufacturing", "manufacturing", ""),
	}}
	return NewCache(src, "general_enterprise"), src
}

func TestCacheResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cls       model.IndustryClassification
		wantID    string
		wantLevel string
	}{
		{
			name:      "sub-industry wins",
			cls:       model.IndustryClassification{PrimaryIndustry: "insurance", SubIndustry: "property_casualty"},
			wantID:    "insurance_pc",
			wantLevel: MatchedSubIndustry,
		},
		{
			name:      "primary industry prefers general template",
			cls:       model.IndustryClassification{PrimaryIndustry: "Insurance", SubIndustry: "life"},
			wantID:    "insurance_general",
			wantLevel: MatchedPrimaryIndustry,
		},
		{
			name:      "secondary industry",
			cls:       model.IndustryClassification{PrimaryIndustry: "logistics", SecondaryIndustries: []string{"retail", "manufacturing"}},
			wantID:    "manufacturing",
			wantLevel: MatchedSecondaryIndustry,
		},
		{
			name:      "template id as key",
			cls:       model.IndustryClassification{PrimaryIndustry: "insurance-pc"},
			wantID:    "insurance_pc",
			wantLevel: MatchedPrimaryIndustry,
		},
		{
			name:      "default fallback",
			cls:       model.IndustryClassification{PrimaryIndustry: "mining"},
			wantID:    "general_enterprise",
			wantLevel: MatchedDefault,
		},
		{
			name:      "empty classification",
			cls:       model.IndustryClassification{},
			wantID:    "general_enterprise",
			wantLevel: MatchedDefault,
		},
	}

	cache, _ := newTestCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cache.Resolve(context.Background(), tt.cls)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, res.Template.ID)
			assert.Equal(t, tt.wantLevel, res.MatchedOn)
		})
	}
}

func TestCacheResolveNoDefault(t *testing.T) {
	t.Parallel()

	cache := NewCache(StaticSource{tpl("insurance_pc", "insurance", "")}, "")
	_, err := cache.Resolve(context.Background(), model.IndustryClassification{PrimaryIndustry: "mining"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestCacheLazyLoadOnce(t *testing.T) {
	t.Parallel()

	cache, src := newTestCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "insurance_pc")
	require.NoError(t, err)
	_, err = cache.Get(ctx, "manufacturing")
	require.NoError(t, err)
	_, err = cache.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCacheGetNotFound(t *testing.T) {
	t.Parallel()

	cache, src := newTestCache()
	_, err := cache.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	// Unknown ids do not trigger extra loads.
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCacheInvalidate(t *testing.T) {
	t.Parallel()

	cache, src := newTestCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "insurance_pc")
	require.NoError(t, err)

	cache.Invalidate("insurance_pc")
	got, err := cache.Get(ctx, "insurance_pc")
	require.NoError(t, err)
	assert.Equal(t, "insurance_pc", got.ID)
	assert.Equal(t, int32(2), src.calls.Load())

	cache.Invalidate("")
	_, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCacheResolveAfterInvalidate(t *testing.T) {
	t.Parallel()

	cache, src := newTestCache()
	ctx := context.Background()
	cls := model.IndustryClassification{PrimaryIndustry: "insurance", SubIndustry: "property_casualty"}

	res, err := cache.Resolve(ctx, cls)
	require.NoError(t, err)
	assert.Equal(t, "insurance_pc", res.Template.ID)
	assert.Equal(t, MatchedSubIndustry, res.MatchedOn)

	cache.Invalidate("insurance_pc")
	res, err = cache.Resolve(ctx, cls)
	require.NoError(t, err)
	assert.Equal(t, "insurance_pc", res.Template.ID)
	assert.Equal(t, MatchedSubIndustry, res.MatchedOn)
	assert.Equal(t, int32(2), src.calls.Load())

	cache.Invalidate("manufacturing")
	list, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCacheReloadKeepsOldOnError(t *testing.T) {
	t.Parallel()

	cache, src := newTestCache()
	ctx := context.Background()
	require.NoError(t, cache.Reload(ctx))

	src.err = eris.New("disk gone")
	require.Error(t, cache.Reload(ctx))

	got, err := cache.Get(ctx, "manufacturing")
	require.NoError(t, err)
	assert.Equal(t, "manufacturing", got.ID)
}

func TestCacheList(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache()
	list, err := cache.List(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, tp := range list {
		ids[i] = tp.ID
	}
	assert.Equal(t, []string{"general_enterprise", "insurance_general", "insurance_pc", "manufacturing"}, ids)
}

func TestDirSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(insuranceYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"id":"general_enterprise","version":"1"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	list, err := DirSource{Dir: dir}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "insurance_pc", list[0].ID)
	assert.Equal(t, "general_enterprise", list[1].ID)
}

func TestDirSourceDuplicateID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(insuranceYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(insuranceYAML), 0o644))

	_, err := DirSource{Dir: dir}.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestDirSourceMissingDir(t *testing.T) {
	t.Parallel()

	_, err := DirSource{Dir: filepath.Join(t.TempDir(), "nope")}.Load(context.Background())
	assert.Error(t, err)
}

func TestCacheForSnapshot(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache()
	ctx := context.Background()

	res, err := cache.ForSnapshot(ctx, &model.Snapshot{
		TemplateID:     "manufacturing",
		Classification: model.IndustryClassification{PrimaryIndustry: "insurance"},
	})
	require.NoError(t, err)
	assert.Equal(t, "manufacturing", res.Template.ID)
	assert.Equal(t, MatchedExplicit, res.MatchedOn)

	res, err = cache.ForSnapshot(ctx, &model.Snapshot{
		Classification: model.IndustryClassification{PrimaryIndustry: "insurance"},
	})
	require.NoError(t, err)
	assert.Equal(t, "insurance_general", res.Template.ID)

	_, err = cache.ForSnapshot(ctx, &model.Snapshot{TemplateID: "missing"})
	assert.True(t, eris.Is(err, ErrNotFound))

	_, err = cache.ForSnapshot(ctx, nil)
	assert.Error(t, err)
}
