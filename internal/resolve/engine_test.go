package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teklab/tekladoc/internal/index"
	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/store"
)

// fakeRemote is a canned fallback client.
type fakeRemote struct {
	searchResults []model.RemoteRecord
	classResult   *model.RemoteRecord
	methodResult  *model.RemoteRecord
	searchCalls   int
	classCalls    int
}

func (f *fakeRemote) SearchOnline(_ context.Context, query, kindFilter string, limit int) ([]model.RemoteRecord, error) {
	f.searchCalls++
	return f.searchResults, nil
}

func (f *fakeRemote) GetClassDetailsOnline(_ context.Context, name string) (*model.RemoteRecord, error) {
	f.classCalls++
	return f.classResult, nil
}

func (f *fakeRemote) GetMethodDetailsOnline(_ context.Context, name, className string) (*model.RemoteRecord, error) {
	return f.methodResult, nil
}

// fakePages serves page bytes from a map.
type fakePages struct {
	pages map[string][]byte
}

func (f fakePages) ReadPage(path string) ([]byte, error) {
	if data, ok := f.pages[path]; ok {
		return data, nil
	}
	return nil, assert.AnError
}

func fixtureRecords() []model.ApiRecord {
	return []model.ApiRecord{
		{Title: "Beam Class", Kind: model.KindClass, Namespace: ModelingNamespace, Summary: "Represents a beam.", SourcePage: "html/T_Beam.htm"},
		{Title: "AnalysisCompositeBeam Class", Kind: model.KindClass, Namespace: ModelingNamespace, Summary: "Analysis composite beam.", SourcePage: "html/T_AnalysisCompositeBeam.htm"},
		{Title: "Column Class", Kind: model.KindClass, Namespace: ModelingNamespace, Summary: "A modeling column.", SourcePage: "html/T_Column_Model.htm"},
		{Title: "Column Class", Kind: model.KindClass, Namespace: DrawingNamespace, Summary: "A drawing column.", SourcePage: "html/T_Column_Drawing.htm"},
		{Title: "Beam.Insert Method", Kind: model.KindMethod, Namespace: ModelingNamespace, SourcePage: "html/M_Beam_Insert.htm"},
		{Title: "Tekla.Structures.Model Namespace", Kind: model.KindNamespace, Namespace: ModelingNamespace, SourcePage: "html/N_Model.htm"},
		{Title: "IEnumerable Interface", Kind: model.KindInterface, Namespace: ModelingNamespace, SourcePage: "html/T_IEnumerable.htm"},
	}
}

func fixtureExamples() []model.CodeExample {
	return []model.CodeExample{
		{
			Name:        "CreateBeam",
			Category:    "Model/Applications",
			Description: "Creates a beam in the model.",
			ApiElements: []string{"Tekla.Structures.Model.Beam"},
			CodeSnippets: []model.CodeSnippet{
				{Title: "Main.cs", Code: "new Beam()", Language: "csharp"},
				{Title: "Helpers.cs", Code: "// helpers", Language: "csharp"},
			},
		},
		{Name: "DrawingPlugin", Category: "Model/Plugins", ApiElements: []string{"Tekla.Structures.Model.Column"}},
		{Name: "AnotherPlugin", Category: "Model/Plugins", ApiElements: []string{"Tekla.Structures.Model.Beam"}},
	}
}

func newTestEngine(t *testing.T, remote *fakeRemote, pages PageReader) *Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, store.Save(dir, fixtureRecords(), nil))
	require.NoError(t, store.SaveExamples(dir, fixtureExamples()))
	st := store.Load(dir)

	idx, err := index.Build(st.Projection())
	require.NoError(t, err)

	var client *fakeRemote
	if remote != nil {
		client = remote
	}
	if client == nil {
		return New(st, idx, nil, pages)
	}
	return New(st, idx, client, pages)
}

func TestGetClassDetails_WordBoundaryMatch(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	rec := e.GetClassDetails(context.Background(), "Beam", false)
	require.NotNil(t, rec)
	assert.Equal(t, "Beam Class", rec.Title)

	// The composite beam is reachable only by its own name.
	rec = e.GetClassDetails(context.Background(), "AnalysisCompositeBeam", false)
	require.NotNil(t, rec)
	assert.Equal(t, "AnalysisCompositeBeam Class", rec.Title)
}

func TestGetClassDetails_ModelingNamespaceWinsAmbiguity(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	rec := e.GetClassDetails(context.Background(), "Column", false)
	require.NotNil(t, rec)
	assert.Equal(t, ModelingNamespace, rec.Namespace)
	assert.Equal(t, "A modeling column.", rec.Summary)
}

func TestGetClassDetails_SubstringLastResort(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	rec := e.GetClassDetails(context.Background(), "CompositeBeam", false)
	require.NotNil(t, rec)
	assert.Equal(t, "AnalysisCompositeBeam Class", rec.Title)
}

func TestGetClassDetails_NoMatchNoRemote(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	assert.Nil(t, e.GetClassDetails(context.Background(), "DoesNotExist", false))
}

const beamDetailPage = `<html><body>
<div id="propertyTableSection"><table>
  <tr><td></td><td><a>Profile</a></td><td>The profile.</td></tr>
</table></div>
<div id="methodTableSection"><table>
  <tr><td></td><td><a>Insert</a></td><td>Inserts the beam.</td></tr>
</table></div>
</body></html>`

func TestGetClassDetails_IdempotentDetailAttach(t *testing.T) {
	pages := fakePages{pages: map[string][]byte{"html/T_Beam.htm": []byte(beamDetailPage)}}
	e := newTestEngine(t, nil, pages)

	first := e.GetClassDetails(context.Background(), "Beam", true)
	require.NotNil(t, first)
	require.NotNil(t, first.DetailedInfo)
	require.Len(t, first.DetailedInfo.Properties, 1)
	require.Len(t, first.DetailedInfo.Methods, 1)

	second := e.GetClassDetails(context.Background(), "Beam", true)
	require.NotNil(t, second)
	require.NotNil(t, second.DetailedInfo)
	assert.Equal(t, first.DetailedInfo, second.DetailedInfo)
	assert.Len(t, second.DetailedInfo.Properties, 1)
	assert.Len(t, second.DetailedInfo.Methods, 1)
}

func TestGetClassDetails_DetailParseFailureStillReturnsRecord(t *testing.T) {
	e := newTestEngine(t, nil, fakePages{pages: map[string][]byte{}})

	rec := e.GetClassDetails(context.Background(), "Beam", true)
	require.NotNil(t, rec)
	assert.Nil(t, rec.DetailedInfo)
}

func TestGetClassDetails_LowQualityTriggersRemoteReplacement(t *testing.T) {
	remote := &fakeRemote{classResult: &model.RemoteRecord{
		Title:       "PolyBeam Class",
		Description: "Represents a polybeam.",
		Namespace:   ModelingNamespace,
		Kind:        model.KindClass,
	}}

	dir := t.TempDir()
	records := []model.ApiRecord{
		{Title: "PolyBeam Class", Kind: model.KindClass, Namespace: "N/A", Summary: "", SourcePage: "html/T_PolyBeam.htm"},
	}
	require.NoError(t, store.Save(dir, records, nil))
	st := store.Load(dir)
	idx, err := index.Build(st.Projection())
	require.NoError(t, err)
	e := New(st, idx, remote, nil)

	rec := e.GetClassDetails(context.Background(), "PolyBeam", false)
	require.NotNil(t, rec)
	assert.Equal(t, 1, remote.classCalls)
	assert.Equal(t, ModelingNamespace, rec.Namespace)
	assert.Equal(t, "Represents a polybeam.", rec.Summary)
	// The source reference is kept; the fallback only fills the
	// descriptive fields.
	assert.Equal(t, "html/T_PolyBeam.htm", rec.SourcePage)
}

func TestGetClassDetails_RemoteReplacementLeavesStoreUntouched(t *testing.T) {
	remote := &fakeRemote{classResult: &model.RemoteRecord{
		Title:       "PolyBeam Class",
		Description: "Represents a polybeam.",
		Namespace:   ModelingNamespace,
		Kind:        model.KindClass,
	}}

	dir := t.TempDir()
	records := []model.ApiRecord{
		{Title: "PolyBeam Class", Kind: model.KindClass, Namespace: "N/A", Summary: "", SourcePage: "html/T_PolyBeam.htm"},
	}
	require.NoError(t, store.Save(dir, records, nil))
	st := store.Load(dir)
	idx, err := index.Build(st.Projection())
	require.NoError(t, err)
	e := New(st, idx, remote, nil)

	rec := e.GetClassDetails(context.Background(), "PolyBeam", false)
	require.NotNil(t, rec)
	assert.Equal(t, ModelingNamespace, rec.Namespace)

	// The stored record keeps its persisted fields; only the returned copy
	// carries the remote replacement.
	stored := st.BySource("html/T_PolyBeam.htm")
	require.NotNil(t, stored)
	assert.Equal(t, "N/A", stored.Namespace)
	assert.Empty(t, stored.Summary)

	// The replacement must not leak into unrelated operations.
	assert.Empty(t, e.BrowseNamespace(ModelingNamespace, false))
}

func TestGetMethodDetails(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	rec := e.GetMethodDetails(context.Background(), "Insert", "Beam")
	require.NotNil(t, rec)
	assert.Equal(t, "Beam.Insert Method", rec.Title)

	assert.Nil(t, e.GetMethodDetails(context.Background(), "Insert", "Column"))
	assert.Nil(t, e.GetMethodDetails(context.Background(), "Explode", ""))
}

func TestSearch_EndToEnd(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	results := e.Search(context.Background(), "Beam", model.KindAll, 10)
	require.NotEmpty(t, results)

	var titles []string
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Beam Class")
	assert.Contains(t, titles, "Beam.Insert Method")
	// Title weighting puts the class ahead of the method.
	assert.Equal(t, "Beam Class", results[0].Title)
	assert.Equal(t, model.SourceLocal, results[0].Source)

	classOnly := e.Search(context.Background(), "Beam", string(model.KindClass), 10)
	require.NotEmpty(t, classOnly)
	for _, r := range classOnly {
		assert.Equal(t, model.KindClass, r.Kind)
	}
}

func TestSearch_ConfiguredDefaultLimit(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	e.SetDefaultLimit(1)

	results := e.Search(context.Background(), "Beam", model.KindAll, 0)
	assert.Len(t, results, 1)

	// An explicit limit still wins.
	results = e.Search(context.Background(), "Beam", model.KindAll, 10)
	assert.Greater(t, len(results), 1)
}

func TestSearch_EmptyIndexDelegatesToRemote(t *testing.T) {
	remote := &fakeRemote{searchResults: []model.RemoteRecord{
		{Title: "Beam Class", Description: "Remote beam.", Namespace: ModelingNamespace, Kind: model.KindClass},
	}}

	st := store.Load(t.TempDir())
	idx, err := index.Build(st.Projection())
	require.NoError(t, err)
	e := New(st, idx, remote, nil)

	results := e.Search(context.Background(), "Beam", model.KindAll, 10)
	require.Len(t, results, 1)
	assert.Equal(t, 1, remote.searchCalls)
	assert.Equal(t, "Beam Class", results[0].Title)
	assert.Equal(t, "Remote beam.", results[0].Summary)
	assert.Equal(t, model.SourceRemote, results[0].Source)
}

func TestSearch_RemoteMergeDedupsByTitle(t *testing.T) {
	remote := &fakeRemote{searchResults: []model.RemoteRecord{
		{Title: "GHOST CLASS", Description: "dup check", Kind: model.KindClass, Namespace: "N/A"},
		{Title: "Extra Class", Description: "new", Kind: model.KindClass, Namespace: ModelingNamespace},
	}}

	dir := t.TempDir()
	records := []model.ApiRecord{
		// Low quality so the fallback batch is requested.
		{Title: "Ghost Class", Kind: model.KindClass, Namespace: "N/A", SourcePage: "html/T_Ghost.htm"},
	}
	require.NoError(t, store.Save(dir, records, nil))
	st := store.Load(dir)
	idx, err := index.Build(st.Projection())
	require.NoError(t, err)
	e := New(st, idx, remote, nil)

	results := e.Search(context.Background(), "Ghost", model.KindAll, 10)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, remote.searchCalls)

	count := 0
	for _, r := range results {
		if containsFold(r.Title, "ghost") {
			count++
		}
	}
	assert.Equal(t, 1, count, "case-insensitive title dedup failed: %+v", results)
}

func TestBrowseNamespace(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	contents := e.BrowseNamespace(ModelingNamespace, false)
	for _, rec := range contents {
		assert.Contains(t, []model.Kind{model.KindClass, model.KindInterface, model.KindEnum, model.KindDelegate}, rec.Kind)
	}
	var titles []string
	for _, rec := range contents {
		titles = append(titles, rec.Title)
	}
	assert.Contains(t, titles, "Beam Class")
	assert.Contains(t, titles, "IEnumerable Interface")
	assert.NotContains(t, titles, "Beam.Insert Method")

	all := e.BrowseNamespace(ModelingNamespace, true)
	titles = titles[:0]
	for _, rec := range all {
		titles = append(titles, rec.Title)
	}
	assert.Contains(t, titles, "Beam.Insert Method")
	assert.Greater(t, len(all), len(contents))

	// Prefix is case-insensitive; drawing namespace excluded.
	for _, rec := range e.BrowseNamespace("tekla.structures.model", false) {
		assert.NotEqual(t, DrawingNamespace, rec.Namespace)
	}
}

func TestGetCodeExamples(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	views := e.GetCodeExamples("Beam", model.KindAll)
	require.Len(t, views, 2)
	assert.Equal(t, "CreateBeam", views[0].Name)
	assert.LessOrEqual(t, len(views[0].Snippets), maxSnippetsPerExample)

	none := e.GetCodeExamples("Beam", "vb")
	require.NotEmpty(t, none)
	assert.Empty(t, none[0].Snippets)

	assert.Empty(t, e.GetCodeExamples("Rebar", model.KindAll))
}

func TestGetExampleCategories(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	categories := e.GetExampleCategories()
	assert.Equal(t, []string{"Model/Applications", "Model/Plugins"}, categories)
}

func TestGetStatistics(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	st := e.GetStatistics()
	assert.Equal(t, len(fixtureRecords()), st.Total)
	assert.Equal(t, 4, st.ByKind[model.KindClass])
	assert.Equal(t, 3, st.Examples)
	assert.Equal(t, 2, st.CodeSnippets)
}
