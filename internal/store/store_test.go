package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teklab/tekladoc/internal/model"
)

func sampleRecords() []model.ApiRecord {
	return []model.ApiRecord{
		{Title: "Beam Class", Kind: model.KindClass, Namespace: "Tekla.Structures.Model", Summary: "Represents a beam.", SourcePage: "html/T_Beam.htm"},
		{Title: "Beam.Insert Method", Kind: model.KindMethod, Namespace: "Tekla.Structures.Model", SourcePage: "html/M_Beam_Insert.htm"},
		{Title: "Tekla.Structures.Model Namespace", Kind: model.KindNamespace, Namespace: "Tekla.Structures.Model", SourcePage: "html/N_Model.htm"},
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, sampleRecords(), []model.TocEntry{{DisplayName: "Beam Class"}}))
	require.NoError(t, SaveExamples(dir, []model.CodeExample{
		{Name: "CreateBeam", Category: "Model/Applications", CodeSnippets: []model.CodeSnippet{{Title: "Main.cs", Code: "x"}}},
	}))

	s := Load(dir)
	assert.Len(t, s.All(), 3)
	assert.Len(t, s.ByKind(model.KindClass), 1)
	assert.Len(t, s.ByKind(model.KindMethod), 1)
	assert.Empty(t, s.ByKind(model.KindEvent))
	assert.Len(t, s.Projection(), 3)
	assert.Len(t, s.Examples(), 1)
	assert.False(t, s.Empty())

	st := s.Stats()
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.ByKind[model.KindClass])
	assert.Equal(t, 1, st.Examples)
	assert.Equal(t, 1, st.CodeSnippets)
}

func TestLoad_MissingDirIsEmptyNotFatal(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.True(t, s.Empty())
	assert.Empty(t, s.All())
	assert.Empty(t, s.Examples())
}

func TestLoad_CorruptPartitionDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, sampleRecords(), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PartitionFile(model.KindClass)), []byte("{not json"), 0o644))

	s := Load(dir)
	// Combined collection is the ground truth and stays intact.
	assert.Len(t, s.All(), 3)
	assert.Empty(t, s.ByKind(model.KindClass))
}

func TestLoad_ProjectionDerivedWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, sampleRecords(), nil))
	require.NoError(t, os.Remove(filepath.Join(dir, ProjectionFile)))

	s := Load(dir)
	require.Len(t, s.Projection(), 3)
	assert.Equal(t, "Beam Class", s.Projection()[0].Title)
}

func TestAttachDetails_IdempotentOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, sampleRecords(), nil))
	s := Load(dir)

	info := model.DetailedInfo{
		Properties: []model.MemberInfo{{Name: "Profile"}},
		Methods:    []model.MemberInfo{{Name: "Insert"}},
	}
	require.NoError(t, s.AttachDetails("html/T_Beam.htm", info))
	require.NoError(t, s.AttachDetails("html/T_Beam.htm", info))

	rec := s.BySource("html/T_Beam.htm")
	require.NotNil(t, rec)
	require.NotNil(t, rec.DetailedInfo)
	assert.Len(t, rec.DetailedInfo.Properties, 1)
	assert.Len(t, rec.DetailedInfo.Methods, 1)

	// The partition view shares record identity with the combined view.
	classes := s.ByKind(model.KindClass)
	require.Len(t, classes, 1)
	assert.Same(t, rec, classes[0])

	assert.Error(t, s.AttachDetails("html/absent.htm", info))
}
