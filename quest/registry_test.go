package quest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeQuestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRegistryLoad_WalksTree(t *testing.T) {
	root := t.TempDir()
	writeQuestFile(t, root, "a.yaml", "id: quest_a\nobjectives: [{id: o}]")
	writeQuestFile(t, filepath.Join(root, "arcs", "mining"), "b.yml", "id: quest_b\nobjectives: [{id: o}]")
	writeQuestFile(t, root, "notes.txt", "not a quest")

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Load(root))
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("quest_a")
	assert.True(t, ok)
	_, ok = r.Get("quest_b")
	assert.True(t, ok)
}

func TestRegistryLoad_SkipsBadFiles(t *testing.T) {
	root := t.TempDir()
	writeQuestFile(t, root, "good.yaml", "id: good\nobjectives: [{id: o}]")
	writeQuestFile(t, root, "bad.yaml", "id: bad") // no objectives
	writeQuestFile(t, root, "junk.yaml", "{{{{")

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Load(root))
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("good")
	assert.True(t, ok)
}

func TestRegistryLoad_DuplicateLastWins(t *testing.T) {
	root := t.TempDir()
	writeQuestFile(t, root, "a.yaml", "id: dup\ntitle: first\nobjectives: [{id: o}]")
	writeQuestFile(t, root, "b.yaml", "id: dup\ntitle: second\nobjectives: [{id: o}]")

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Load(root))
	assert.Equal(t, 1, r.Len())
	def, ok := r.Get("dup")
	require.True(t, ok)
	// WalkDir visits lexically, so b.yaml is parsed last.
	assert.Equal(t, "second", def.Title)
}

func TestRegistryLoad_ReplacesIndex(t *testing.T) {
	root := t.TempDir()
	writeQuestFile(t, root, "a.yaml", "id: old\nobjectives: [{id: o}]")

	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Load(root))
	_, ok := r.Get("old")
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(root, "a.yaml")))
	writeQuestFile(t, root, "b.yaml", "id: new\nobjectives: [{id: o}]")
	require.NoError(t, r.Load(root))

	_, ok = r.Get("old")
	assert.False(t, ok, "reload drops definitions no longer on disk")
	_, ok = r.Get("new")
	assert.True(t, ok)
}

func TestRegistryLoad_MissingRoot(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	assert.Error(t, r.Load(filepath.Join(t.TempDir(), "nope")))
}

func TestRegistry_ByTypeSorted(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Put(&QuestDefinition{ID: "zeta", Type: "side", UI: UIDef{SortOrder: 1}})
	r.Put(&QuestDefinition{ID: "alpha", Type: "side", UI: UIDef{SortOrder: 1}})
	r.Put(&QuestDefinition{ID: "beta", Type: "side", UI: UIDef{SortOrder: 0}})
	r.Put(&QuestDefinition{ID: "other", Type: "main"})

	got := r.ByType("side")
	require.Len(t, got, 3)
	assert.Equal(t, "beta", got[0].ID)
	assert.Equal(t, "alpha", got[1].ID)
	assert.Equal(t, "zeta", got[2].ID)

	assert.Len(t, r.All(), 4)
	assert.Empty(t, r.ByType("none"))
}
