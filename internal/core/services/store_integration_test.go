package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notecompacter/compacter/internal/adapters/repository"
	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports/mocks"
	"github.com/notecompacter/compacter/internal/core/services"
	"github.com/notecompacter/compacter/pkg/vault"
)

func TestProjectStore_OnDisk(t *testing.T) {
	root := t.TempDir()
	v := vault.NewAt(filepath.Join(root, "store"))
	require.NoError(t, v.Initialize())

	store := services.NewProjectStore(
		repository.NewFileRepository(v),
		repository.LocalFiles{},
		services.WithStorage(v),
	)
	ctx := context.Background()

	created, err := store.CreateProject(ctx, "  Field notes ")
	require.NoError(t, err)
	id := created.ID

	inbox := filepath.Join(root, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0755))
	var paths []string
	for _, name := range []string{"one.txt", "two.txt"} {
		p := filepath.Join(inbox, name)
		require.NoError(t, os.WriteFile(p, []byte("body of "+name), 0644))
		paths = append(paths, p)
	}

	ingested, err := store.IngestFiles(ctx, id, &mocks.MockFileSelector{Selection: domain.Selection{Paths: paths}})
	require.NoError(t, err)
	assert.Equal(t, 2, ingested.Copied)

	entries, err := os.ReadDir(v.ComponentsPath(id))
	require.NoError(t, err)
	var content, sidecars int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), domain.MetaExt):
			sidecars++
		case strings.HasSuffix(e.Name(), domain.ComponentExt):
			content++
		}
	}
	assert.Equal(t, 2, content)
	assert.Equal(t, 2, sidecars)

	doc, err := store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Field notes", doc.Name)
	assert.Equal(t, 2, strings.Count(doc.Text, "=== COMPONENT START ==="))

	// Orphan content without a sidecar still lists and rebuilds.
	require.NoError(t, os.WriteFile(v.ComponentPath(id, "0_orphan.txt"), []byte("orphan"), 0644))
	items, err := store.ListComponents(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 3)
	last := items[len(items)-1]
	assert.Equal(t, "0_orphan.txt", last.InternalName)
	assert.Equal(t, domain.UnknownOriginal, last.OriginalName)
	assert.False(t, last.HasTimestamp())

	first, err := store.RebuildMaster(ctx, id)
	require.NoError(t, err)
	rebuiltOnce, err := os.ReadFile(v.MasterPath(id))
	require.NoError(t, err)
	second, err := store.RebuildMaster(ctx, id)
	require.NoError(t, err)
	rebuiltTwice, err := os.ReadFile(v.MasterPath(id))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, rebuiltOnce, rebuiltTwice)
	assert.True(t, strings.HasPrefix(string(rebuiltOnce), "=== COMPONENT START ===\nOriginal: (unknown)\n"))

	out := filepath.Join(root, "export.txt")
	exported, err := store.ExportMaster(ctx, id, &mocks.MockSaveTarget{Destination: domain.SaveDestination{Path: out}})
	require.NoError(t, err)
	assert.True(t, exported.Saved)
	exportedText, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, rebuiltTwice, exportedText)

	info := store.StorageInfo(ctx)
	assert.True(t, info.OK)
	assert.Equal(t, v.RootPath, info.Info.Root)
	assert.NotEmpty(t, info.Marker)

	require.NoError(t, store.DeleteProject(ctx, id))
	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	_, err = store.ReadComponent(ctx, id, items[0].InternalName)
	assert.Error(t, err)
}

func newDiskStore(t *testing.T, opts ...services.Option) (*services.ProjectStore, *vault.Vault, string) {
	t.Helper()
	root := t.TempDir()
	v := vault.NewAt(filepath.Join(root, "store"))
	require.NoError(t, v.Initialize())
	store := services.NewProjectStore(repository.NewFileRepository(v), repository.LocalFiles{}, opts...)
	return store, v, root
}

func TestIngestThenRebuild_SameClockTick(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _, root := newDiskStore(t, services.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	created, err := store.CreateProject(ctx, "batch")
	require.NoError(t, err)
	id := created.ID

	var paths []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		p := filepath.Join(root, name+".txt")
		require.NoError(t, os.WriteFile(p, []byte("body "+name), 0644))
		paths = append(paths, p)
	}

	_, err = store.IngestFiles(ctx, id, &mocks.MockFileSelector{Selection: domain.Selection{Paths: paths}})
	require.NoError(t, err)
	ingested, err := store.ReadMaster(ctx, id)
	require.NoError(t, err)

	items, err := store.ListComponents(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i-1].AddedAt, items[i].AddedAt, "timestamps must be strictly increasing")
	}
	assert.Equal(t, "2024-03-01T12:00:00.000Z", items[4].AddedAt)
	assert.Equal(t, "2024-03-01T12:00:00.004Z", items[0].AddedAt)

	// A later batch on the same tick still sorts after the first one.
	extra := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(extra, []byte("body f"), 0644))
	_, err = store.IngestFiles(ctx, id, &mocks.MockFileSelector{Selection: domain.Selection{Paths: []string{extra}}})
	require.NoError(t, err)
	items, err = store.ListComponents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "f.txt", items[0].OriginalName)
	assert.Equal(t, "2024-03-01T12:00:00.005Z", items[0].AddedAt)

	withExtra, err := store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(withExtra.Text, ingested.Text))

	_, err = store.RebuildMaster(ctx, id)
	require.NoError(t, err)
	rebuilt, err := store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, withExtra.Text, rebuilt.Text, "rebuild restores the ingestion order")
}

func TestSaveMaster_MultiMegabyteOnDisk(t *testing.T) {
	store, v, _ := newDiskStore(t)
	ctx := context.Background()

	created, err := store.CreateProject(ctx, "large")
	require.NoError(t, err)

	line := "ascii line, then ünïcödé ✓ 日本語 and 🙂\r\n"
	text := strings.Repeat(line, (5<<20)/len(line)+1)
	require.Greater(t, len(text), 5<<20)

	require.NoError(t, store.SaveMaster(ctx, created.ID, text))
	doc, err := store.ReadMaster(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, doc.Text == text, "round trip changed a %d byte master", len(text))

	raw, err := os.ReadFile(v.MasterPath(created.ID))
	require.NoError(t, err)
	assert.Equal(t, len(text), len(raw))
}
