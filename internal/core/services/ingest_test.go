package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports/mocks"
)

func newProject(t *testing.T, f *storeFixture) string {
	t.Helper()
	res, err := f.store.CreateProject(context.Background(), "test")
	require.NoError(t, err)
	return res.ID
}

func selecting(paths ...string) *mocks.MockFileSelector {
	return &mocks.MockFileSelector{Selection: domain.Selection{Paths: paths}}
}

func TestIngestFiles_BannerExactness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)
	f.files.Put("/inbox/notes.txt", "hello")

	res, err := f.store.IngestFiles(ctx, id, selecting("/inbox/notes.txt"))
	require.NoError(t, err)

	want := "=== COMPONENT START ===\n" +
		"Original: notes.txt\n" +
		"Internal: 1709294401000_0001020304050607.txt | Added: 2024-03-01T12:00:01.000Z\n" +
		"hello\n" +
		"=== COMPONENT END (1709294401000_0001020304050607.txt) ===\n"

	doc, err := f.store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, doc.Text)
	assert.Equal(t, 1, res.Copied)
	assert.Equal(t, len(want), res.AppendedBytes)

	c, err := f.store.ReadComponent(ctx, id, "1709294401000_0001020304050607.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Text)
	assert.Equal(t, "notes.txt", c.OriginalName)
	assert.Equal(t, "2024-03-01T12:00:01.000Z", c.AddedAt)
}

func TestIngestFiles_SelectorRequest(t *testing.T) {
	f := newFixture(t, WithExtensions([]string{".txt", ".md"}))
	id := newProject(t, f)
	selector := selecting()

	_, err := f.store.IngestFiles(context.Background(), id, selector)
	require.NoError(t, err)

	require.Len(t, selector.Requests, 1)
	assert.True(t, selector.Requests[0].Multiple)
	assert.Equal(t, []string{".txt", ".md"}, selector.Requests[0].Extensions)
	assert.NotEmpty(t, selector.Requests[0].Title)
}

func TestIngestFiles_CancelIsNoop(t *testing.T) {
	tests := []struct {
		name      string
		selection domain.Selection
	}{
		{"canceled", domain.Selection{Canceled: true, Paths: []string{"/inbox/a.txt"}}},
		{"empty", domain.Selection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := newProject(t, f)
			require.NoError(t, f.store.SaveMaster(ctx, id, "untouched"))
			f.files.Put("/inbox/a.txt", "a")

			res, err := f.store.IngestFiles(ctx, id, &mocks.MockFileSelector{Selection: tt.selection})
			require.NoError(t, err)
			assert.Equal(t, domain.IngestResult{}, *res)
			assert.Zero(t, f.repo.ComponentCount(id))

			doc, err := f.store.ReadMaster(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "untouched", doc.Text)
		})
	}
}

func TestIngestFiles_SelectorError(t *testing.T) {
	f := newFixture(t)
	id := newProject(t, f)

	_, err := f.store.IngestFiles(context.Background(), id, &mocks.MockFileSelector{Err: errors.New("no tty")})
	assert.ErrorContains(t, err, "no tty")
}

func TestIngestFiles_AppendsToExistingMaster(t *testing.T) {
	tests := []struct {
		name   string
		master string
		prefix string
	}{
		{"no trailing newline", "intro", "intro\n"},
		{"trailing newline", "intro\n", "intro\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := newProject(t, f)
			require.NoError(t, f.store.SaveMaster(ctx, id, tt.master))
			f.files.Put("/inbox/a.txt", "a")

			res, err := f.store.IngestFiles(ctx, id, selecting("/inbox/a.txt"))
			require.NoError(t, err)

			doc, err := f.store.ReadMaster(ctx, id)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(doc.Text, tt.prefix+"=== COMPONENT START ===\n"), doc.Text)
			assert.Equal(t, len(doc.Text)-len(tt.prefix), res.AppendedBytes)
		})
	}
}

func TestIngestFiles_OrderingAndRebuild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)
	f.files.Put("/inbox/A.txt", "alpha")
	f.files.Put("/inbox/B.txt", "bravo")
	f.files.Put("/inbox/C.txt", "charlie")

	res, err := f.store.IngestFiles(ctx, id, selecting("/inbox/A.txt", "/inbox/B.txt", "/inbox/C.txt"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Copied)

	items, err := f.store.ListComponents(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "C.txt", items[0].OriginalName)
	assert.Equal(t, "B.txt", items[1].OriginalName)
	assert.Equal(t, "A.txt", items[2].OriginalName)

	ingested, err := f.store.ReadMaster(ctx, id)
	require.NoError(t, err)

	rebuilt, err := f.store.RebuildMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilt.Built)

	doc, err := f.store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, len(doc.Text), rebuilt.Bytes)
	assert.Equal(t, ingested.Text, doc.Text, "rebuild of an ingest-only master is identical")

	a := strings.Index(doc.Text, "alpha")
	b := strings.Index(doc.Text, "bravo")
	c := strings.Index(doc.Text, "charlie")
	assert.True(t, a < b && b < c, "sections must be oldest first")
}

func TestIngestFiles_FailureAbortsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)
	require.NoError(t, f.store.SaveMaster(ctx, id, "before"))
	f.files.Put("/inbox/a.txt", "a")
	f.files.Put("/inbox/c.txt", "c")

	res, err := f.store.IngestFiles(ctx, id, selecting("/inbox/a.txt", "/inbox/missing.txt", "/inbox/c.txt"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing.txt")
	assert.Equal(t, 1, res.Copied)

	assert.Equal(t, 1, f.repo.ComponentCount(id), "components written before the failure persist")

	doc, err := f.store.ReadMaster(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "before", doc.Text, "master is not written when the batch fails")
	assert.NotZero(t, f.logs.FilterMessage("ingest aborted").Len())
}

func TestIngestFiles_StoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)
	f.files.Put("/inbox/a.txt", "a")
	f.repo.FailWrites["a.txt"] = errors.New("disk full")

	res, err := f.store.IngestFiles(ctx, id, selecting("/inbox/a.txt"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, res.Copied)
}

func TestListComponents_NewestFirstWithMissingTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)

	add := func(name, addedAt string) {
		f.repo.AddRawComponent(id, domain.Component{ComponentSummary: domain.ComponentSummary{
			InternalName: name, OriginalName: name, AddedAt: addedAt,
		}})
	}
	add("1.txt", "2024-01-01T00:00:00.000Z")
	add("2.txt", "")
	add("3.txt", "2024-06-01T00:00:00.000Z")

	items, err := f.store.ListComponents(ctx, id)
	require.NoError(t, err)

	var order []string
	for _, it := range items {
		order = append(order, it.InternalName)
	}
	assert.Equal(t, []string{"3.txt", "1.txt", "2.txt"}, order)
}

func TestReadComponent_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)

	_, err := f.store.ReadComponent(ctx, id, "nope.txt")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)

	_, err = f.store.ReadComponent(ctx, id, "../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrComponentNotFound)
}

func TestDeletionFinality(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := newProject(t, f)
	f.files.Put("/inbox/a.txt", "a")
	_, err := f.store.IngestFiles(ctx, id, selecting("/inbox/a.txt"))
	require.NoError(t, err)

	items, err := f.store.ListComponents(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, f.store.DeleteProject(ctx, id))

	projects, err := f.store.ListProjects(ctx)
	require.NoError(t, err)
	for _, p := range projects {
		assert.NotEqual(t, id, p.ID)
	}
	_, err = f.store.ReadComponent(ctx, id, items[0].InternalName)
	assert.Error(t, err)
}
