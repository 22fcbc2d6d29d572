package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/vecdoc/internal/importer"
	"github.com/nickcecere/vecdoc/internal/store"
)

func setupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), 4)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestNewRejectsMissingDir(t *testing.T) {
	st := setupTestStore(t)

	_, err := New(filepath.Join(t.TempDir(), "missing"), importer.New(st))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.jsonl")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, importer.New(st))
	assert.Error(t, err)
}

func TestIsImportFile(t *testing.T) {
	assert.True(t, isImportFile("/drop/docs.jsonl"))
	assert.True(t, isImportFile("DOCS.JSONL"))
	assert.False(t, isImportFile("/drop/.docs.jsonl"))
	assert.False(t, isImportFile("/drop/docs.json"))
	assert.False(t, isImportFile("/drop/docs.jsonl.tmp"))
}

func TestImportFileSkipsUnchanged(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	var events []string
	w, err := New(dir, importer.New(st), WithEventCallback(func(event, path string) {
		events = append(events, event+":"+path)
	}))
	require.NoError(t, err)

	path := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"content":"a","embedding":[1,0,0,0]}`+"\n"), 0644))

	ctx := context.Background()
	w.importFile(ctx, path)
	w.importFile(ctx, path)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"import:docs.jsonl"}, events)

	// Changed content is imported again
	require.NoError(t, os.WriteFile(path, []byte(`{"content":"b","embedding":[0,1,0,0]}`+"\n"), 0644))
	w.importFile(ctx, path)

	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWatcherImportsDroppedFiles(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	// Present before the watcher starts
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.jsonl"),
		[]byte(`{"content":"old","embedding":[1,0,0,0]}`+"\n"), 0644))

	var (
		mu       sync.Mutex
		imported []string
	)
	w, err := New(dir, importer.New(st),
		WithDebounceTime(20*time.Millisecond),
		WithImportOptions(importer.Options{SkipDuplicates: true}),
		WithEventCallback(func(event, path string) {
			mu.Lock()
			imported = append(imported, path)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool {
		count, err := st.Count()
		return err == nil && count == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Ignored: wrong extension
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.jsonl"),
		[]byte(`{"content":"new","embedding":[0,1,0,0]}`+"\n"), 0644))

	require.Eventually(t, func() bool {
		count, err := st.Count()
		return err == nil && count == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, imported, "existing.jsonl")
	assert.Contains(t, imported, "new.jsonl")
	assert.NotContains(t, imported, "notes.txt")
}

func TestShouldImportHonorsIgnorePatterns(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("# scratch files\nscratch-*.jsonl\n"), 0644))

	w, err := New(dir, importer.New(st), WithIgnorePatterns([]string{"draft.jsonl"}))
	require.NoError(t, err)

	assert.True(t, w.shouldImport(filepath.Join(dir, "docs.jsonl")))
	assert.False(t, w.shouldImport(filepath.Join(dir, "draft.jsonl")))
	assert.False(t, w.shouldImport(filepath.Join(dir, "scratch-01.jsonl")))
	assert.False(t, w.shouldImport(filepath.Join(dir, "notes.txt")))
}

func TestImportExistingSkipsIgnoredFiles(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.jsonl"),
		[]byte(`{"content":"keep","embedding":[1,0,0,0]}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.jsonl"),
		[]byte(`{"content":"skip","embedding":[0,1,0,0]}`+"\n"), 0644))

	w, err := New(dir, importer.New(st), WithIgnorePatterns([]string{"skip.jsonl"}))
	require.NoError(t, err)
	require.NoError(t, w.importExisting(context.Background()))

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportFileImportsAppendedRecords(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	w, err := New(dir, importer.New(st))
	require.NoError(t, err)

	path := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"content":"a","embedding":[1,0,0,0]}`+"\n"), 0644))

	ctx := context.Background()
	w.importFile(ctx, path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()

	// Second record arrives in two writes
	_, err = f.WriteString(`{"content":"b","embed`)
	require.NoError(t, err)
	w.importFile(ctx, path)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "partial line must wait for the rest of the record")

	_, err = f.WriteString(`ding":[0,1,0,0]}` + "\n")
	require.NoError(t, err)
	w.importFile(ctx, path)

	page, err := st.ListPage(0, 10)
	require.NoError(t, err)
	require.Len(t, page.Documents, 2)
	assert.Equal(t, "b", page.Documents[0].Content)
	assert.Equal(t, "a", page.Documents[1].Content)
}

func TestImportFileAcceptsLastLineWithoutNewline(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	w, err := New(dir, importer.New(st))
	require.NoError(t, err)

	path := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"content":"a","embedding":[1,0,0,0]}`), 0644))
	w.importFile(context.Background(), path)

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCompleteRecords(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		start int
		want  int
	}{
		{"complete lines", "{}\n{}\n", 0, 6},
		{"partial last line", "{}\n{\"a\":", 0, 3},
		{"valid last line", "{}\n{}", 0, 5},
		{"nothing new", "{}\n", 3, 3},
		{"tail only", "{}\n{}\n", 3, 6},
		{"no newline yet", "{\"a\":", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completeRecords([]byte(tt.data), tt.start))
		})
	}
}

func TestFlushWaitsForQuietPeriod(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	w, err := New(dir, importer.New(st), WithDebounceTime(time.Hour))
	require.NoError(t, err)

	path := filepath.Join(dir, "docs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"content":"a","embedding":[1,0,0,0]}`+"\n"), 0644))

	// Recent event: still settling
	w.debounce[path] = time.Now()
	w.flushDebounced(context.Background())

	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, w.debounce, path)

	w.debounce[path] = time.Now().Add(-2 * time.Hour)
	w.flushDebounced(context.Background())

	count, err = st.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotContains(t, w.debounce, path)
}

func TestWatcherImportsFileWrittenInChunks(t *testing.T) {
	st := setupTestStore(t)
	dir := t.TempDir()

	w, err := New(dir, importer.New(st), WithDebounceTime(100*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	f, err := os.Create(filepath.Join(dir, "slow.jsonl"))
	require.NoError(t, err)
	_, err = f.WriteString(`{"content":"a","embedding":[1,0,0,0]}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	// Long enough for the first record to be imported on its own
	require.Eventually(t, func() bool {
		count, err := st.Count()
		return err == nil && count == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, err = f.WriteString(`{"content":"b","embedding":[0,1,0,0]}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		count, err := st.Count()
		return err == nil && count == 2
	}, 5*time.Second, 10*time.Millisecond)

	// No late duplicate of the first record
	time.Sleep(300 * time.Millisecond)
	count, err := st.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
