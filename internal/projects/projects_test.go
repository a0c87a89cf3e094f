package projects

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/projtrack/internal/db"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/store"
)

var errCommit = errors.New("commit failed")

// flakyStore fails the next commit when failCommit is set
type flakyStore struct {
	store.Store
	failCommit bool
	failList   bool
}

func (s *flakyStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &flakyTx{Tx: tx, fail: s.failCommit}, nil
}

func (s *flakyStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	if s.failList {
		return nil, errors.New("read failed")
	}
	return s.Store.ListProjects(ctx)
}

type flakyTx struct {
	store.Tx
	fail bool
}

func (t *flakyTx) Commit() error {
	if t.fail {
		_ = t.Tx.Rollback()
		return errCommit
	}
	return t.Tx.Commit()
}

func newTestVM(t *testing.T) (*ViewModel, *flakyStore) {
	t.Helper()
	mem, err := store.NewMemoryStore()
	require.NoError(t, err)
	fs := &flakyStore{Store: mem}
	return New(fs), fs
}

func TestViewModel_AddThenDelete(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()
	now := time.Now()

	p, err := vm.Add(ctx, "Test Project", "This is a test project", "John Doe", true, "Test Category", now, 50.0)
	require.NoError(t, err)

	list := vm.Projects()
	require.Len(t, list, 1)
	assert.Equal(t, "Test Project", list[0].Title)
	assert.Equal(t, "This is a test project", list[0].Description)
	assert.Equal(t, "John Doe", list[0].CreatedBy)
	assert.True(t, list[0].IsEditable)
	assert.Equal(t, "Test Category", list[0].Category)
	assert.Equal(t, model.NormalizeDate(now), list[0].Date)
	assert.Equal(t, 50.0, list[0].Progress)
	assert.NotEmpty(t, list[0].ID)

	require.NoError(t, vm.Delete(ctx, p))
	assert.Empty(t, vm.Projects())
}

func TestViewModel_AddIncreasesByOne(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		before := vm.Len()
		_, err := vm.Add(ctx, "P", "", "alice", true, model.CategoryHealthWellness, time.Now(), 0)
		require.NoError(t, err)
		assert.Equal(t, before+1, vm.Len())
	}

	list := vm.Projects()
	ids := map[string]bool{}
	for _, p := range list {
		ids[p.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestViewModel_AddPersists(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()

	p, err := vm.Add(ctx, "Alpha", "d", "alice", false, model.CategoryArtsCulture, time.Now(), 12.5)
	require.NoError(t, err)

	stored, err := fs.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, p, stored[0])
}

func TestViewModel_AddRejectsProgress(t *testing.T) {
	vm, _ := newTestVM(t)

	_, err := vm.Add(context.Background(), "Alpha", "", "alice", true, "", time.Now(), 150)
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Zero(t, vm.Len())
}

func TestViewModel_EditSingleEntry(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	p, err := vm.Add(ctx, "Original", "d", "alice", true, model.CategoryEducation, date, 10)
	require.NoError(t, err)
	other, err := vm.Add(ctx, "Other", "d", "alice", true, model.CategoryEducation, date, 20)
	require.NoError(t, err)

	newDate := date.AddDate(0, 1, 0)
	updated, err := vm.Edit(ctx, p, Update{
		Title:       "Updated Project",
		Description: "new",
		Category:    model.CategoryYouthPrograms,
		Date:        newDate,
		Progress:    75.0,
	})
	require.NoError(t, err)

	list := vm.Projects()
	require.Len(t, list, 2)
	assert.Equal(t, updated, list[0])
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, "Updated Project", list[0].Title)
	assert.Equal(t, "new", list[0].Description)
	assert.Equal(t, model.CategoryYouthPrograms, list[0].Category)
	assert.Equal(t, newDate, list[0].Date)
	assert.Equal(t, 75.0, list[0].Progress)
	assert.Equal(t, p.CreatedBy, list[0].CreatedBy)
	assert.Equal(t, other, list[1])

	stored, err := fs.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, stored)
}

func TestViewModel_EditAfterRename(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()

	p, err := vm.Add(ctx, "First", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)

	p, err = vm.Edit(ctx, p, Update{Title: "Second", Date: p.Date, Progress: 30})
	require.NoError(t, err)
	_, err = vm.Edit(ctx, p, Update{Title: "Third", Date: p.Date, Progress: 60})
	require.NoError(t, err)

	stored, err := fs.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Third", stored[0].Title)
	assert.Equal(t, 60.0, stored[0].Progress)
}

func TestViewModel_EditUnknown(t *testing.T) {
	vm, _ := newTestVM(t)

	_, err := vm.Edit(context.Background(), model.Project{ID: "nope"}, Update{Progress: 1})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestViewModel_FailedCommitLeavesCache(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()

	p, err := vm.Add(ctx, "Keep", "", "alice", true, "", time.Now(), 40)
	require.NoError(t, err)
	before := vm.Projects()

	fs.failCommit = true

	_, err = vm.Add(ctx, "Lost", "", "alice", true, "", time.Now(), 0)
	assert.ErrorIs(t, err, errCommit)
	assert.Equal(t, before, vm.Projects())

	_, err = vm.Edit(ctx, p, Update{Title: "Changed", Progress: 90})
	assert.ErrorIs(t, err, errCommit)
	assert.Equal(t, before, vm.Projects())

	err = vm.Delete(ctx, p)
	assert.ErrorIs(t, err, errCommit)
	assert.Equal(t, before, vm.Projects())

	fs.failCommit = false
	stored, err := fs.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, stored)
}

func TestViewModel_DeleteRemovesOnlyTarget(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()

	a, err := vm.Add(ctx, "A", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)
	b, err := vm.Add(ctx, "B", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)
	c, err := vm.Add(ctx, "C", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)

	require.NoError(t, vm.Delete(ctx, b))

	list := vm.Projects()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
}

func TestViewModel_DeleteStaleEntry(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()

	p, err := vm.Add(ctx, "Gone", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)

	require.NoError(t, store.WithTx(ctx, fs, func(tx store.Tx) error {
		return tx.DeleteProject(ctx, p.ID)
	}))

	err = vm.Delete(ctx, p)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, vm.Len())
}

func TestViewModel_FetchIdempotent(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		_, err := vm.Add(ctx, title, "", "alice", true, "", time.Now(), 5)
		require.NoError(t, err)
	}

	first, err := vm.Fetch(ctx)
	require.NoError(t, err)
	second, err := vm.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func newSQLiteVM(t *testing.T) *ViewModel {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	s := store.NewSQLStore(conn)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

func TestViewModel_UndatedAddFetchesStable(t *testing.T) {
	vm := newSQLiteVM(t)
	ctx := context.Background()
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 7, time.UTC)
	vm.now = func() time.Time { return fixed }

	p, err := vm.Add(ctx, "Undated", "", "alice", true, "", time.Time{}, 0)
	require.NoError(t, err)
	assert.Equal(t, fixed, p.Date)

	// later fetches must not invent a fresh date for the same record
	vm.now = func() time.Time { return fixed.Add(time.Hour) }
	first, err := vm.Fetch(ctx)
	require.NoError(t, err)
	vm.now = func() time.Time { return fixed.Add(2 * time.Hour) }
	second, err := vm.Fetch(ctx)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, p, first[0])
}

func TestViewModel_UndatedEditUsesNow(t *testing.T) {
	vm := newSQLiteVM(t)
	ctx := context.Background()
	fixed := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	vm.now = func() time.Time { return fixed }

	p, err := vm.Add(ctx, "A", "", "alice", true, "", fixed.AddDate(0, 0, -5), 0)
	require.NoError(t, err)

	updated, err := vm.Edit(ctx, p, Update{Title: "A", Progress: 10})
	require.NoError(t, err)
	assert.Equal(t, fixed, updated.Date)

	list, err := vm.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Project{updated}, list)
}

func TestViewModel_CacheMatchesStoreExactly(t *testing.T) {
	vm := newSQLiteVM(t)
	ctx := context.Background()
	local := time.FixedZone("UTC+7", 7*60*60)

	added, err := vm.Add(ctx, "Local", "", "alice", true, "", time.Now().In(local), 30)
	require.NoError(t, err)
	edited, err := vm.Edit(ctx, added, Update{Title: "Local", Date: time.Now().In(local), Progress: 40})
	require.NoError(t, err)

	cached := vm.Projects()
	list, err := vm.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, list)
	assert.True(t, edited == list[0], "cached and fetched projects compare equal with ==")
}

func TestViewModel_FetchReplacesList(t *testing.T) {
	mem, err := store.NewMemoryStore()
	require.NoError(t, err)
	ctx := context.Background()

	writer := New(mem)
	reader := New(mem)

	_, err = writer.Add(ctx, "From elsewhere", "", "bob", true, "", time.Now(), 0)
	require.NoError(t, err)
	assert.Zero(t, reader.Len())

	list, err := reader.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "From elsewhere", list[0].Title)
}

func TestViewModel_FetchDefaultsDate(t *testing.T) {
	mem, err := store.NewMemoryStore()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, mem, func(tx store.Tx) error {
		return tx.InsertProject(ctx, model.Project{ID: "legacy", Title: "Old"})
	}))

	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	vm := New(mem)
	vm.now = func() time.Time { return fixed }

	list, err := vm.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fixed, list[0].Date)
	assert.Equal(t, "", list[0].Description)
	assert.Zero(t, list[0].Progress)
}

func TestViewModel_FetchFailureKeepsList(t *testing.T) {
	vm, fs := newTestVM(t)
	ctx := context.Background()

	_, err := vm.Add(ctx, "A", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)
	before := vm.Projects()

	fs.failList = true
	_, err = vm.Fetch(ctx)
	assert.Error(t, err)
	assert.Equal(t, before, vm.Projects())
}

func TestViewModel_Mine(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()

	_, err := vm.Add(ctx, "A", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)
	_, err = vm.Add(ctx, "B", "", "bob", true, "", time.Now(), 0)
	require.NoError(t, err)
	_, err = vm.Add(ctx, "C", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)

	mine := vm.Mine("alice")
	require.Len(t, mine, 2)
	assert.Equal(t, "A", mine[0].Title)
	assert.Equal(t, "C", mine[1].Title)
	assert.Empty(t, vm.Mine("carol"))
}

func TestViewModel_GetAndResolve(t *testing.T) {
	vm, _ := newTestVM(t)
	ctx := context.Background()

	p, err := vm.Add(ctx, "A", "", "alice", true, "", time.Now(), 0)
	require.NoError(t, err)

	got, ok := vm.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = vm.Get("missing")
	assert.False(t, ok)

	resolved, err := vm.Resolve(p.ShortID())
	require.NoError(t, err)
	assert.Equal(t, p.ID, resolved.ID)

	_, err = vm.Resolve("zzzz")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = vm.Resolve("")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestViewModel_ResolveAmbiguous(t *testing.T) {
	mem, err := store.NewMemoryStore()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, mem, func(tx store.Tx) error {
		if err := tx.InsertProject(ctx, model.Project{ID: "abc-1", Title: "One"}); err != nil {
			return err
		}
		return tx.InsertProject(ctx, model.Project{ID: "abc-2", Title: "Two"})
	}))

	vm := New(mem)
	_, err = vm.Fetch(ctx)
	require.NoError(t, err)

	_, err = vm.Resolve("abc")
	assert.ErrorIs(t, err, ErrAmbiguous)

	exact, err := vm.Resolve("abc-2")
	require.NoError(t, err)
	assert.Equal(t, "Two", exact.Title)
}
