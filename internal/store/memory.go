package store

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"github.com/existflow/projtrack/internal/model"
)

const (
	projectsTable = "projects"
	usersTable    = "users"
)

type projectRecord struct {
	Seq       uint64
	ID        string
	CreatedBy string
	Project   model.Project
}

type userRecord struct {
	Seq      uint64
	Username string
	User     model.User
}

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			projectsTable: {
				Name: projectsTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"created_by": {
						Name:         "created_by",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "CreatedBy"},
					},
				},
			},
			usersTable: {
				Name: usersTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Username"},
					},
				},
			},
		},
	}
}

// MemoryStore keeps records in process memory. Write transactions are
// serialized by go-memdb; readers see the last committed snapshot.
type MemoryStore struct {
	db  *memdb.MemDB
	seq atomic.Uint64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() (*MemoryStore, error) {
	mdb, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	return &MemoryStore{db: mdb}, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// Begin starts a write transaction
func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{store: s, txn: s.db.Txn(true)}, nil
}

// ListProjects returns all projects in insertion order
func (s *MemoryStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.FindProjects(ctx, ProjectQuery{})
}

// FindProjects returns the projects matching q in insertion order
func (s *MemoryStore) FindProjects(ctx context.Context, q ProjectQuery) ([]model.Project, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	var (
		it  memdb.ResultIterator
		err error
	)
	switch {
	case q.ID != "":
		it, err = txn.Get(projectsTable, "id", q.ID)
	case q.CreatedBy != "":
		it, err = txn.Get(projectsTable, "created_by", q.CreatedBy)
	default:
		it, err = txn.Get(projectsTable, "id")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	var records []*projectRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rec := obj.(*projectRecord)
		if q.Match(rec.Project) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	out := make([]model.Project, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Project)
	}
	return out, nil
}

// ListUsers returns all users in insertion order
func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(usersTable, "id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var records []*userRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(*userRecord))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	out := make([]model.User, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.User)
	}
	return out, nil
}

// FindUser returns the user with exactly this username
func (s *MemoryStore) FindUser(ctx context.Context, username string) (model.User, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	obj, err := txn.First(usersTable, "id", username)
	if err != nil {
		return model.User{}, err
	}
	if obj == nil {
		return model.User{}, ErrNotFound
	}
	return obj.(*userRecord).User, nil
}

type memoryTx struct {
	store *MemoryStore
	txn   *memdb.Txn
	done  bool
}

func (t *memoryTx) firstProject(id string) (*projectRecord, error) {
	obj, err := t.txn.First(projectsTable, "id", id)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.(*projectRecord), nil
}

func (t *memoryTx) InsertProject(ctx context.Context, p model.Project) error {
	if t.done {
		return ErrTxDone
	}
	if err := p.Validate(); err != nil {
		return err
	}
	existing, err := t.firstProject(p.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}
	rec := &projectRecord{Seq: t.store.seq.Add(1), ID: p.ID, CreatedBy: p.CreatedBy, Project: p}
	return t.txn.Insert(projectsTable, rec)
}

func (t *memoryTx) UpdateProject(ctx context.Context, p model.Project) error {
	if t.done {
		return ErrTxDone
	}
	if err := p.Validate(); err != nil {
		return err
	}
	existing, err := t.firstProject(p.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	// created_by is immutable
	p.CreatedBy = existing.CreatedBy
	rec := &projectRecord{Seq: existing.Seq, ID: p.ID, CreatedBy: existing.CreatedBy, Project: p}
	return t.txn.Insert(projectsTable, rec)
}

func (t *memoryTx) DeleteProject(ctx context.Context, id string) error {
	if t.done {
		return ErrTxDone
	}
	existing, err := t.firstProject(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return t.txn.Delete(projectsTable, existing)
}

func (t *memoryTx) InsertUser(ctx context.Context, u model.User) error {
	if t.done {
		return ErrTxDone
	}
	existing, err := t.txn.First(usersTable, "id", u.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}
	return t.txn.Insert(usersTable, &userRecord{Seq: t.store.seq.Add(1), Username: u.Username, User: u})
}

func (t *memoryTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.txn.Commit()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.txn.Abort()
	return nil
}
