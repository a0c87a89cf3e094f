package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/existflow/projtrack/internal/db"
	"github.com/existflow/projtrack/internal/model"
)

const projectColumns = `id, title, description, created_by, is_editable, category, date, progress`

const userColumns = `username, email, password_hash, created_at`

// SQLStore keeps records in SQLite or Postgres
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a store on an open, migrated connection
func NewSQLStore(conn *db.DB) *SQLStore {
	return &SQLStore{db: conn}
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Begin starts a transaction
func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, db: s.db}, nil
}

// ListProjects returns all projects in insertion order
func (s *SQLStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.FindProjects(ctx, ProjectQuery{})
}

// FindProjects returns the projects matching q
func (s *SQLStore) FindProjects(ctx context.Context, q ProjectQuery) ([]model.Project, error) {
	var where []string
	var args []interface{}
	if q.ID != "" {
		where = append(where, "id = ?")
		args = append(args, q.ID)
	}
	if q.Title != "" {
		where = append(where, "title = ?")
		args = append(args, q.Title)
	}
	if q.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, q.CreatedBy)
	}

	query := "SELECT " + projectColumns + " FROM projects"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	out := make([]model.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns all users in insertion order
func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindUser returns the user with exactly this username
func (s *SQLStore) FindUser(ctx context.Context, username string) (model.User, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (model.Project, error) {
	var (
		p        model.Project
		date     sql.NullString
		progress sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedBy, &p.IsEditable, &p.Category, &date, &progress); err != nil {
		return model.Project{}, err
	}
	if date.Valid && date.String != "" {
		parsed, err := time.Parse(time.RFC3339Nano, date.String)
		if err != nil {
			return model.Project{}, fmt.Errorf("failed to parse project date: %w", err)
		}
		p.Date = parsed
	}
	p.Progress = progress.Float64
	return p, nil
}

func scanUser(row scanner) (model.User, error) {
	var (
		u         model.User
		createdAt string
	)
	if err := row.Scan(&u.Username, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return model.User{}, err
	}
	if createdAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to parse user created_at: %w", err)
		}
		u.CreatedAt = parsed
	}
	return u, nil
}

func formatDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

// isUniqueViolation recognises duplicate-key errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

type sqlTx struct {
	tx *sql.Tx
	db *db.DB
}

func (t *sqlTx) InsertProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, t.db.Rebind(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Title, p.Description, p.CreatedBy, p.IsEditable, p.Category, formatDate(p.Date), p.Progress,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (t *sqlTx) UpdateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	result, err := t.tx.ExecContext(ctx, t.db.Rebind(`
		UPDATE projects
		SET title = ?, description = ?, is_editable = ?, category = ?, date = ?, progress = ?
		WHERE id = ?`),
		p.Title, p.Description, p.IsEditable, p.Category, formatDate(p.Date), p.Progress, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(result)
}

func (t *sqlTx) DeleteProject(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, t.db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(result)
}

func (t *sqlTx) InsertUser(ctx context.Context, u model.User) error {
	_, err := t.tx.ExecContext(ctx, t.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?)`),
		u.Username, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return ErrTxDone
		}
		return err
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
