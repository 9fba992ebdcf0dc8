// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ ports.RelationalDB = (*Repository)(nil)

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection of an in-memory database is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// dsn applies the connection pragmas to every pooled connection. Write
// transactions take the lock up front so concurrent commits queue on
// busy_timeout instead of failing on lock upgrade.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Editors (authors of revisions)
	CREATE TABLE IF NOT EXISTS editors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		editor_type_id INTEGER NOT NULL DEFAULT 0,
		total_revisions INTEGER NOT NULL DEFAULT 0,
		revisions_applied INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Lookup codes referenced by snapshots
	CREATE TABLE IF NOT EXISTS type_codes (
		category TEXT NOT NULL,
		id INTEGER NOT NULL,
		label TEXT NOT NULL,
		PRIMARY KEY (category, id)
	);

	-- Revisions (one node per edit, globally increasing ids)
	CREATE TABLE IF NOT EXISTS revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER REFERENCES revisions(id),
		editor_id INTEGER NOT NULL REFERENCES editors(id),
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_revisions_parent ON revisions(parent_id);
	CREATE INDEX IF NOT EXISTS idx_revisions_editor ON revisions(editor_id);

	-- Entity identities
	CREATE TABLE IF NOT EXISTS entities (
		bbid TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		master_revision_id INTEGER REFERENCES revisions(id),
		last_updated TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind, last_updated DESC);

	-- Shared snapshot children
	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS disambiguations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS aliases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		sort_name TEXT NOT NULL DEFAULT '',
		language_id INTEGER,
		is_primary INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS identifiers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type_id INTEGER NOT NULL,
		value TEXT NOT NULL
	);

	-- Entity snapshots (immutable once written)
	CREATE TABLE IF NOT EXISTS entity_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		data TEXT NOT NULL,
		annotation_id INTEGER REFERENCES annotations(id),
		disambiguation_id INTEGER REFERENCES disambiguations(id)
	);
	CREATE TABLE IF NOT EXISTS entity_data_aliases (
		entity_data_id INTEGER NOT NULL REFERENCES entity_data(id),
		alias_id INTEGER NOT NULL REFERENCES aliases(id),
		position INTEGER NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (entity_data_id, alias_id)
	);
	CREATE TABLE IF NOT EXISTS entity_data_identifiers (
		entity_data_id INTEGER NOT NULL REFERENCES entity_data(id),
		identifier_id INTEGER NOT NULL REFERENCES identifiers(id),
		position INTEGER NOT NULL,
		PRIMARY KEY (entity_data_id, identifier_id)
	);

	-- Entity revision targets (entity_data_id is NULL for a deletion)
	CREATE TABLE IF NOT EXISTS entity_revisions (
		id INTEGER PRIMARY KEY REFERENCES revisions(id),
		bbid TEXT NOT NULL REFERENCES entities(bbid),
		entity_data_id INTEGER REFERENCES entity_data(id)
	);
	CREATE INDEX IF NOT EXISTS idx_entity_revisions_bbid ON entity_revisions(bbid);

	-- Relationship identities, snapshots and revision targets
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		master_revision_id INTEGER REFERENCES revisions(id),
		last_updated TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS relationship_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type_id INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS relationship_data_entities (
		relationship_data_id INTEGER NOT NULL REFERENCES relationship_data(id),
		entity_bbid TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relationship_data_entities_bbid ON relationship_data_entities(entity_bbid);
	CREATE TABLE IF NOT EXISTS relationship_data_texts (
		relationship_data_id INTEGER NOT NULL REFERENCES relationship_data(id),
		text TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS relationship_revisions (
		id INTEGER PRIMARY KEY REFERENCES revisions(id),
		relationship_id TEXT NOT NULL REFERENCES relationships(id),
		relationship_data_id INTEGER REFERENCES relationship_data(id)
	);
	CREATE INDEX IF NOT EXISTS idx_relationship_revisions_rel ON relationship_revisions(relationship_id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const editorColumns = `id, name, email, editor_type_id, total_revisions, revisions_applied, created_at`

// FindEditor finds an editor and its counters.
func (r *Repository) FindEditor(ctx context.Context, id int64) (*entities.Editor, error) {
	query := `SELECT ` + editorColumns + ` FROM editors WHERE id = ?`

	e, err := scanEditor(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListEditors lists editors in registration order.
func (r *Repository) ListEditors(ctx context.Context, limit, offset int) ([]entities.Editor, error) {
	query := `SELECT ` + editorColumns + ` FROM editors ORDER BY id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("querying editors: %w", err)
	}
	defer rows.Close()

	result := []entities.Editor{}
	for rows.Next() {
		e, err := scanEditor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// SaveEditor registers an editor or updates the profile of an existing one.
// A zero ID assigns a new one. Revision counters are left untouched.
func (r *Repository) SaveEditor(ctx context.Context, e *entities.Editor) error {
	now := timeNow().UTC()

	if e.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO editors (name, email, editor_type_id, created_at)
			VALUES (?, ?, ?, ?)`,
			e.Name, e.Email, e.EditorTypeID, formatTime(now))
		if err != nil {
			return fmt.Errorf("inserting editor: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading editor id: %w", err)
		}
		e.ID = id
		e.CreatedAt = now
		return nil
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO editors (id, name, email, editor_type_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			editor_type_id = excluded.editor_type_id`,
		e.ID, e.Name, e.Email, e.EditorTypeID, formatTime(now))
	if err != nil {
		return fmt.Errorf("saving editor: %w", err)
	}
	return nil
}

func scanEditor(s rowScanner) (*entities.Editor, error) {
	var e entities.Editor
	var createdAt string
	err := s.Scan(&e.ID, &e.Name, &e.Email, &e.EditorTypeID, &e.TotalRevisions, &e.RevisionsApplied, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning editor: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveTypeCode saves or relabels a type code.
func (r *Repository) SaveTypeCode(ctx context.Context, code *entities.TypeCode) error {
	query := `INSERT INTO type_codes (category, id, label) VALUES (?, ?, ?)
		ON CONFLICT(category, id) DO UPDATE SET label = excluded.label`

	_, err := r.db.ExecContext(ctx, query, string(code.Category), code.ID, code.Label)
	if err != nil {
		return fmt.Errorf("saving type code: %w", err)
	}
	return nil
}

// ListTypeCodes lists type codes of a category (all when empty).
func (r *Repository) ListTypeCodes(ctx context.Context, category entities.TypeCategory) ([]entities.TypeCode, error) {
	query := `SELECT category, id, label FROM type_codes`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY category, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying type codes: %w", err)
	}
	defer rows.Close()

	var codes []entities.TypeCode
	for rows.Next() {
		var c entities.TypeCode
		var cat string
		if err := rows.Scan(&cat, &c.ID, &c.Label); err != nil {
			return nil, fmt.Errorf("scanning type code: %w", err)
		}
		c.Category = entities.TypeCategory(cat)
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// checkMaster compares the stored master revision with the one the writer read.
func checkMaster(create, exists bool, current sql.NullInt64, expected *int64, what string) error {
	if create {
		if exists {
			return fmt.Errorf("%s already exists", what)
		}
		return nil
	}
	if !exists {
		return fmt.Errorf("%s: %w", what, entities.ErrNotFound)
	}
	if !current.Valid || expected == nil || current.Int64 != *expected {
		return entities.ErrConflict
	}
	return nil
}

// checkSwapped reports a conflict when the guarded master update touched no row.
func checkSwapped(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking master update: %w", err)
	}
	if n != 1 {
		return entities.ErrConflict
	}
	return nil
}

// insertRevision writes the revision row and bumps the editor's counters.
func insertRevision(ctx context.Context, tx *sql.Tx, parent *int64, editorID int64, note string, kind entities.RevisionKind, now time.Time) (int64, error) {
	_, err := tx.ExecContext(ctx, `INSERT INTO editors (id, total_revisions, revisions_applied, created_at)
		VALUES (?, 1, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_revisions = total_revisions + 1,
			revisions_applied = revisions_applied + 1`,
		editorID, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("updating editor: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO revisions (parent_id, editor_id, note, created_at, type)
		VALUES (?, ?, ?, ?, ?)`,
		nullInt(parent), editorID, note, formatTime(now), string(kind))
	if err != nil {
		return 0, fmt.Errorf("inserting revision: %w", err)
	}
	return res.LastInsertId()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// sqlLimit maps a zero limit to SQLite's unbounded -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
