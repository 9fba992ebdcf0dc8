package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

const revisionColumns = `SELECT r.id, r.parent_id, r.editor_id, r.note, r.created_at, r.type,
		er.bbid, er.entity_data_id, rr.relationship_id, rr.relationship_data_id
	FROM revisions r
	LEFT JOIN entity_revisions er ON er.id = r.id
	LEFT JOIN relationship_revisions rr ON rr.id = r.id`

// FindRevision finds a revision by ID.
func (r *Repository) FindRevision(ctx context.Context, id int64) (*entities.Revision, error) {
	rev, err := scanRevision(r.db.QueryRowContext(ctx, revisionColumns+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// FindChildRevisions finds the revisions whose parent is id, oldest first.
func (r *Repository) FindChildRevisions(ctx context.Context, id int64) ([]entities.Revision, error) {
	return r.queryRevisions(ctx, revisionColumns+` WHERE r.parent_id = ? ORDER BY r.id`, id)
}

// ListRevisions lists revisions newest first.
func (r *Repository) ListRevisions(ctx context.Context, f ports.RevisionFilter) ([]entities.Revision, error) {
	var where []string
	var args []any
	if f.EntityBBID != "" {
		where = append(where, "er.bbid = ?")
		args = append(args, f.EntityBBID)
	}
	if f.RelationshipID != "" {
		where = append(where, "rr.relationship_id = ?")
		args = append(args, f.RelationshipID)
	}
	if f.EditorID != 0 {
		where = append(where, "r.editor_id = ?")
		args = append(args, f.EditorID)
	}
	if f.Kind != "" {
		where = append(where, "r.type = ?")
		args = append(args, string(f.Kind))
	}

	query := revisionColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.id DESC LIMIT ? OFFSET ?"
	args = append(args, sqlLimit(f.Limit), f.Offset)

	return r.queryRevisions(ctx, query, args...)
}

func (r *Repository) queryRevisions(ctx context.Context, query string, args ...any) ([]entities.Revision, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	revisions := []entities.Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, *rev)
	}
	return revisions, rows.Err()
}

func scanRevision(s rowScanner) (*entities.Revision, error) {
	var (
		rev            entities.Revision
		parent         sql.NullInt64
		createdAt      string
		kind           string
		bbid           sql.NullString
		entityDataID   sql.NullInt64
		relationshipID sql.NullString
		relDataID      sql.NullInt64
	)
	err := s.Scan(&rev.ID, &parent, &rev.EditorID, &rev.Note, &createdAt, &kind,
		&bbid, &entityDataID, &relationshipID, &relDataID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning revision: %w", err)
	}

	rev.ParentID = intPtr(parent)
	if rev.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	switch entities.RevisionKind(kind) {
	case entities.RevisionEntity:
		rev.Target = entities.EntityTarget{BBID: bbid.String, DataID: intPtr(entityDataID)}
	case entities.RevisionRelationship:
		rev.Target = entities.RelationshipTarget{RelationshipID: relationshipID.String, DataID: intPtr(relDataID)}
	default:
		return nil, fmt.Errorf("revision %d has unknown type %q", rev.ID, kind)
	}
	return &rev, nil
}
