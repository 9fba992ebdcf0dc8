package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// FindEntity finds an entity by its BBID.
func (r *Repository) FindEntity(ctx context.Context, bbid string) (*entities.Entity, error) {
	query := `SELECT bbid, kind, master_revision_id, last_updated FROM entities WHERE bbid = ?`

	e, err := scanEntity(r.db.QueryRowContext(ctx, query, bbid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntities lists entities by most recent modification first.
func (r *Repository) ListEntities(ctx context.Context, kind entities.EntityKind, limit, offset int) ([]entities.Entity, error) {
	query := `SELECT bbid, kind, master_revision_id, last_updated FROM entities`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY last_updated DESC, bbid LIMIT ? OFFSET ?`
	args = append(args, sqlLimit(limit), offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	result := []entities.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// CountEntities returns the number of entities of a kind (all when empty).
func (r *Repository) CountEntities(ctx context.Context, kind entities.EntityKind) (int, error) {
	query := `SELECT COUNT(*) FROM entities`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

// FindEntityData loads a snapshot with its aliases, identifiers, annotation
// and disambiguation.
func (r *Repository) FindEntityData(ctx context.Context, id int64) (*entities.EntityData, error) {
	query := `SELECT d.id, d.kind, d.data,
			a.id, a.content, a.created_at,
			m.id, m.comment
		FROM entity_data d
		LEFT JOIN annotations a ON a.id = d.annotation_id
		LEFT JOIN disambiguations m ON m.id = d.disambiguation_id
		WHERE d.id = ?`

	var (
		d            entities.EntityData
		kind, raw    string
		annID        sql.NullInt64
		annContent   sql.NullString
		annCreatedAt sql.NullString
		disID        sql.NullInt64
		disComment   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &kind, &raw, &annID, &annContent, &annCreatedAt, &disID, &disComment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entity data: %w", err)
	}

	d.Kind = entities.EntityKind(kind)
	if d.Data, err = entities.DecodeKindData(d.Kind, []byte(raw)); err != nil {
		return nil, err
	}
	if annID.Valid {
		createdAt, err := parseTime(annCreatedAt.String)
		if err != nil {
			return nil, err
		}
		d.Annotation = &entities.Annotation{ID: annID.Int64, Content: annContent.String, CreatedAt: createdAt}
	}
	if disID.Valid {
		d.Disambiguation = &entities.Disambiguation{ID: disID.Int64, Comment: disComment.String}
	}

	if d.Aliases, err = r.findAliases(ctx, id); err != nil {
		return nil, err
	}
	if d.Identifiers, err = r.findIdentifiers(ctx, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) findAliases(ctx context.Context, dataID int64) ([]entities.Alias, error) {
	query := `SELECT a.id, a.name, a.sort_name, a.language_id, a.is_primary, l.is_default
		FROM entity_data_aliases l
		JOIN aliases a ON a.id = l.alias_id
		WHERE l.entity_data_id = ?
		ORDER BY l.position`

	rows, err := r.db.QueryContext(ctx, query, dataID)
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	defer rows.Close()

	aliases := []entities.Alias{}
	for rows.Next() {
		var a entities.Alias
		var lang sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &a.SortName, &lang, &a.Primary, &a.Default); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		a.LanguageID = intPtr(lang)
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

func (r *Repository) findIdentifiers(ctx context.Context, dataID int64) ([]entities.Identifier, error) {
	query := `SELECT i.id, i.type_id, i.value
		FROM entity_data_identifiers l
		JOIN identifiers i ON i.id = l.identifier_id
		WHERE l.entity_data_id = ?
		ORDER BY l.position`

	rows, err := r.db.QueryContext(ctx, query, dataID)
	if err != nil {
		return nil, fmt.Errorf("querying identifiers: %w", err)
	}
	defer rows.Close()

	identifiers := []entities.Identifier{}
	for rows.Next() {
		var i entities.Identifier
		if err := rows.Scan(&i.ID, &i.TypeID, &i.Value); err != nil {
			return nil, fmt.Errorf("scanning identifier: %w", err)
		}
		identifiers = append(identifiers, i)
	}
	return identifiers, rows.Err()
}

// CommitEntity persists a new revision of an entity in one transaction. The
// master pointer only moves if it still equals ExpectedMaster.
func (r *Repository) CommitEntity(ctx context.Context, c *ports.EntityCommit) (*entities.Revision, error) {
	var rev *entities.Revision
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var current sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT master_revision_id FROM entities WHERE bbid = ?`, c.Entity.BBID).Scan(&current)
		exists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading master revision: %w", err)
		}
		if err := checkMaster(c.Create, exists, current, c.ExpectedMaster, "entity "+c.Entity.BBID); err != nil {
			return err
		}

		now := timeNow().UTC()
		var dataID *int64
		if c.Data != nil {
			if err := insertEntityData(ctx, tx, c.Data, now); err != nil {
				return err
			}
			id := c.Data.ID
			dataID = &id
		}

		var parent *int64
		if !c.Create {
			parent = c.ExpectedMaster
		}
		revID, err := insertRevision(ctx, tx, parent, c.EditorID, c.Note, entities.RevisionEntity, now)
		if err != nil {
			return err
		}

		if c.Create {
			_, err = tx.ExecContext(ctx, `INSERT INTO entities (bbid, kind, master_revision_id, last_updated)
				VALUES (?, ?, ?, ?)`,
				c.Entity.BBID, string(c.Entity.Kind), revID, formatTime(now))
			if err != nil {
				return fmt.Errorf("inserting entity: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx, `UPDATE entities SET master_revision_id = ?, last_updated = ?
				WHERE bbid = ? AND master_revision_id = ?`,
				revID, formatTime(now), c.Entity.BBID, *c.ExpectedMaster)
			if err != nil {
				return fmt.Errorf("updating entity: %w", err)
			}
			if err := checkSwapped(res); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO entity_revisions (id, bbid, entity_data_id) VALUES (?, ?, ?)`,
			revID, c.Entity.BBID, nullInt(dataID))
		if err != nil {
			return fmt.Errorf("inserting entity revision: %w", err)
		}

		c.Entity.MasterRevisionID = &revID
		c.Entity.LastUpdated = now
		rev = &entities.Revision{
			ID:        revID,
			ParentID:  parent,
			EditorID:  c.EditorID,
			Note:      c.Note,
			CreatedAt: now,
			Target:    entities.EntityTarget{BBID: c.Entity.BBID, DataID: dataID},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// insertEntityData writes the snapshot row and links its children, creating
// child rows that have no ID yet.
func insertEntityData(ctx context.Context, tx *sql.Tx, d *entities.EntityData, now time.Time) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshaling %s data: %w", d.Kind, err)
	}

	var annotationID, disambiguationID *int64
	if d.Annotation != nil {
		if d.Annotation.ID == 0 {
			res, err := tx.ExecContext(ctx, `INSERT INTO annotations (content, created_at) VALUES (?, ?)`,
				d.Annotation.Content, formatTime(now))
			if err != nil {
				return fmt.Errorf("inserting annotation: %w", err)
			}
			if d.Annotation.ID, err = res.LastInsertId(); err != nil {
				return err
			}
			d.Annotation.CreatedAt = now
		}
		annotationID = &d.Annotation.ID
	}
	if d.Disambiguation != nil {
		if d.Disambiguation.ID == 0 {
			res, err := tx.ExecContext(ctx, `INSERT INTO disambiguations (comment) VALUES (?)`, d.Disambiguation.Comment)
			if err != nil {
				return fmt.Errorf("inserting disambiguation: %w", err)
			}
			if d.Disambiguation.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		disambiguationID = &d.Disambiguation.ID
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO entity_data (kind, data, annotation_id, disambiguation_id)
		VALUES (?, ?, ?, ?)`,
		string(d.Kind), string(raw), nullInt(annotationID), nullInt(disambiguationID))
	if err != nil {
		return fmt.Errorf("inserting entity data: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range d.Aliases {
		a := &d.Aliases[i]
		if a.ID == 0 {
			res, err := tx.ExecContext(ctx, `INSERT INTO aliases (name, sort_name, language_id, is_primary)
				VALUES (?, ?, ?, ?)`,
				a.Name, a.SortName, nullInt(a.LanguageID), a.Primary)
			if err != nil {
				return fmt.Errorf("inserting alias: %w", err)
			}
			if a.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO entity_data_aliases (entity_data_id, alias_id, position, is_default)
			VALUES (?, ?, ?, ?)`,
			d.ID, a.ID, i, a.Default)
		if err != nil {
			return fmt.Errorf("linking alias %d: %w", a.ID, err)
		}
	}

	for i := range d.Identifiers {
		ident := &d.Identifiers[i]
		if ident.ID == 0 {
			res, err := tx.ExecContext(ctx, `INSERT INTO identifiers (type_id, value) VALUES (?, ?)`,
				ident.TypeID, ident.Value)
			if err != nil {
				return fmt.Errorf("inserting identifier: %w", err)
			}
			if ident.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO entity_data_identifiers (entity_data_id, identifier_id, position)
			VALUES (?, ?, ?)`,
			d.ID, ident.ID, i)
		if err != nil {
			return fmt.Errorf("linking identifier %d: %w", ident.ID, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(s rowScanner) (*entities.Entity, error) {
	var e entities.Entity
	var kind, lastUpdated string
	var master sql.NullInt64
	if err := s.Scan(&e.BBID, &kind, &master, &lastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	e.Kind = entities.EntityKind(kind)
	e.MasterRevisionID = intPtr(master)
	t, err := parseTime(lastUpdated)
	if err != nil {
		return nil, err
	}
	e.LastUpdated = t
	return &e, nil
}
