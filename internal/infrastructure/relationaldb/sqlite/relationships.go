package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

// FindRelationship finds a relationship by its ID.
func (r *Repository) FindRelationship(ctx context.Context, id string) (*entities.Relationship, error) {
	query := `SELECT id, master_revision_id, last_updated FROM relationships WHERE id = ?`

	rel, err := scanRelationship(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// FindRelationshipData loads a relationship snapshot.
func (r *Repository) FindRelationshipData(ctx context.Context, id int64) (*entities.RelationshipData, error) {
	d := entities.RelationshipData{
		Entities: []entities.RelationshipEntity{},
		Texts:    []entities.RelationshipText{},
	}
	err := r.db.QueryRowContext(ctx, `SELECT id, type_id FROM relationship_data WHERE id = ?`, id).Scan(&d.ID, &d.TypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship data: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT entity_bbid, position FROM relationship_data_entities
		WHERE relationship_data_id = ? ORDER BY position, entity_bbid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying relationship entities: %w", err)
	}
	for rows.Next() {
		var e entities.RelationshipEntity
		if err := rows.Scan(&e.BBID, &e.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning relationship entity: %w", err)
		}
		d.Entities = append(d.Entities, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT text, position FROM relationship_data_texts
		WHERE relationship_data_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying relationship texts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t entities.RelationshipText
		if err := rows.Scan(&t.Text, &t.Position); err != nil {
			return nil, fmt.Errorf("scanning relationship text: %w", err)
		}
		d.Texts = append(d.Texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListRelationshipsByEntity lists relationships whose current snapshot
// involves the entity. Deleted relationships have no current snapshot and
// drop out of the join.
func (r *Repository) ListRelationshipsByEntity(ctx context.Context, bbid string, limit, offset int) ([]entities.Relationship, error) {
	query := `SELECT DISTINCT rel.id, rel.master_revision_id, rel.last_updated
		FROM relationships rel
		JOIN relationship_revisions rr ON rr.id = rel.master_revision_id
		JOIN relationship_data_entities e ON e.relationship_data_id = rr.relationship_data_id
		WHERE e.entity_bbid = ?
		ORDER BY rel.last_updated DESC, rel.id
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, bbid, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	result := []entities.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rel)
	}
	return result, rows.Err()
}

// CommitRelationship is the relationship counterpart of CommitEntity.
func (r *Repository) CommitRelationship(ctx context.Context, c *ports.RelationshipCommit) (*entities.Revision, error) {
	var rev *entities.Revision
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var current sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT master_revision_id FROM relationships WHERE id = ?`, c.Relationship.ID).Scan(&current)
		exists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reading master revision: %w", err)
		}
		if err := checkMaster(c.Create, exists, current, c.ExpectedMaster, "relationship "+c.Relationship.ID); err != nil {
			return err
		}

		now := timeNow().UTC()
		var dataID *int64
		if c.Data != nil {
			if err := insertRelationshipData(ctx, tx, c.Data); err != nil {
				return err
			}
			id := c.Data.ID
			dataID = &id
		}

		var parent *int64
		if !c.Create {
			parent = c.ExpectedMaster
		}
		revID, err := insertRevision(ctx, tx, parent, c.EditorID, c.Note, entities.RevisionRelationship, now)
		if err != nil {
			return err
		}

		if c.Create {
			_, err = tx.ExecContext(ctx, `INSERT INTO relationships (id, master_revision_id, last_updated) VALUES (?, ?, ?)`,
				c.Relationship.ID, revID, formatTime(now))
			if err != nil {
				return fmt.Errorf("inserting relationship: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx, `UPDATE relationships SET master_revision_id = ?, last_updated = ?
				WHERE id = ? AND master_revision_id = ?`,
				revID, formatTime(now), c.Relationship.ID, *c.ExpectedMaster)
			if err != nil {
				return fmt.Errorf("updating relationship: %w", err)
			}
			if err := checkSwapped(res); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO relationship_revisions (id, relationship_id, relationship_data_id)
			VALUES (?, ?, ?)`,
			revID, c.Relationship.ID, nullInt(dataID))
		if err != nil {
			return fmt.Errorf("inserting relationship revision: %w", err)
		}

		c.Relationship.MasterRevisionID = &revID
		c.Relationship.LastUpdated = now
		rev = &entities.Revision{
			ID:        revID,
			ParentID:  parent,
			EditorID:  c.EditorID,
			Note:      c.Note,
			CreatedAt: now,
			Target:    entities.RelationshipTarget{RelationshipID: c.Relationship.ID, DataID: dataID},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func insertRelationshipData(ctx context.Context, tx *sql.Tx, d *entities.RelationshipData) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO relationship_data (type_id) VALUES (?)`, d.TypeID)
	if err != nil {
		return fmt.Errorf("inserting relationship data: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for _, e := range d.Entities {
		_, err := tx.ExecContext(ctx, `INSERT INTO relationship_data_entities (relationship_data_id, entity_bbid, position)
			VALUES (?, ?, ?)`,
			d.ID, e.BBID, e.Position)
		if err != nil {
			return fmt.Errorf("inserting relationship entity: %w", err)
		}
	}
	for _, t := range d.Texts {
		_, err := tx.ExecContext(ctx, `INSERT INTO relationship_data_texts (relationship_data_id, text, position)
			VALUES (?, ?, ?)`,
			d.ID, t.Text, t.Position)
		if err != nil {
			return fmt.Errorf("inserting relationship text: %w", err)
		}
	}
	return nil
}

func scanRelationship(s rowScanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var master sql.NullInt64
	var lastUpdated string
	if err := s.Scan(&rel.ID, &master, &lastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}
	rel.MasterRevisionID = intPtr(master)
	t, err := parseTime(lastUpdated)
	if err != nil {
		return nil, err
	}
	rel.LastUpdated = t
	return &rel, nil
}
