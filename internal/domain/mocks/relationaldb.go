package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

var _ ports.RelationalDB = (*RelationalDB)(nil)

// RelationalDB is an in-memory implementation of ports.RelationalDB with the
// same compare-and-swap semantics as the SQLite store.
type RelationalDB struct {
	mu sync.Mutex

	Entities         map[string]*entities.Entity
	EntityData       map[int64]*entities.EntityData
	Relationships    map[string]*entities.Relationship
	RelationshipData map[int64]*entities.RelationshipData
	Revisions        []entities.Revision
	Editors          map[int64]*entities.Editor
	TypeCodes        map[entities.TypeCategory]map[int64]entities.TypeCode

	Err       error
	CommitErr error

	// BeforeCommit runs before a commit is applied. Tests use it to let a
	// competing writer in between the read and the swap.
	BeforeCommit func()

	CommitCallCount int

	nextDataID       int64
	nextChildID      int64
	nextRelDataID    int64
	nextAnnotationID int64
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Entities:         make(map[string]*entities.Entity),
		EntityData:       make(map[int64]*entities.EntityData),
		Relationships:    make(map[string]*entities.Relationship),
		RelationshipData: make(map[int64]*entities.RelationshipData),
		Editors:          make(map[int64]*entities.Editor),
		TypeCodes:        make(map[entities.TypeCategory]map[int64]entities.TypeCode),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// FindEntity finds an entity by its BBID.
func (m *RelationalDB) FindEntity(_ context.Context, bbid string) (*entities.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	e, ok := m.Entities[bbid]
	if !ok {
		return nil, nil
	}
	out := *e
	out.MasterRevisionID = copyID(e.MasterRevisionID)
	return &out, nil
}

// ListEntities lists entities by most recent modification first.
func (m *RelationalDB) ListEntities(_ context.Context, kind entities.EntityKind, limit, offset int) ([]entities.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	all := make([]entities.Entity, 0, len(m.Entities))
	for _, e := range m.Entities {
		if kind != "" && e.Kind != kind {
			continue
		}
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastUpdated.Equal(all[j].LastUpdated) {
			return all[i].BBID < all[j].BBID
		}
		return all[i].LastUpdated.After(all[j].LastUpdated)
	})
	return page(all, limit, offset), nil
}

// CountEntities returns the number of entities of a kind.
func (m *RelationalDB) CountEntities(_ context.Context, kind entities.EntityKind) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, e := range m.Entities {
		if kind == "" || e.Kind == kind {
			count++
		}
	}
	return count, nil
}

// FindEntityData loads a snapshot.
func (m *RelationalDB) FindEntityData(_ context.Context, id int64) (*entities.EntityData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.EntityData[id]
	if !ok {
		return nil, nil
	}
	return cloneEntityData(d)
}

// CommitEntity persists a new revision of an entity.
func (m *RelationalDB) CommitEntity(_ context.Context, c *ports.EntityCommit) (*entities.Revision, error) {
	if m.BeforeCommit != nil {
		m.BeforeCommit()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCallCount++
	if m.CommitErr != nil {
		return nil, m.CommitErr
	}

	existing := m.Entities[c.Entity.BBID]
	if err := checkMaster(c.Create, existing != nil, masterOf(existing), c.ExpectedMaster); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var dataID *int64
	if c.Data != nil {
		m.assignEntityIDs(c.Data, now)
		stored, err := cloneEntityData(c.Data)
		if err != nil {
			return nil, err
		}
		m.EntityData[c.Data.ID] = stored
		dataID = copyID(&c.Data.ID)
	}

	rev := m.appendRevision(c.ExpectedMaster, c.EditorID, c.Note, now, entities.EntityTarget{BBID: c.Entity.BBID, DataID: dataID})

	c.Entity.MasterRevisionID = copyID(&rev.ID)
	c.Entity.LastUpdated = now
	stored := *c.Entity
	stored.MasterRevisionID = copyID(&rev.ID)
	m.Entities[c.Entity.BBID] = &stored

	m.bumpEditor(c.EditorID, now)
	return &rev, nil
}

// FindRelationship finds a relationship by its ID.
func (m *RelationalDB) FindRelationship(_ context.Context, id string) (*entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.Relationships[id]
	if !ok {
		return nil, nil
	}
	out := *r
	out.MasterRevisionID = copyID(r.MasterRevisionID)
	return &out, nil
}

// FindRelationshipData loads a relationship snapshot.
func (m *RelationalDB) FindRelationshipData(_ context.Context, id int64) (*entities.RelationshipData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.RelationshipData[id]
	if !ok {
		return nil, nil
	}
	return cloneRelationshipData(d), nil
}

// ListRelationshipsByEntity lists relationships whose current snapshot involves bbid.
func (m *RelationalDB) ListRelationshipsByEntity(_ context.Context, bbid string, limit, offset int) ([]entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Relationship
	for _, r := range m.Relationships {
		if r.MasterRevisionID == nil {
			continue
		}
		rev := m.Revisions[*r.MasterRevisionID-1]
		dataID := rev.Target.SnapshotID()
		if dataID == nil {
			continue
		}
		if m.RelationshipData[*dataID].Involves(bbid) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastUpdated.After(result[j].LastUpdated)
	})
	return page(result, limit, offset), nil
}

// CommitRelationship persists a new revision of a relationship.
func (m *RelationalDB) CommitRelationship(_ context.Context, c *ports.RelationshipCommit) (*entities.Revision, error) {
	if m.BeforeCommit != nil {
		m.BeforeCommit()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCallCount++
	if m.CommitErr != nil {
		return nil, m.CommitErr
	}

	existing := m.Relationships[c.Relationship.ID]
	var master *int64
	if existing != nil {
		master = existing.MasterRevisionID
	}
	if err := checkMaster(c.Create, existing != nil, master, c.ExpectedMaster); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var dataID *int64
	if c.Data != nil {
		m.nextRelDataID++
		c.Data.ID = m.nextRelDataID
		m.RelationshipData[c.Data.ID] = cloneRelationshipData(c.Data)
		dataID = copyID(&c.Data.ID)
	}

	rev := m.appendRevision(c.ExpectedMaster, c.EditorID, c.Note, now, entities.RelationshipTarget{RelationshipID: c.Relationship.ID, DataID: dataID})

	c.Relationship.MasterRevisionID = copyID(&rev.ID)
	c.Relationship.LastUpdated = now
	stored := *c.Relationship
	stored.MasterRevisionID = copyID(&rev.ID)
	m.Relationships[c.Relationship.ID] = &stored

	m.bumpEditor(c.EditorID, now)
	return &rev, nil
}

// FindRevision finds a revision by ID.
func (m *RelationalDB) FindRevision(_ context.Context, id int64) (*entities.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if id < 1 || id > int64(len(m.Revisions)) {
		return nil, nil
	}
	rev := m.Revisions[id-1]
	return &rev, nil
}

// FindChildRevisions finds the revisions whose parent is id.
func (m *RelationalDB) FindChildRevisions(_ context.Context, id int64) ([]entities.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var children []entities.Revision
	for _, rev := range m.Revisions {
		if rev.ParentID != nil && *rev.ParentID == id {
			children = append(children, rev)
		}
	}
	return children, nil
}

// ListRevisions lists revisions newest first.
func (m *RelationalDB) ListRevisions(_ context.Context, f ports.RevisionFilter) ([]entities.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Revision
	for i := len(m.Revisions) - 1; i >= 0; i-- {
		rev := m.Revisions[i]
		if f.Kind != "" && rev.Target.Kind() != f.Kind {
			continue
		}
		if f.EditorID != 0 && rev.EditorID != f.EditorID {
			continue
		}
		if f.EntityBBID != "" && (rev.Target.Kind() != entities.RevisionEntity || rev.Target.TargetID() != f.EntityBBID) {
			continue
		}
		if f.RelationshipID != "" && (rev.Target.Kind() != entities.RevisionRelationship || rev.Target.TargetID() != f.RelationshipID) {
			continue
		}
		result = append(result, rev)
	}
	return page(result, f.Limit, f.Offset), nil
}

// FindEditor finds an editor.
func (m *RelationalDB) FindEditor(_ context.Context, id int64) (*entities.Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	e, ok := m.Editors[id]
	if !ok {
		return nil, nil
	}
	out := *e
	return &out, nil
}

// ListEditors lists editors by id.
func (m *RelationalDB) ListEditors(_ context.Context, limit, offset int) ([]entities.Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Editor, 0, len(m.Editors))
	for _, e := range m.Editors {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return page(result, limit, offset), nil
}

// SaveEditor registers or updates an editor profile.
func (m *RelationalDB) SaveEditor(_ context.Context, editor *entities.Editor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if editor.ID == 0 {
		for id := range m.Editors {
			editor.ID = max(editor.ID, id)
		}
		editor.ID++
	}
	e, ok := m.Editors[editor.ID]
	if !ok {
		e = &entities.Editor{ID: editor.ID, CreatedAt: time.Now()}
		m.Editors[editor.ID] = e
	}
	e.Name = editor.Name
	e.Email = editor.Email
	e.EditorTypeID = editor.EditorTypeID
	editor.CreatedAt = e.CreatedAt
	return nil
}

// SaveTypeCode saves or relabels a type code.
func (m *RelationalDB) SaveTypeCode(_ context.Context, code *entities.TypeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.TypeCodes[code.Category] == nil {
		m.TypeCodes[code.Category] = make(map[int64]entities.TypeCode)
	}
	m.TypeCodes[code.Category][code.ID] = *code
	return nil
}

// ListTypeCodes lists type codes ordered by category and ID.
func (m *RelationalDB) ListTypeCodes(_ context.Context, category entities.TypeCategory) ([]entities.TypeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.TypeCode
	for cat, codes := range m.TypeCodes {
		if category != "" && cat != category {
			continue
		}
		for _, c := range codes {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// SeedTypeCodes loads the default type codes.
func (m *RelationalDB) SeedTypeCodes() {
	for i := range entities.DefaultTypeCodes {
		_ = m.SaveTypeCode(context.Background(), &entities.DefaultTypeCodes[i])
	}
}

// RevisionCount returns the number of revisions committed so far.
func (m *RelationalDB) RevisionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Revisions)
}

func (m *RelationalDB) assignEntityIDs(d *entities.EntityData, now time.Time) {
	m.nextDataID++
	d.ID = m.nextDataID
	for i := range d.Aliases {
		if d.Aliases[i].ID == 0 {
			m.nextChildID++
			d.Aliases[i].ID = m.nextChildID
		}
	}
	for i := range d.Identifiers {
		if d.Identifiers[i].ID == 0 {
			m.nextChildID++
			d.Identifiers[i].ID = m.nextChildID
		}
	}
	if d.Annotation != nil && d.Annotation.ID == 0 {
		m.nextAnnotationID++
		d.Annotation.ID = m.nextAnnotationID
		d.Annotation.CreatedAt = now
	}
	if d.Disambiguation != nil && d.Disambiguation.ID == 0 {
		m.nextAnnotationID++
		d.Disambiguation.ID = m.nextAnnotationID
	}
}

func (m *RelationalDB) appendRevision(parent *int64, editorID int64, note string, now time.Time, target entities.RevisionTarget) entities.Revision {
	rev := entities.Revision{
		ID:        int64(len(m.Revisions)) + 1,
		ParentID:  copyID(parent),
		EditorID:  editorID,
		Note:      note,
		CreatedAt: now,
		Target:    target,
	}
	m.Revisions = append(m.Revisions, rev)
	return rev
}

func (m *RelationalDB) bumpEditor(id int64, now time.Time) {
	e, ok := m.Editors[id]
	if !ok {
		e = &entities.Editor{ID: id, CreatedAt: now}
		m.Editors[id] = e
	}
	e.TotalRevisions++
	e.RevisionsApplied++
}

var errAlreadyExists = errors.New("target already exists")

func checkMaster(create, exists bool, current, expected *int64) error {
	if create {
		if exists {
			return errAlreadyExists
		}
		return nil
	}
	if !exists {
		return entities.ErrNotFound
	}
	if !sameID(current, expected) {
		return entities.ErrConflict
	}
	return nil
}

func masterOf(e *entities.Entity) *int64 {
	if e == nil {
		return nil
	}
	return e.MasterRevisionID
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneEntityData(d *entities.EntityData) (*entities.EntityData, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out entities.EntityData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func cloneRelationshipData(d *entities.RelationshipData) *entities.RelationshipData {
	out := *d
	out.Entities = append([]entities.RelationshipEntity{}, d.Entities...)
	out.Texts = append([]entities.RelationshipText{}, d.Texts...)
	return &out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
