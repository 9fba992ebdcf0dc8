package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func TestDiffEntity_IsTotal(t *testing.T) {
	delta := DiffEntity(nil, nil)
	names := make([]string, 0, len(delta.Fields))
	for _, f := range delta.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"annotation", "disambiguation", "default_alias", "aliases", "identifiers"}, names)
	assert.Empty(t, delta.Changed())

	creator := baseCreatorData()
	delta = DiffEntity(creator, creator)
	wantKindFields := len(creator.Data.Fields())
	assert.Len(t, delta.Fields, 5+wantKindFields)
	assert.Empty(t, delta.Changed())
	for _, f := range delta.Fields {
		assert.Equal(t, f.Old, f.New, f.Name)
	}
}

func TestDiffEntity_RoundTripFromNothing(t *testing.T) {
	creator := baseCreatorData()
	delta := DiffEntity(nil, creator)

	newSide := map[string]any{}
	for _, f := range delta.Fields {
		assert.Nil(t, f.Old, f.Name)
		newSide[f.Name] = f.New
	}

	assert.Equal(t, creator.Annotation, newSide["annotation"])
	assert.Equal(t, creator.Disambiguation, newSide["disambiguation"])
	assert.Equal(t, creator.DefaultAlias(), newSide["default_alias"])
	assert.Equal(t, creator.Aliases, newSide["aliases"])
	assert.Equal(t, creator.Identifiers, newSide["identifiers"])
	for _, f := range creator.Data.Fields() {
		assert.Equal(t, f.Value, newSide[f.Name], f.Name)
	}
}

func TestDiffEntity_Changes(t *testing.T) {
	older := baseCreatorData()
	newer, err := CopyWith(entities.KindCreator, older, &entities.EntityInput{
		Data:        json.RawMessage(`{"ended":true}`),
		Aliases:     []entities.AliasChange{entities.DeleteAlias(2)},
		Annotation:  strPtr("Prague, Bohemia"),
		Identifiers: nil,
	})
	require.NoError(t, err)

	delta := DiffEntity(older, newer)
	assert.Equal(t, []string{"annotation", "aliases", "ended"}, delta.Changed())

	ended, ok := delta.Get("ended")
	require.True(t, ok)
	assert.Equal(t, false, ended.Old)
	assert.Equal(t, true, ended.New)

	defaultAlias, ok := delta.Get("default_alias")
	require.True(t, ok)
	assert.False(t, defaultAlias.Changed())
}

func TestDiffEntity_Deletion(t *testing.T) {
	older := baseCreatorData()
	delta := DiffEntity(older, nil)

	for _, f := range delta.Fields {
		assert.Nil(t, f.New, f.Name)
	}
	assert.Contains(t, delta.Changed(), "aliases")
	assert.Contains(t, delta.Changed(), "creator_type_id")
}

func TestDelta_MarshalJSON(t *testing.T) {
	older := &entities.EntityData{Kind: entities.KindPublication, Data: &entities.PublicationData{PublicationTypeID: 1}}
	newer := &entities.EntityData{Kind: entities.KindPublication, Data: &entities.PublicationData{PublicationTypeID: 2}}

	raw, err := json.Marshal(DiffEntity(older, newer))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"annotation": [null, null],
		"disambiguation": [null, null],
		"default_alias": [null, null],
		"aliases": [null, null],
		"identifiers": [null, null],
		"publication_type_id": [1, 2]
	}`, string(raw))
}

func TestDiffRelationship(t *testing.T) {
	newer := &entities.RelationshipData{
		TypeID:   1,
		Entities: []entities.RelationshipEntity{{BBID: "a"}, {BBID: "b", Position: 1}},
		Texts:    []entities.RelationshipText{},
	}

	created := DiffRelationship(nil, newer)
	assert.Equal(t, []string{"relationship_type_id", "entities", "texts"}, created.Changed())

	retyped := *newer
	retyped.TypeID = 2
	assert.Equal(t, []string{"relationship_type_id"}, DiffRelationship(newer, &retyped).Changed())
	assert.Empty(t, DiffRelationship(newer, newer).Changed())
}

func TestMergePatch(t *testing.T) {
	older := baseCreatorData()
	newer, err := CopyWith(entities.KindCreator, older, &entities.EntityInput{
		Data:           json.RawMessage(`{"end_date":"1924"}`),
		Disambiguation: strPtr(""),
	})
	require.NoError(t, err)

	patch, err := MergePatch(older, newer)
	require.NoError(t, err)
	assert.JSONEq(t, `{"disambiguation": null, "end_date": "1924"}`, string(patch))

	same, err := MergePatch(older, older)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(same))

	full, err := MergePatch(nil, older)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(full, &doc))
	assert.Contains(t, doc, "aliases")
	assert.Equal(t, float64(1), doc["creator_type_id"])
}

func TestTextDiff(t *testing.T) {
	got := TextDiff("Prague", "Prague, Bohemia")
	want := []TextSpan{
		{Op: TextEqual, Text: "Prague"},
		{Op: TextInsert, Text: ", Bohemia"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TextDiff() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []TextSpan{{Op: TextEqual, Text: "Kafka"}, {Op: TextDelete, Text: " (writer)"}}, TextDiff("Kafka (writer)", "Kafka"))
	assert.Equal(t, []TextSpan{{Op: TextEqual, Text: "same"}}, TextDiff("same", "same"))
	assert.Empty(t, TextDiff("", ""))
}

func TestDiffService_ChangesForRevision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	diff := NewDiffService(env.db)

	created := env.createCreator(t, "Franz Kafka")
	bbid := created.Entity.BBID
	_, err := env.mutations.Update(ctx, bbid, &entities.EntityInput{Annotation: strPtr("Prague")}, testEditor)
	require.NoError(t, err)
	deleted, err := env.mutations.Delete(ctx, bbid, "", testEditor)
	require.NoError(t, err)

	rev1, err := env.db.FindRevision(ctx, 1)
	require.NoError(t, err)
	rev2, err := env.db.FindRevision(ctx, 2)
	require.NoError(t, err)

	t.Run("against child", func(t *testing.T) {
		changes, err := diff.ChangesForRevision(ctx, rev1, nil)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		require.NotNil(t, changes[0].Against)
		assert.Equal(t, int64(2), *changes[0].Against)
		assert.Equal(t, []string{"annotation"}, changes[0].Changes.Changed())
	})

	t.Run("child is a deletion", func(t *testing.T) {
		changes, err := diff.ChangesForRevision(ctx, rev2, nil)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		for _, f := range changes[0].Changes.Fields {
			assert.Nil(t, f.New, f.Name)
		}
	})

	t.Run("deletion has no changes", func(t *testing.T) {
		changes, err := diff.ChangesForRevision(ctx, &deleted.Revision, nil)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("explicit base", func(t *testing.T) {
		changes, err := diff.ChangesForRevision(ctx, rev2, idPtr(1))
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, []string{"annotation"}, changes[0].Changes.Changed())
	})

	t.Run("missing base", func(t *testing.T) {
		changes, err := diff.ChangesForRevision(ctx, rev2, idPtr(404))
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("leaf is diffed against nothing", func(t *testing.T) {
		other := env.createCreator(t, "Max Brod")
		changes, err := diff.ChangesForRevision(ctx, &other.Revision, nil)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Nil(t, changes[0].Against)
		aliases, ok := changes[0].Changes.Get("aliases")
		require.True(t, ok)
		assert.Nil(t, aliases.Old)
		assert.NotNil(t, aliases.New)
	})
}

func TestDiffService_ChangesFromParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	diff := NewDiffService(env.db)

	created := env.createCreator(t, "Franz Kafka")
	first, err := diff.ChangesFromParent(ctx, &created.Revision)
	require.NoError(t, err)
	assert.Contains(t, first.Changed(), "aliases")

	updated, err := env.mutations.Update(ctx, created.Entity.BBID, &entities.EntityInput{Disambiguation: strPtr("writer")}, testEditor)
	require.NoError(t, err)
	second, err := diff.ChangesFromParent(ctx, &updated.Revision)
	require.NoError(t, err)
	assert.Equal(t, []string{"disambiguation"}, second.Changed())
}
