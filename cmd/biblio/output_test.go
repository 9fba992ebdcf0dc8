package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func withoutColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestRenderDelta(t *testing.T) {
	withoutColor(t)

	delta := entities.Delta{Fields: []entities.FieldDelta{
		{Name: "annotation", Old: &entities.Annotation{Content: "Born in Prague."}, New: &entities.Annotation{Content: "Born in Prague, 1883."}},
		{Name: "disambiguation", Old: nil, New: nil},
		{Name: "aliases", Old: []entities.Alias{}, New: []entities.Alias{{ID: 1, Name: "Franz Kafka"}}},
		{Name: "ended", Old: false, New: true},
	}}

	var buf bytes.Buffer
	renderDelta(&buf, delta)
	out := buf.String()

	assert.Contains(t, out, "annotation:\n  Born in Prague")
	assert.Contains(t, out, "{+, 1883+}")
	assert.NotContains(t, out, "disambiguation")
	assert.Contains(t, out, "aliases:\n  + [{")
	assert.NotContains(t, out, "  - []")
	assert.Contains(t, out, "ended:\n  - false\n  + true\n")
}

func TestRenderDelta_NoChanges(t *testing.T) {
	withoutColor(t)

	var buf bytes.Buffer
	renderDelta(&buf, entities.Delta{Fields: []entities.FieldDelta{{Name: "annotation"}}})
	assert.Equal(t, "No changes.\n", buf.String())
}

func TestPrintState(t *testing.T) {
	bbid := "8f2ad7bb-6f0c-4b3a-9d1e-0c8b2b1a5f11"
	dataID := int64(3)
	state := &entities.EntityState{
		Entity: entities.Entity{BBID: bbid, Kind: entities.KindCreator},
		Revision: entities.Revision{
			ID:        2,
			CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Target:    entities.EntityTarget{BBID: bbid, DataID: &dataID},
		},
		Data: &entities.EntityData{
			Kind:           entities.KindCreator,
			Aliases:        []entities.Alias{{ID: 1, Name: "Franz Kafka", Default: true}},
			Identifiers:    []entities.Identifier{{ID: 5, TypeID: 1, Value: "Q905"}},
			Disambiguation: &entities.Disambiguation{Comment: "novelist"},
		},
	}

	var buf bytes.Buffer
	printState(&buf, state)
	out := buf.String()

	assert.Contains(t, out, "BBID: "+bbid)
	assert.Contains(t, out, "Revision: 2 (2024-03-01 12:00:00)")
	assert.Contains(t, out, "Name: Franz Kafka")
	assert.Contains(t, out, "Alias 1: Franz Kafka (default)")
	assert.Contains(t, out, "Identifier 5: [1] Q905")
	assert.Contains(t, out, "Disambiguation: novelist")

	state.Data = nil
	buf.Reset()
	printState(&buf, state)
	assert.Contains(t, buf.String(), "(deleted)")
}

func TestPrintEditor(t *testing.T) {
	tests := []struct {
		name   string
		editor entities.Editor
		want   string
	}{
		{
			name:   "registered",
			editor: entities.Editor{ID: 3, Name: "Bob", Email: "bob@bobville.org", TotalRevisions: 4, RevisionsApplied: 4},
			want:   "Editor 3: Bob <bob@bobville.org>, 4 revisions (4 applied)\n",
		},
		{
			name:   "known only by revisions",
			editor: entities.Editor{ID: 7, TotalRevisions: 2, RevisionsApplied: 2},
			want:   "Editor 7: (unregistered), 2 revisions (2 applied)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printEditor(&buf, &tt.editor)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
